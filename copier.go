package uringcp

import (
	"errors"
	"os"
	"time"

	"github.com/pawelgaczynski/uringcp/logger"
	"github.com/rs/zerolog"
)

// Result summarizes a finished copy.
type Result struct {
	// Bytes is the number of bytes written to the destination.
	Bytes       int64
	Blocks      int
	Reads       int
	Writes      int
	ShortReads  int
	ShortWrites int
	// MaxInFlight is the highest number of cells busy at the same time.
	MaxInFlight int
	Duration    time.Duration
	Verified    bool
}

// Copier copies files through an io_uring ring with a fixed set of
// registered buffers. A Copier is not safe for concurrent use; each Copy
// builds and tears down its own ring.
type Copier struct {
	config  Config
	logger  zerolog.Logger
	newRing ringFactory
}

func NewCopier(config Config) (*Copier, error) {
	return newCopier(config, newKernelRing)
}

func newCopier(config Config, factory ringFactory) (*Copier, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &Copier{
		config:  config,
		logger:  logger.NewLogger("copier", config.LoggerLevel, config.PrettyLogger),
		newRing: factory,
	}, nil
}

func (c *Copier) Config() Config {
	return c.config
}

// Copy copies srcPath to dstPath. On failure dstPath is removed, unless it is
// the source itself.
func (c *Copier) Copy(srcPath, dstPath string) (Result, error) {
	var result Result
	start := time.Now()

	src, info, err := openSource(srcPath)
	if err != nil {
		return result, err
	}
	defer src.Close()

	dst, err := createDestination(dstPath, info)
	if err != nil {
		return result, err
	}

	c.logger.Info().
		Str("source", srcPath).
		Str("destination", dstPath).
		Int64("size", info.Size()).
		Uint32("entries", c.config.RingEntries).
		Uint32("block size", c.config.BlockSize).
		Msg("Starting copy")

	if err = c.transfer(src, dst, info.Size(), &result); err != nil {
		discardDestination(dst, dstPath)

		return result, err
	}
	if err = dst.Close(); err != nil {
		_ = os.Remove(dstPath)

		return result, ErrorDestination(dstPath, err)
	}
	result.Duration = time.Since(start)

	if c.config.Verify {
		if _, err = Verify(srcPath, dstPath); err != nil {
			_ = os.Remove(dstPath)

			return result, err
		}
		result.Verified = true
	}

	c.logger.Info().
		Int64("bytes", result.Bytes).
		Int("blocks", result.Blocks).
		Int("max in flight", result.MaxInFlight).
		Dur("duration", result.Duration).
		Bool("verified", result.Verified).
		Msg("Copy finished")

	return result, nil
}

// transfer runs one session on a fresh ring. The ring is torn down before the
// buffers it references are unmapped.
//
//nolint:gosec // fd values are small non-negative integers
func (c *Copier) transfer(src, dst *os.File, size int64, result *Result) (err error) {
	untune, err := tuneThread(c.config)
	if err != nil {
		return err
	}
	defer untune()

	ring, err := c.newRing(c.config.RingEntries)
	if err != nil {
		return err
	}

	pool, err := newBufferPool(int(c.config.RingEntries), int(c.config.BlockSize))
	if err != nil {
		_ = ring.QueueExit()

		return err
	}

	defer func() {
		exitErr := ring.QueueExit()
		releaseErr := pool.release()
		if err == nil {
			err = errors.Join(exitErr, releaseErr)
		}
	}()

	if err = ring.RegisterBuffers(pool.buffers); err != nil {
		return err
	}

	session := newSession(ring, newCellArena(pool.buffers), int(src.Fd()), int(dst.Fd()),
		size, c.config.BlockSize, result, c.logger)
	if err = session.run(); err != nil {
		return err
	}

	if c.config.Sync {
		return session.sync()
	}

	return nil
}

package uringcp

import (
	"fmt"
	"os"

	"github.com/pawelgaczynski/uringcp/iouring"
	"github.com/rs/zerolog"
)

const (
	defaultRingEntries = 8
	defaultBlockSize   = 4096
	maxBlockSize       = 1 << 30
)

type ConfigOption func(*Config)

type Config struct {
	// RingEntries is the ring capacity and the number of cells. It bounds
	// both I/O parallelism and memory in flight.
	RingEntries uint32
	// BlockSize is the size of each cell buffer.
	BlockSize       uint32
	Sync            bool
	Verify          bool
	LockOSThread    bool
	CPUAffinity     int
	ProcessPriority bool
	LoggerLevel     zerolog.Level
	PrettyLogger    bool
}

func WithRingEntries(ringEntries uint32) ConfigOption {
	return func(c *Config) {
		c.RingEntries = ringEntries
	}
}

func WithBlockSize(blockSize uint32) ConfigOption {
	return func(c *Config) {
		c.BlockSize = blockSize
	}
}

// WithSync controls whether the destination is datasynced through the ring
// before a copy is reported as complete.
func WithSync(sync bool) ConfigOption {
	return func(c *Config) {
		c.Sync = sync
	}
}

func WithVerify(verify bool) ConfigOption {
	return func(c *Config) {
		c.Verify = verify
	}
}

func WithLockOSThread(lockOSThread bool) ConfigOption {
	return func(c *Config) {
		c.LockOSThread = lockOSThread
	}
}

// WithCPUAffinity pins the locked copy thread to cpu. Negative values leave
// affinity untouched. Only effective together with WithLockOSThread.
func WithCPUAffinity(cpu int) ConfigOption {
	return func(c *Config) {
		c.CPUAffinity = cpu
	}
}

func WithProcessPriority(processPriority bool) ConfigOption {
	return func(c *Config) {
		c.ProcessPriority = processPriority
	}
}

func WithLoggerLevel(loggerLevel zerolog.Level) ConfigOption {
	return func(c *Config) {
		c.LoggerLevel = loggerLevel
	}
}

func WithPrettyLogger(prettyLogger bool) ConfigOption {
	return func(c *Config) {
		c.PrettyLogger = prettyLogger
	}
}

func NewConfig(opts ...ConfigOption) Config {
	config := Config{
		RingEntries:     defaultRingEntries,
		BlockSize:       defaultBlockSize,
		Sync:            true,
		Verify:          false,
		LockOSThread:    false,
		CPUAffinity:     -1,
		ProcessPriority: false,
		LoggerLevel:     zerolog.ErrorLevel,
		PrettyLogger:    false,
	}
	for _, opt := range opts {
		opt(&config)
	}

	return config
}

func (c Config) validate() error {
	pageSize := uint32(os.Getpagesize())

	switch {
	case c.RingEntries == 0 || c.RingEntries > iouring.MaxRegisteredBuffers:
		return fmt.Errorf("%w, ring entries must be in [1, %d]: %d",
			ErrInvalidConfig, iouring.MaxRegisteredBuffers, c.RingEntries)
	case c.BlockSize == 0 || c.BlockSize%pageSize != 0:
		return fmt.Errorf("%w, block size must be a positive multiple of %d: %d",
			ErrInvalidConfig, pageSize, c.BlockSize)
	case c.BlockSize > maxBlockSize:
		return fmt.Errorf("%w, block size must not exceed %d: %d", ErrInvalidConfig, maxBlockSize, c.BlockSize)
	}

	return nil
}

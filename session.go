package uringcp

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/pawelgaczynski/uringcp/iouring"
	"github.com/rs/zerolog"
)

const (
	opRead  = "read"
	opWrite = "write"
	opFsync = "fsync"
)

// syncTag marks the datasync request; it never collides with a cell index.
const syncTag uint64 = 1 << 63

// session streams one file through the cells. It is driven by a single
// goroutine from start to end.
type session struct {
	ring      submissionRing
	arena     *cellArena
	src       int
	dst       int
	size      int64
	blockSize uint32

	cursor   int64
	inFlight int
	prepared []cellIndex
	failure  error

	result *Result
	logger zerolog.Logger
}

func newSession(
	ring submissionRing, arena *cellArena, src, dst int, size int64, blockSize uint32,
	result *Result, logger zerolog.Logger,
) *session {
	return &session{
		ring:      ring,
		arena:     arena,
		src:       src,
		dst:       dst,
		size:      size,
		blockSize: blockSize,
		prepared:  make([]cellIndex, 0, len(arena.cells)),
		result:    result,
		logger:    logger,
	}
}

func (s *session) logDebug(index cellIndex, c *cell) *zerolog.Event {
	return s.logger.Debug().
		Int("cell", int(index)).
		Int64("offset", c.offset).
		Uint32("length", c.length).
		Str("stage", c.stage.String())
}

func (s *session) finished() bool {
	if s.failure != nil {
		return s.inFlight == 0
	}

	return s.cursor >= s.size && s.inFlight == 0
}

// run drives rounds of fill, submit-and-wait and drain until every byte is
// written or, after a failure, until every cell is idle again. Only a failing
// ring returns with cells still in flight.
func (s *session) run() error {
	for !s.finished() {
		if s.failure == nil {
			s.fill()
		}

		if s.inFlight == 0 {
			continue
		}

		if err := s.submit(); err != nil {
			return s.fail(err)
		}

		s.drain()
	}

	if busy := s.arena.busy(); busy != s.inFlight {
		s.abort(ErrorProtocol(fmt.Sprintf("%d cells busy with %d in flight", busy, s.inFlight), -1, -1, nil))
	}

	return s.failure
}

func (s *session) submit() error {
	if _, err := s.ring.SubmitAndWait(1); err != nil {
		return err
	}

	for _, index := range s.prepared {
		s.arena.get(index).entry = nil
	}
	s.prepared = s.prepared[:0]

	return nil
}

func (s *session) fill() {
	for s.failure == nil && s.cursor < s.size {
		index, ok := s.arena.takeIdle()
		if !ok {
			return
		}

		c := s.arena.get(index)
		length := int64(s.blockSize)
		if remaining := s.size - s.cursor; remaining < length {
			length = remaining
		}

		c.stage = stageInRead
		c.offset = s.cursor
		c.length = uint32(length)
		c.done = 0

		s.cursor += length
		s.inFlight++
		s.result.Blocks++
		if s.inFlight > s.result.MaxInFlight {
			s.result.MaxInFlight = s.inFlight
		}

		s.logDebug(index, c).Msg("Cell is reading")
		s.enqueue(index, c)
	}
}

// enqueue prepares the next operation of c's current stage for the bytes it
// has not transferred yet.
func (s *session) enqueue(index cellIndex, c *cell) {
	entry, err := s.ring.GetSQE()
	if err != nil {
		s.retire(index)
		s.abort(ErrorProtocol("ring is full while a cell is ready", int(index), c.offset, err))

		return
	}

	switch c.stage {
	case stageInRead:
		entry.PrepareReadFixed(s.src, c.remaining(), c.position(), int(index))
		s.result.Reads++
	case stageInWrite:
		entry.PrepareWriteFixed(s.dst, c.remaining(), c.position(), int(index))
		s.result.Writes++
	default:
		entry.PrepareNop()
	}
	entry.UserData = index.tag()

	c.entry = entry
	s.prepared = append(s.prepared, index)
}

func (s *session) drain() {
	for {
		cqe, ok := s.ring.PeekCQE()
		if !ok {
			return
		}
		s.complete(cqe)
	}
}

func (s *session) complete(cqe iouring.CompletionQueueEvent) {
	index, c, ok := s.arena.lookup(cqe.UserData)
	if !ok {
		s.abort(ErrorProtocol("completion with unknown tag", -1, -1, nil))

		return
	}
	if c.stage == stageIdle {
		s.abort(ErrorProtocol("completion for an idle cell", int(index), -1, nil))

		return
	}

	if s.failure != nil {
		s.retire(index)

		return
	}

	if cqe.Res < 0 {
		op := opRead
		if c.stage == stageInWrite {
			op = opWrite
		}
		err := ErrorOp(op, int(index), c.offset, syscall.Errno(-cqe.Res))
		s.retire(index)
		s.abort(err)

		return
	}

	transferred := uint32(cqe.Res)
	if transferred > c.length-c.done {
		s.retire(index)
		s.abort(ErrorProtocol("completion exceeds requested length", int(index), c.offset, nil))

		return
	}

	switch c.stage {
	case stageInRead:
		s.readDone(index, c, transferred)
	case stageInWrite:
		s.writeDone(index, c, transferred)
	}
}

func (s *session) readDone(index cellIndex, c *cell, transferred uint32) {
	c.done += transferred

	if c.done < c.length {
		if transferred == 0 {
			err := ErrorOp(opRead, int(index), c.offset, io.ErrUnexpectedEOF)
			s.retire(index)
			s.abort(err)

			return
		}
		s.result.ShortReads++
		s.logDebug(index, c).Uint32("done", c.done).Msg("Short read, resubmitting remainder")
		s.enqueue(index, c)

		return
	}

	c.stage = stageInWrite
	c.done = 0
	s.logDebug(index, c).Msg("Cell is writing")
	s.enqueue(index, c)
}

func (s *session) writeDone(index cellIndex, c *cell, transferred uint32) {
	c.done += transferred

	if c.done < c.length {
		if transferred == 0 {
			err := ErrorOp(opWrite, int(index), c.offset, io.ErrShortWrite)
			s.retire(index)
			s.abort(err)

			return
		}
		s.result.ShortWrites++
		s.logDebug(index, c).Uint32("done", c.done).Msg("Short write, resubmitting remainder")
		s.enqueue(index, c)

		return
	}

	s.result.Bytes += int64(c.length)
	s.logDebug(index, c).Msg("Cell is idle")
	s.retire(index)
}

func (s *session) retire(index cellIndex) {
	s.arena.release(index)
	s.inFlight--
}

// abort records the first failure and turns every prepared but unpublished
// entry into a no-op, so nothing new reaches the files while the remaining
// cells drain.
func (s *session) abort(err error) {
	if s.failure != nil {
		return
	}
	s.failure = err

	for _, index := range s.prepared {
		c := s.arena.get(index)
		if c.entry == nil || c.stage == stageIdle {
			continue
		}
		c.entry.PrepareNop()
		c.entry.UserData = index.tag()
	}

	s.logger.Error().
		Err(err).
		Int("in flight", s.inFlight).
		Int("idle", s.arena.idleCount()).
		Msg("Copy aborted, draining cells")
}

func (s *session) fail(err error) error {
	if s.failure == nil {
		return err
	}

	return errors.Join(s.failure, err)
}

// sync datasyncs the destination through the ring. It must run after every
// cell is idle.
func (s *session) sync() error {
	entry, err := s.ring.GetSQE()
	if err != nil {
		return ErrorProtocol("ring is full before sync", -1, -1, err)
	}
	entry.PrepareFsync(s.dst, iouring.FsyncDatasync)
	entry.UserData = syncTag

	if _, err = s.ring.SubmitAndWait(1); err != nil {
		return err
	}

	for {
		cqe, ok := s.ring.PeekCQE()
		if !ok {
			if _, err = s.ring.SubmitAndWait(1); err != nil {
				return err
			}

			continue
		}
		if cqe.UserData != syncTag {
			return ErrorProtocol(fmt.Sprintf("unexpected completion with tag %d while syncing", cqe.UserData), -1, -1, nil)
		}
		if cqe.Res < 0 {
			return ErrorOp(opFsync, -1, s.size, syscall.Errno(-cqe.Res))
		}

		return nil
	}
}

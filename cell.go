package uringcp

import (
	"github.com/eapache/queue"
	"github.com/pawelgaczynski/uringcp/iouring"
)

type stage uint8

const (
	stageIdle stage = iota
	stageInRead
	stageInWrite
)

func (s stage) String() string {
	switch s {
	case stageIdle:
		return "idle"
	case stageInRead:
		return "read"
	case stageInWrite:
		return "write"
	}

	return "unknown"
}

// cellIndex identifies a cell, its registered buffer and its correlation tag
// at once.
type cellIndex int

func (i cellIndex) tag() uint64 {
	return uint64(i)
}

type cell struct {
	stage  stage
	offset int64
	length uint32
	// done counts bytes of the current stage already transferred; it is
	// non-zero only while a short result is being completed.
	done uint32
	buf  []byte
	// entry is the prepared submission that has not been published yet.
	entry *iouring.SubmissionQueueEntry
}

func (c *cell) remaining() []byte {
	return c.buf[c.done:c.length]
}

func (c *cell) position() uint64 {
	return uint64(c.offset) + uint64(c.done)
}

// cellArena owns the cells; a cell is in the idle queue exactly when its
// stage is idle.
type cellArena struct {
	cells []cell
	idle  *queue.Queue
}

func newCellArena(buffers [][]byte) *cellArena {
	arena := &cellArena{
		cells: make([]cell, len(buffers)),
		idle:  queue.New(),
	}
	for i := range arena.cells {
		arena.cells[i].buf = buffers[i]
		arena.idle.Add(cellIndex(i))
	}

	return arena
}

func (a *cellArena) get(index cellIndex) *cell {
	return &a.cells[index]
}

func (a *cellArena) lookup(tag uint64) (cellIndex, *cell, bool) {
	if tag >= uint64(len(a.cells)) {
		return 0, nil, false
	}
	index := cellIndex(tag)

	return index, &a.cells[index], true
}

func (a *cellArena) takeIdle() (cellIndex, bool) {
	if a.idle.Length() == 0 {
		return 0, false
	}

	return a.idle.Remove().(cellIndex), true
}

func (a *cellArena) release(index cellIndex) {
	c := &a.cells[index]
	c.stage = stageIdle
	c.offset = 0
	c.length = 0
	c.done = 0
	c.entry = nil
	a.idle.Add(index)
}

func (a *cellArena) idleCount() int {
	return a.idle.Length()
}

func (a *cellArena) busy() int {
	return len(a.cells) - a.idle.Length()
}

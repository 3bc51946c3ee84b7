package uringcp

import (
	"errors"
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/pawelgaczynski/uringcp/iouring"
	"golang.org/x/sys/unix"
)

// fakeRing executes fixed reads and writes with pread and pwrite in the
// calling goroutine. It keeps enough bookkeeping to check how the copy loop
// uses the ring.
type fakeRing struct {
	slots    []iouring.SubmissionQueueEntry
	reserved int
	queued   []iouring.SubmissionQueueEntry
	cqes     []iouring.CompletionQueueEvent
	buffers  [][]byte

	// reorder shuffles pending operations before they complete.
	reorder bool
	rnd     *rand.Rand
	// shortAlign makes every operation that starts on a multiple of
	// shortAlign transfer only half of its length.
	shortAlign uint64
	// hook may replace the result of an operation before it is executed.
	hook func(entry iouring.SubmissionQueueEntry) (int32, bool)
	// submitErr is returned by the submitFailAt-th call to SubmitAndWait.
	submitErr    error
	submitFailAt int
	// extra completions delivered after the first submit.
	extra []iouring.CompletionQueueEvent

	submits     int
	submitted   []iouring.SubmissionQueueEntry
	outstanding map[uint16]int
	inFlight    int
	maxInFlight int
	syncs       int
	// failureSeen is the number of submitted operations at the moment the
	// first failed completion was handed out, -1 before.
	failureSeen int
	violations  []string
	exitCalls   int
	leftAtExit  int
}

func newFakeRing() *fakeRing {
	return &fakeRing{
		rnd:         rand.New(rand.NewSource(1)),
		outstanding: make(map[uint16]int),
		failureSeen: -1,
	}
}

func (f *fakeRing) factory(entries uint32) (submissionRing, error) {
	f.slots = make([]iouring.SubmissionQueueEntry, entries)

	return f, nil
}

func (f *fakeRing) violate(format string, args ...any) {
	f.violations = append(f.violations, fmt.Sprintf(format, args...))
}

func (f *fakeRing) GetSQE() (*iouring.SubmissionQueueEntry, error) {
	if f.exitCalls > 0 {
		return nil, iouring.ErrRingClosed
	}
	if f.reserved == len(f.slots) {
		return nil, iouring.ErrorSQEOverflow(uint32(f.reserved))
	}
	entry := &f.slots[f.reserved]
	*entry = iouring.SubmissionQueueEntry{}
	f.reserved++

	return entry, nil
}

func (f *fakeRing) RegisterBuffers(buffers [][]byte) error {
	if f.buffers != nil {
		return iouring.ErrBuffersRegistered
	}
	f.buffers = buffers

	return nil
}

func (f *fakeRing) QueueExit() error {
	f.exitCalls++
	if f.exitCalls > 1 {
		return iouring.ErrRingClosed
	}
	f.leftAtExit = f.inFlight

	return nil
}

func (f *fakeRing) SubmitAndWait(waitNr uint32) (uint, error) {
	f.submits++
	if f.submitErr != nil && f.submits == f.submitFailAt {
		return 0, f.submitErr
	}

	submitted := f.reserved
	for i := 0; i < f.reserved; i++ {
		entry := f.slots[i]
		f.track(entry)
		f.queued = append(f.queued, entry)
		f.submitted = append(f.submitted, entry)
	}
	f.reserved = 0

	if f.submits == 1 {
		f.cqes = append(f.cqes, f.extra...)
		f.inFlight += len(f.extra)
	}

	if uint32(len(f.cqes)) < waitNr && len(f.queued) == 0 {
		return uint(submitted), errors.New("fake ring: wait would block forever")
	}

	if f.reorder {
		f.rnd.Shuffle(len(f.queued), func(i, j int) {
			f.queued[i], f.queued[j] = f.queued[j], f.queued[i]
		})
	}

	complete := len(f.queued)
	if f.reorder && complete > 1 {
		complete = 1 + f.rnd.Intn(complete)
	}
	for _, entry := range f.queued[:complete] {
		f.cqes = append(f.cqes, iouring.CompletionQueueEvent{UserData: entry.UserData, Res: f.execute(entry)})
	}
	f.queued = append(f.queued[:0], f.queued[complete:]...)

	return uint(submitted), nil
}

func (f *fakeRing) track(entry iouring.SubmissionQueueEntry) {
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}

	if entry.OpCode == iouring.OpReadFixed && f.failureSeen >= 0 {
		f.violate("read at offset %d submitted after a failure", entry.Off)
	}

	if entry.OpCode != iouring.OpReadFixed && entry.OpCode != iouring.OpWriteFixed {
		return
	}
	if entry.UserData != uint64(entry.BufIG) {
		f.violate("tag %d does not match buffer %d", entry.UserData, entry.BufIG)
	}
	if f.outstanding[entry.BufIG] > 0 {
		f.violate("buffer %d reused while an operation is outstanding", entry.BufIG)
	}
	f.outstanding[entry.BufIG]++
}

func (f *fakeRing) PeekCQE() (iouring.CompletionQueueEvent, bool) {
	if len(f.cqes) == 0 {
		return iouring.CompletionQueueEvent{}, false
	}
	cqe := f.cqes[0]
	f.cqes = f.cqes[1:]
	f.inFlight--

	if cqe.Res < 0 && f.failureSeen < 0 {
		f.failureSeen = len(f.submitted)
	}
	if cqe.UserData < uint64(len(f.buffers)) && f.outstanding[uint16(cqe.UserData)] > 0 {
		f.outstanding[uint16(cqe.UserData)]--
	}

	return cqe, true
}

func (f *fakeRing) buffer(entry iouring.SubmissionQueueEntry) ([]byte, error) {
	if int(entry.BufIG) >= len(f.buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", entry.BufIG)
	}
	buf := f.buffers[entry.BufIG]
	base := uint64(uintptr(unsafe.Pointer(&buf[0])))
	if entry.Addr < base || entry.Addr+uint64(entry.Len) > base+uint64(len(buf)) {
		return nil, fmt.Errorf("address range outside buffer %d", entry.BufIG)
	}
	start := entry.Addr - base

	return buf[start : start+uint64(entry.Len)], nil
}

func (f *fakeRing) execute(entry iouring.SubmissionQueueEntry) int32 {
	if f.hook != nil {
		if res, ok := f.hook(entry); ok {
			return res
		}
	}

	switch entry.OpCode {
	case iouring.OpNop:
		return 0
	case iouring.OpFsync:
		f.syncs++
		if err := unix.Fdatasync(int(entry.Fd)); err != nil {
			return -int32(errnoOf(err))
		}

		return 0
	case iouring.OpReadFixed, iouring.OpWriteFixed:
	default:
		f.violate("unexpected opcode %s", iouring.OpName(entry.OpCode))

		return -int32(unix.EINVAL)
	}

	buf, err := f.buffer(entry)
	if err != nil {
		f.violate("%v", err)

		return -int32(unix.EFAULT)
	}
	if f.shortAlign > 0 && len(buf) > 1 && entry.Off%f.shortAlign == 0 {
		buf = buf[:len(buf)/2]
	}

	var n int
	if entry.OpCode == iouring.OpReadFixed {
		n, err = unix.Pread(int(entry.Fd), buf, int64(entry.Off))
	} else {
		n, err = unix.Pwrite(int(entry.Fd), buf, int64(entry.Off))
	}
	if err != nil {
		return -int32(errnoOf(err))
	}

	return int32(n)
}

func errnoOf(err error) unix.Errno {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}

	return unix.EIO
}

// Copyright (c) 2023 Paweł Gaczyński
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package iouring

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

const (
	SqeFixedFile uint8 = 1 << iota
	SqeIODrain
	SqeIOLink
	SqeIOHardlink
	SqeAsync
	SqeBufferSelect
	SqeCQESkipSuccess
)

const FsyncDatasync uint32 = 1 << 0

type SubmissionQueueEntry struct {
	OpCode      uint8
	Flags       uint8
	IoPrio      uint16
	Fd          int32
	Off         uint64
	Addr        uint64
	Len         uint32
	OpcodeFlags uint32
	UserData    uint64

	BufIG       uint16
	Personality uint16
	SpliceFdIn  int32
	_pad2       [2]uint64
}

// GetSQE reserves the next submission entry. The entry is not visible to the
// kernel until FlushSQ publishes it. When every slot is taken GetSQE returns
// ErrSQEOverflow and leaves the queue untouched.
func (ring *Ring) GetSQE() (*SubmissionQueueEntry, error) {
	if ring.exited {
		return nil, ErrRingClosed
	}

	sq := ring.sqRing
	next := sq.sqeTail + 1
	// head must be observed after the local tail snapshot so that entries the
	// kernel consumed in the meantime count as free.
	head := atomic.LoadUint32(sq.head)

	if next-head > *sq.ringEntries {
		return nil, ErrorSQEOverflow(sq.sqeTail - head)
	}

	entry := (*SubmissionQueueEntry)(unsafe.Add(
		unsafe.Pointer(&sq.sqeBuffer[0]),
		uintptr(sq.sqeTail&*sq.ringMask)*unsafe.Sizeof(SubmissionQueueEntry{}),
	))
	*entry = SubmissionQueueEntry{}
	sq.sqeTail = next

	return entry, nil
}

// FlushSQ publishes every reserved entry: the index array is filled first and
// the tail is advanced with an atomic store afterwards, so the kernel never
// sees a tail that covers unwritten entries. It returns the number of
// published entries the kernel has not consumed yet.
func (ring *Ring) FlushSQ() uint32 {
	sq := ring.sqRing
	mask := *sq.ringMask
	tail := *sq.tail

	toSubmit := sq.sqeTail - sq.sqeHead
	if toSubmit > 0 {
		for ; toSubmit > 0; toSubmit-- {
			*(*uint32)(unsafe.Add(
				unsafe.Pointer(sq.array),
				uintptr(tail&mask)*unsafe.Sizeof(uint32(0)),
			)) = sq.sqeHead & mask
			tail++
			sq.sqeHead++
		}
		atomic.StoreUint32(sq.tail, tail)
	}

	return tail - atomic.LoadUint32(sq.head)
}

// SubmitAndWait publishes pending entries and enters the kernel, blocking
// until at least waitNr completions are available. The kernel has to accept
// every published entry; anything less is reported as ErrPartialSubmit.
func (ring *Ring) SubmitAndWait(waitNr uint32) (uint, error) {
	if ring.exited {
		return 0, ErrRingClosed
	}

	submitted := ring.FlushSQ()
	if submitted == 0 && waitNr == 0 {
		return 0, nil
	}

	var flags uint32
	if waitNr > 0 || ring.flags&SetupIOPoll > 0 {
		flags |= EnterGetEvents
	}

	for {
		consumed, err := ring.enter(submitted, waitNr, flags, nil)
		if errors.Is(err, ErrInterruptedSyscall) {
			// A failed enter consumed nothing, retry with the same batch.
			continue
		}
		if err != nil {
			return 0, err
		}
		if uint32(consumed) != submitted {
			return consumed, ErrorPartialSubmit(submitted, consumed)
		}

		return consumed, nil
	}
}

func (ring *Ring) Submit() (uint, error) {
	return ring.SubmitAndWait(0)
}

// SQReady returns the number of entries reserved or published but not yet
// consumed by the kernel.
func (ring *Ring) SQReady() uint32 {
	return ring.sqRing.sqeTail - atomic.LoadUint32(ring.sqRing.head)
}

func (ring *Ring) SQSpaceLeft() uint32 {
	return *ring.sqRing.ringEntries - ring.SQReady()
}

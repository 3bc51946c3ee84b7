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
	"strings"
	"sync/atomic"
	"unsafe"
)

const (
	CQEFBuffer uint32 = 1 << iota
	CQEFMore
	CQEFSockNonempty
	CQEFNotif
)

type CompletionQueueEvent struct {
	UserData uint64
	Res      int32
	Flags    uint32
}

func (c CompletionQueueEvent) FlagsString() string {
	flagsStrings := make([]string, 0)
	if c.Flags&CQEFBuffer > 0 {
		flagsStrings = append(flagsStrings, "CQEFBuffer")
	}
	if c.Flags&CQEFMore > 0 {
		flagsStrings = append(flagsStrings, "CQEFMore")
	}
	if c.Flags&CQEFSockNonempty > 0 {
		flagsStrings = append(flagsStrings, "CQEFSockNonempty")
	}
	if c.Flags&CQEFNotif > 0 {
		flagsStrings = append(flagsStrings, "CQEFNotif")
	}

	return strings.Join(flagsStrings, " | ")
}

// PeekCQE returns a copy of the oldest ready completion and releases its slot
// back to the kernel. The second result is false when nothing is ready.
func (ring *Ring) PeekCQE() (CompletionQueueEvent, bool) {
	if ring.exited {
		return CompletionQueueEvent{}, false
	}

	cq := ring.cqRing
	head := atomic.LoadUint32(cq.head)
	tail := atomic.LoadUint32(cq.tail)

	if head == tail {
		return CompletionQueueEvent{}, false
	}

	event := *(*CompletionQueueEvent)(unsafe.Add(
		unsafe.Pointer(cq.cqeBuff),
		uintptr(head&*cq.ringMask)*unsafe.Sizeof(CompletionQueueEvent{}),
	))
	// The entry is copied out before the kernel may reuse the slot.
	atomic.StoreUint32(cq.head, head+1)

	return event, true
}

// WaitCQE blocks until a completion is ready and returns it.
func (ring *Ring) WaitCQE() (CompletionQueueEvent, error) {
	for {
		if event, ok := ring.PeekCQE(); ok {
			return event, nil
		}
		if _, err := ring.SubmitAndWait(1); err != nil {
			return CompletionQueueEvent{}, err
		}
	}
}

// CQReady returns the number of completions waiting to be peeked.
func (ring *Ring) CQReady() uint32 {
	return atomic.LoadUint32(ring.cqRing.tail) - atomic.LoadUint32(ring.cqRing.head)
}

// CQOverflow returns the kernel's count of completions dropped because the
// completion queue was full.
func (ring *Ring) CQOverflow() uint32 {
	return atomic.LoadUint32(ring.cqRing.overflow)
}

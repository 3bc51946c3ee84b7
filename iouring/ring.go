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

// Package iouring is a minimal driver for the Linux io_uring interface.
//
// A Ring is a single-producer/single-consumer queue pair shared with the
// kernel. Exactly one goroutine may drive a Ring; none of its methods are
// safe for concurrent use.
package iouring

const (
	SQNeedWakeup uint32 = 1 << iota
	SQCQOverflow
	SQTaskrun
)

type SubmissionQueue struct {
	buffer    []byte
	sqeBuffer []byte
	ringSize  uint64

	// Shared with the kernel. The kernel owns head, this process owns tail.
	head        *uint32
	tail        *uint32
	ringMask    *uint32
	ringEntries *uint32
	flags       *uint32
	dropped     *uint32
	array       *uint32

	// Local cursors over the SQE array. sqeTail counts reserved entries,
	// sqeHead counts entries already written to the index array.
	sqeTail uint32
	sqeHead uint32
}

type CompletionQueue struct {
	buffer   []byte
	ringSize uint64

	// Shared with the kernel. The kernel owns tail, this process owns head.
	head        *uint32
	tail        *uint32
	ringMask    *uint32
	ringEntries *uint32
	overflow    *uint32

	cqeBuff *CompletionQueueEvent
}

type Ring struct {
	sqRing   *SubmissionQueue
	cqRing   *CompletionQueue
	flags    uint32
	fd       int
	features uint32
	params   *Params

	buffersRegistered bool
	exited            bool
}

func (ring *Ring) Fd() int {
	return ring.fd
}

// Entries returns the submission queue capacity reported by the kernel. It
// may be larger than requested because the kernel rounds up to a power of two.
func (ring *Ring) Entries() uint32 {
	return *ring.sqRing.ringEntries
}

// CQEntries returns the completion queue capacity reported by the kernel.
func (ring *Ring) CQEntries() uint32 {
	return *ring.cqRing.ringEntries
}

func (ring *Ring) Features() uint32 {
	return ring.features
}

func newRing() *Ring {
	return &Ring{
		params: &Params{},
		sqRing: &SubmissionQueue{},
		cqRing: &CompletionQueue{},
	}
}

// CreateRing sets up a kernel context with room for entries submissions and
// maps its shared regions.
func CreateRing(entries uint32) (*Ring, error) {
	var (
		ring  = newRing()
		flags uint32
	)

	err := ring.QueueInit(entries, flags)
	if err != nil {
		return nil, err
	}

	return ring, nil
}

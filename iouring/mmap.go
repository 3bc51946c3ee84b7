package iouring

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Magic offsets for the application to mmap the data it needs.
const (
	offsqRing uint64 = 0
	offcqRing uint64 = 0x8000000
	offSQEs   uint64 = 0x10000000
)

func mmapRegion(fd int, offset uint64, size uint64) ([]byte, error) {
	data, err := unix.Mmap(fd, int64(offset), int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		return nil, fmt.Errorf("mmap offset %#x: %w", offset, err)
	}

	return data, nil
}

func (ring *Ring) mmap(fileDescriptor int) error {
	var (
		sq     = ring.sqRing
		cq     = ring.cqRing
		params = ring.params
		err    error
	)

	sq.ringSize = uint64(params.sqOff.array) + uint64(params.sqEntries)*uint64(unsafe.Sizeof(uint32(0)))
	cq.ringSize = uint64(params.cqOff.cqes) + uint64(params.cqEntries)*uint64(unsafe.Sizeof(CompletionQueueEvent{}))

	if params.features&FeatSingleMMap > 0 {
		if cq.ringSize > sq.ringSize {
			sq.ringSize = cq.ringSize
		}
		cq.ringSize = sq.ringSize
	}

	sq.buffer, err = mmapRegion(fileDescriptor, offsqRing, sq.ringSize)
	if err != nil {
		return err
	}

	if params.features&FeatSingleMMap > 0 {
		cq.buffer = sq.buffer
	} else {
		cq.buffer, err = mmapRegion(fileDescriptor, offcqRing, cq.ringSize)
		if err != nil {
			_ = ring.UnmapRings()

			return err
		}
	}

	sqeSize := uint64(params.sqEntries) * uint64(unsafe.Sizeof(SubmissionQueueEntry{}))

	sq.sqeBuffer, err = mmapRegion(fileDescriptor, offSQEs, sqeSize)
	if err != nil {
		_ = ring.UnmapRings()

		return err
	}

	sqStart := unsafe.Pointer(&sq.buffer[0])
	sq.head = (*uint32)(unsafe.Add(sqStart, params.sqOff.head))
	sq.tail = (*uint32)(unsafe.Add(sqStart, params.sqOff.tail))
	sq.ringMask = (*uint32)(unsafe.Add(sqStart, params.sqOff.ringMask))
	sq.ringEntries = (*uint32)(unsafe.Add(sqStart, params.sqOff.ringEntries))
	sq.flags = (*uint32)(unsafe.Add(sqStart, params.sqOff.flags))
	sq.dropped = (*uint32)(unsafe.Add(sqStart, params.sqOff.dropped))
	sq.array = (*uint32)(unsafe.Add(sqStart, params.sqOff.array))

	cqStart := unsafe.Pointer(&cq.buffer[0])
	cq.head = (*uint32)(unsafe.Add(cqStart, params.cqOff.head))
	cq.tail = (*uint32)(unsafe.Add(cqStart, params.cqOff.tail))
	cq.ringMask = (*uint32)(unsafe.Add(cqStart, params.cqOff.ringMask))
	cq.ringEntries = (*uint32)(unsafe.Add(cqStart, params.cqOff.ringEntries))
	cq.overflow = (*uint32)(unsafe.Add(cqStart, params.cqOff.overflow))
	cq.cqeBuff = (*CompletionQueueEvent)(unsafe.Add(cqStart, params.cqOff.cqes))

	// The kernel may report counters that do not start at zero.
	sq.sqeTail = *sq.tail
	sq.sqeHead = *sq.tail

	return nil
}

func (ring *Ring) munmap() error {
	if ring.sqRing.sqeBuffer == nil {
		return nil
	}
	err := unix.Munmap(ring.sqRing.sqeBuffer)
	ring.sqRing.sqeBuffer = nil

	return err
}

func (ring *Ring) UnmapRings() error {
	var firstErr, secondErr error

	sqBuffer, cqBuffer := ring.sqRing.buffer, ring.cqRing.buffer
	ring.sqRing.buffer, ring.cqRing.buffer = nil, nil

	if sqBuffer != nil {
		firstErr = unix.Munmap(sqBuffer)
	}
	if cqBuffer != nil && (sqBuffer == nil || &cqBuffer[0] != &sqBuffer[0]) {
		secondErr = unix.Munmap(cqBuffer)
	}

	if firstErr != nil || secondErr != nil {
		return fmt.Errorf("unmap rings, sq: %v, cq: %v", firstErr, secondErr)
	}

	return nil
}

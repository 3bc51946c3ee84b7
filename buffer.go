package uringcp

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// bufferPool is a single anonymous mapping sliced into equally sized,
// page-aligned cell buffers. It lives outside the Go heap so the kernel can
// keep it pinned for the whole copy.
type bufferPool struct {
	memory  []byte
	buffers [][]byte
}

func newBufferPool(count int, size int) (*bufferPool, error) {
	memory, err := unix.Mmap(-1, 0, count*size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_POPULATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d buffers of %d bytes: %w", count, size, err)
	}

	buffers := make([][]byte, count)
	for i := range buffers {
		start := i * size
		buffers[i] = memory[start : start+size : start+size]
	}

	return &bufferPool{memory: memory, buffers: buffers}, nil
}

func (p *bufferPool) release() error {
	if p.memory == nil {
		return nil
	}
	err := unix.Munmap(p.memory)
	p.memory = nil
	p.buffers = nil

	return err
}

package iouring_test

import (
	"testing"

	"github.com/pawelgaczynski/uringcp/iouring"
)

func createTestRing(t *testing.T, entries uint32) *iouring.Ring {
	t.Helper()

	ring, err := iouring.CreateRing(entries)
	if err != nil {
		t.Skipf("io_uring is not available: %v", err)
	}

	t.Cleanup(func() {
		_ = ring.QueueExit()
	})

	return ring
}

func queueNOPs(t *testing.T, ring *iouring.Ring, number int, offset int) error {
	t.Helper()

	for i := 0; i < number; i++ {
		entry, err := ring.GetSQE()
		if err != nil {
			return err
		}

		entry.PrepareNop()
		entry.UserData = uint64(i + offset)
	}

	return nil
}

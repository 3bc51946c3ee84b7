package iouring_test

import (
	"testing"

	"github.com/pawelgaczynski/uringcp/iouring"
	. "github.com/stretchr/testify/require"
)

func TestGetSQEOverflow(t *testing.T) {
	ring := createTestRing(t, 4)

	NoError(t, queueNOPs(t, ring, 4, 0))
	Equal(t, uint32(4), ring.SQReady())
	Equal(t, uint32(0), ring.SQSpaceLeft())

	_, err := ring.GetSQE()
	ErrorIs(t, err, iouring.ErrSQEOverflow)
	Equal(t, uint32(4), ring.SQReady())

	submitted, err := ring.SubmitAndWait(4)
	NoError(t, err)
	Equal(t, uint(4), submitted)
	Equal(t, uint32(0), ring.SQReady())

	entry, err := ring.GetSQE()
	NoError(t, err)
	NotNil(t, entry)
}

func TestFlushSQWithoutEntries(t *testing.T) {
	ring := createTestRing(t, 4)

	Equal(t, uint32(0), ring.FlushSQ())

	submitted, err := ring.Submit()
	NoError(t, err)
	Equal(t, uint(0), submitted)
}

func TestSubmitAndWait(t *testing.T) {
	ring := createTestRing(t, 8)

	NoError(t, queueNOPs(t, ring, 3, 10))

	submitted, err := ring.SubmitAndWait(3)
	NoError(t, err)
	Equal(t, uint(3), submitted)
	Equal(t, uint32(3), ring.CQReady())

	userData := make([]uint64, 0, 3)
	for {
		cqe, ok := ring.PeekCQE()
		if !ok {
			break
		}
		Equal(t, int32(0), cqe.Res)
		userData = append(userData, cqe.UserData)
	}
	ElementsMatch(t, []uint64{10, 11, 12}, userData)
	Equal(t, uint32(0), ring.CQReady())
}

func TestSubmitWrapsAround(t *testing.T) {
	ring := createTestRing(t, 2)

	for round := 0; round < 5; round++ {
		NoError(t, queueNOPs(t, ring, 2, round*2))
		submitted, err := ring.SubmitAndWait(2)
		NoError(t, err)
		Equal(t, uint(2), submitted)

		for i := 0; i < 2; i++ {
			cqe, err := ring.WaitCQE()
			NoError(t, err)
			Contains(t, []uint64{uint64(round * 2), uint64(round*2 + 1)}, cqe.UserData)
		}
	}
}

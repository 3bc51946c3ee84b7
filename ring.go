package uringcp

import "github.com/pawelgaczynski/uringcp/iouring"

// submissionRing is the part of *iouring.Ring the copy loop drives.
type submissionRing interface {
	GetSQE() (*iouring.SubmissionQueueEntry, error)
	SubmitAndWait(waitNr uint32) (uint, error)
	PeekCQE() (iouring.CompletionQueueEvent, bool)
	RegisterBuffers(buffers [][]byte) error
	QueueExit() error
}

type ringFactory func(entries uint32) (submissionRing, error)

func newKernelRing(entries uint32) (submissionRing, error) {
	ring, err := iouring.CreateRing(entries)
	if err != nil {
		return nil, err
	}

	return ring, nil
}

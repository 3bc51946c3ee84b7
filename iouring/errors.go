package iouring

import (
	"errors"
	"fmt"
)

var (
	ErrTimerExpired       = errors.New("timer expired")
	ErrInterruptedSyscall = errors.New("interrupted system call")
	ErrAgain              = errors.New("try again")
	// ErrSQEOverflow occurs when every submission slot is already reserved.
	ErrSQEOverflow = errors.New("submission queue is full")
	// ErrPartialSubmit occurs when the kernel accepts fewer entries than were published.
	ErrPartialSubmit = errors.New("kernel accepted fewer entries than submitted")
	// ErrRingClosed occurs when a ring is used after QueueExit.
	ErrRingClosed = errors.New("ring is closed")
	// ErrBuffersRegistered occurs when trying to register buffers for the second time.
	ErrBuffersRegistered = errors.New("buffers already registered")
	// ErrNoBuffers occurs when registering an empty buffer set or an empty buffer.
	ErrNoBuffers = errors.New("no buffers to register")
)

func ErrorSQEOverflow(pending uint32) error {
	return fmt.Errorf("%w, pending: %d", ErrSQEOverflow, pending)
}

func ErrorPartialSubmit(submitted uint32, consumed uint) error {
	return fmt.Errorf("%w, submitted: %d, consumed: %d", ErrPartialSubmit, submitted, consumed)
}

package iouring

import (
	"os"
	"syscall"
	"unsafe"
)

const (
	EnterGetEvents uint32 = 1 << iota
	EnterSQWakeup
	EnterSQWait
	EnterExtArg
	EnterRegisteredRing
)

func (ring *Ring) enter(submitted uint32, waitNr uint32, flags uint32, sig unsafe.Pointer) (uint, error) {
	consumed, _, errno := syscall.Syscall6(
		sysEnter,
		uintptr(ring.fd),
		uintptr(submitted),
		uintptr(waitNr),
		uintptr(flags),
		uintptr(sig),
		uintptr(nSig/szDivider),
	)
	if errno != 0 {
		return 0, convertErrno(errno)
	}

	return uint(consumed), nil
}

func convertErrno(errno syscall.Errno) error {
	switch errno {
	case syscall.ETIME:
		return ErrTimerExpired
	case syscall.EINTR:
		return ErrInterruptedSyscall
	case syscall.EAGAIN:
		return ErrAgain
	default:
		return os.NewSyscallError("io_uring_enter", errno)
	}
}

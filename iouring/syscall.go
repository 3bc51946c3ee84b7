package iouring

import "golang.org/x/sys/unix"

const (
	sysSetup    = unix.SYS_IO_URING_SETUP
	sysEnter    = unix.SYS_IO_URING_ENTER
	sysRegister = unix.SYS_IO_URING_REGISTER
)

// Size of the kernel sigset passed to io_uring_enter.
const (
	nSig      = 65
	szDivider = 8
)

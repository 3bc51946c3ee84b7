package uringcp

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// maxPreallocate bounds preallocation to a 32-bit byte count; larger files
// grow past it as blocks are written.
const maxPreallocate = 0xFFFFFFFF

var (
	errSameFile   = errors.New("source and destination are the same file")
	errNotRegular = errors.New("destination is not a regular file")
)

func openSource(path string) (*os.File, os.FileInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, ErrorSourceUnreadable(path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()

		return nil, nil, ErrorSourceUnreadable(path, err)
	}
	if !info.Mode().IsRegular() {
		_ = file.Close()

		return nil, nil, ErrorSourceUnreadable(path, fmt.Errorf("not a regular file: %s", info.Mode()))
	}

	return file, info, nil
}

func preallocateSize(size int64) int64 {
	if size > maxPreallocate {
		return maxPreallocate
	}

	return size
}

// createDestination only ever creates or truncates regular files. Devices,
// pipes and sockets are rejected before they are opened, so a failed copy
// never removes them.
//
//nolint:gosec // fd values are small non-negative integers
func createDestination(path string, source os.FileInfo) (*os.File, error) {
	if existing, err := os.Stat(path); err == nil {
		if os.SameFile(existing, source) {
			return nil, ErrorDestination(path, errSameFile)
		}
		if !existing.Mode().IsRegular() {
			return nil, ErrorDestination(path, fmt.Errorf("%w: %s", errNotRegular, existing.Mode()))
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, ErrorDestination(path, err)
	}

	// The path may have been replaced between the check and the open.
	var stat unix.Stat_t
	if err = unix.Fstat(int(file.Fd()), &stat); err != nil {
		_ = file.Close()

		return nil, ErrorDestination(path, os.NewSyscallError("fstat", err))
	}
	if stat.Mode&unix.S_IFMT != unix.S_IFREG {
		_ = file.Close()

		return nil, ErrorDestination(path, errNotRegular)
	}

	if err = preallocate(file, preallocateSize(source.Size())); err != nil {
		_ = file.Close()
		_ = os.Remove(path)

		return nil, ErrorDestination(path, err)
	}

	return file, nil
}

// preallocate reserves disk space up front. Filesystems without fallocate
// support are tolerated, running out of space is not.
//
//nolint:gosec // fd values are small non-negative integers
func preallocate(file *os.File, size int64) error {
	if size == 0 {
		return nil
	}

	err := unix.Fallocate(int(file.Fd()), 0, 0, size)
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return nil
	}
	if err != nil {
		return os.NewSyscallError("fallocate", err)
	}

	return nil
}

// discardDestination leaves no partial copy behind.
func discardDestination(file *os.File, path string) {
	if file != nil {
		_ = file.Close()
	}
	_ = os.Remove(path)
}

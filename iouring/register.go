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

package iouring

import (
	"os"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	RegisterBuffersOp uint = iota
	UnregisterBuffersOp

	RegisterFilesOp
	UnregisterFilesOp

	RegisterEventFDOp
	UnregisterEventFDOp

	RegisterFilesUpdateOp
	RegisterEventFDAsyncOp
	RegisterProbeOp
)

// MaxRegisteredBuffers is the kernel limit on the number of fixed buffers.
const MaxRegisteredBuffers = 1 << 14

const opSupported uint16 = 1 << 0

func (ring *Ring) Register(op uint, arg unsafe.Pointer, nrArgs int) (uintptr, uintptr, error) {
	if ring.exited {
		return 0, 0, ErrRingClosed
	}

	returnFirst, returnSecond, errno := syscall.Syscall6(
		sysRegister,
		uintptr(ring.fd),
		uintptr(op),
		uintptr(arg),
		uintptr(nrArgs),
		0,
		0,
	)
	if errno != 0 {
		return 0, 0, os.NewSyscallError("io_uring_register", errno)
	}

	return returnFirst, returnSecond, nil
}

// RegisterBuffers pins buffers in the kernel so that fixed reads and writes
// can address them by index. It may be called once per ring.
func (ring *Ring) RegisterBuffers(buffers [][]byte) error {
	if ring.buffersRegistered {
		return ErrBuffersRegistered
	}
	if len(buffers) == 0 {
		return ErrNoBuffers
	}

	iovecs := make([]unix.Iovec, len(buffers))
	for i, buffer := range buffers {
		if len(buffer) == 0 {
			return ErrNoBuffers
		}
		iovecs[i].Base = &buffer[0]
		iovecs[i].SetLen(len(buffer))
	}

	_, _, err := ring.Register(RegisterBuffersOp, unsafe.Pointer(&iovecs[0]), len(iovecs))
	runtime.KeepAlive(iovecs)
	runtime.KeepAlive(buffers)

	if err != nil {
		return err
	}
	ring.buffersRegistered = true

	return nil
}

func (ring *Ring) RegisterProbe() (*Probe, error) {
	probe := &Probe{}
	_, _, err := ring.Register(RegisterProbeOp, unsafe.Pointer(probe), probeOpsSize)
	runtime.KeepAlive(probe)

	return probe, err
}

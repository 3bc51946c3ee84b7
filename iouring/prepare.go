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

import "unsafe"

func (entry *SubmissionQueueEntry) prepareRW(opcode uint8, fd int, addr uintptr, length uint32, offset uint64) {
	entry.OpCode = opcode
	entry.Flags = 0
	entry.IoPrio = 0
	entry.Fd = int32(fd)
	entry.Off = offset
	entry.Addr = uint64(addr)
	entry.Len = length
	entry.OpcodeFlags = 0
	entry.UserData = 0
	entry.BufIG = 0
	entry.Personality = 0
	entry.SpliceFdIn = 0
	entry._pad2[0] = 0
	entry._pad2[1] = 0
}

func bufferAddress(buffer []byte) uintptr {
	if len(buffer) == 0 {
		return 0
	}

	return uintptr(unsafe.Pointer(&buffer[0]))
}

// PrepareReadFixed reads len(buffer) bytes at offset into buffer, which must
// lie inside the registered buffer with the given index.
func (entry *SubmissionQueueEntry) PrepareReadFixed(fd int, buffer []byte, offset uint64, index int) {
	entry.prepareRW(OpReadFixed, fd, bufferAddress(buffer), uint32(len(buffer)), offset)
	entry.BufIG = uint16(index)
}

// PrepareWriteFixed writes buffer at offset; buffer must lie inside the
// registered buffer with the given index.
func (entry *SubmissionQueueEntry) PrepareWriteFixed(fd int, buffer []byte, offset uint64, index int) {
	entry.prepareRW(OpWriteFixed, fd, bufferAddress(buffer), uint32(len(buffer)), offset)
	entry.BufIG = uint16(index)
}

func (entry *SubmissionQueueEntry) PrepareFsync(fd int, fsyncFlags uint32) {
	entry.prepareRW(OpFsync, fd, 0, 0, 0)
	entry.OpcodeFlags = fsyncFlags
}

func (entry *SubmissionQueueEntry) PrepareNop() {
	entry.prepareRW(OpNop, -1, 0, 0, 0)
}

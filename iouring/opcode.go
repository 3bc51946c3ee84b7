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

import "fmt"

// Opcodes in kernel order; the numeric values are part of the ABI.
const (
	OpNop uint8 = iota
	OpReadv
	OpWritev
	OpFsync
	OpReadFixed
	OpWriteFixed
	OpPollAdd
	OpPollRemove
	OpSyncFileRange
	OpSendmsg
	OpRecvmsg
	OpTimeout
	OpTimeoutRemove
	OpAccept
	OpAsyncCancel
	OpLinkTimeout
	OpConnect
	OpFallocate
	OpOpenat
	OpClose
	OpFilesUpdate
	OpStatx
	OpRead
	OpWrite

	OpLast
)

var opCodesMap = map[uint8]string{
	OpNop:        "IORING_OP_NOP",
	OpReadv:      "IORING_OP_READV",
	OpWritev:     "IORING_OP_WRITEV",
	OpFsync:      "IORING_OP_FSYNC",
	OpReadFixed:  "IORING_OP_READ_FIXED",
	OpWriteFixed: "IORING_OP_WRITE_FIXED",
	OpFallocate:  "IORING_OP_FALLOCATE",
	OpRead:       "IORING_OP_READ",
	OpWrite:      "IORING_OP_WRITE",
}

// OpName returns the kernel name of opcode.
func OpName(opcode uint8) string {
	if name, ok := opCodesMap[opcode]; ok {
		return name
	}

	return fmt.Sprintf("IORING_OP_%d", opcode)
}

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

package uringcp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig occurs when ring entries or block size are out of range.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrSourceUnreadable occurs when the source file cannot be opened or inspected.
	ErrSourceUnreadable = errors.New("source is unreadable")
	// ErrDestination occurs when the destination cannot be created or preallocated.
	ErrDestination = errors.New("destination is unusable")
	// ErrProtocol occurs when the ring or the cells end up in a state the copy
	// loop never produces on its own.
	ErrProtocol = errors.New("ring protocol violation")
	// ErrIO occurs when the kernel reports a failed read, write or fsync.
	ErrIO = errors.New("i/o failed")
	// ErrVerifyMismatch occurs when source and destination digests differ.
	ErrVerifyMismatch = errors.New("destination does not match source")
)

// OpError reports a failed operation on one cell.
type OpError struct {
	Op     string
	Cell   int
	Offset int64
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s operation failed at offset: %d, cell: %d: %v", e.Op, e.Offset, e.Cell, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

func ErrorOp(op string, cell int, offset int64, err error) error {
	return &OpError{Op: op, Cell: cell, Offset: offset, Err: err}
}

// ProtocolError reports an internal consistency failure. Cell and Offset are
// -1 when no cell is involved.
type ProtocolError struct {
	Reason string
	Cell   int
	Offset int64
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("%s: %s, cell: %d, offset: %d", ErrProtocol, e.Reason, e.Cell, e.Offset)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ProtocolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProtocol}
	}

	return []error{ErrProtocol, e.Err}
}

func ErrorProtocol(reason string, cell int, offset int64, err error) error {
	return &ProtocolError{Reason: reason, Cell: cell, Offset: offset, Err: err}
}

func ErrorSourceUnreadable(path string, err error) error {
	return fmt.Errorf("%w, path: %s: %w", ErrSourceUnreadable, path, err)
}

func ErrorDestination(path string, err error) error {
	return fmt.Errorf("%w, path: %s: %w", ErrDestination, path, err)
}

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
	"fmt"
	"strings"
)

const probeOpsSize = 256

type (
	Probe struct {
		LastOp uint8
		OpsLen uint8
		Res    uint16
		Res2   [3]uint32
		Ops    [probeOpsSize]probeOp
	}
	probeOp struct {
		Op    uint8
		Res   uint8
		Flags uint16
		Res2  uint32
	}
)

func (p *Probe) IsSupported(op uint8) bool {
	for i := 0; i < int(p.OpsLen) && i < probeOpsSize; i++ {
		if p.Ops[i].Op != op {
			continue
		}

		return p.Ops[i].Flags&opSupported > 0
	}

	return false
}

// CopyOps are the opcodes a fixed-buffer copy depends on.
var CopyOps = []uint8{OpNop, OpFsync, OpReadFixed, OpWriteFixed}

func probeRing() (*Probe, error) {
	ring, err := CreateRing(1)
	if err != nil {
		return nil, err
	}

	probe, err := ring.RegisterProbe()
	exitErr := ring.QueueExit()

	if err != nil {
		return nil, err
	}
	if exitErr != nil {
		return nil, exitErr
	}

	return probe, nil
}

// CheckAvailableFeatures reports, one line per opcode, whether the running
// kernel supports each of ops. CopyOps are checked when ops is empty.
func CheckAvailableFeatures(ops ...uint8) (string, error) {
	probe, err := probeRing()
	if err != nil {
		return "", err
	}

	if len(ops) == 0 {
		ops = CopyOps
	}

	var result strings.Builder
	for _, opCode := range ops {
		var status string
		if !probe.IsSupported(opCode) {
			status = " NOT"
		}
		fmt.Fprintf(&result, "%s is%s supported\n", OpName(opCode), status)
	}

	return result.String(), nil
}

func IsOpSupported(opCode uint8) (bool, error) {
	probe, err := probeRing()
	if err != nil {
		return false, err
	}

	return probe.IsSupported(opCode), nil
}

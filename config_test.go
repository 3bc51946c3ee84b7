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
	"os"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	opts := []ConfigOption{
		WithRingEntries(64),
		WithBlockSize(1 << 20),
		WithSync(false),
		WithVerify(true),
		WithLockOSThread(true),
		WithCPUAffinity(2),
		WithProcessPriority(true),
		WithLoggerLevel(zerolog.DebugLevel),
		WithPrettyLogger(true),
	}

	config := NewConfig(opts...)

	Equal(t, uint32(64), config.RingEntries)
	Equal(t, uint32(1<<20), config.BlockSize)
	Equal(t, false, config.Sync)
	Equal(t, true, config.Verify)
	Equal(t, true, config.LockOSThread)
	Equal(t, 2, config.CPUAffinity)
	Equal(t, true, config.ProcessPriority)
	Equal(t, zerolog.DebugLevel, config.LoggerLevel)
	Equal(t, true, config.PrettyLogger)
	NoError(t, config.validate())
}

func TestConfigDefaults(t *testing.T) {
	config := NewConfig()

	Equal(t, uint32(8), config.RingEntries)
	Equal(t, uint32(4096), config.BlockSize)
	Equal(t, true, config.Sync)
	Equal(t, false, config.Verify)
	Equal(t, -1, config.CPUAffinity)
	Equal(t, zerolog.ErrorLevel, config.LoggerLevel)
	NoError(t, config.validate())
}

func TestConfigValidate(t *testing.T) {
	pageSize := uint32(os.Getpagesize())

	invalid := []Config{
		NewConfig(WithRingEntries(0)),
		NewConfig(WithRingEntries(1 << 15)),
		NewConfig(WithBlockSize(0)),
		NewConfig(WithBlockSize(pageSize + 1)),
		NewConfig(WithBlockSize(2 << 30)),
	}
	for _, config := range invalid {
		ErrorIs(t, config.validate(), ErrInvalidConfig)
	}

	NoError(t, NewConfig(WithRingEntries(1), WithBlockSize(pageSize)).validate())
}

// Copyright (c) 2023 Paweł Gaczyński
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package uringcp copies files block by block through io_uring. Every block
// is read into one of a fixed set of registered buffers and written back out
// from the same buffer, with at most one operation outstanding per buffer.
package uringcp

import (
	"github.com/pkg/errors"
)

// Copy copies src to dst with a single-use Copier.
// The copy can be configured with additional options.
func Copy(src, dst string, options ...ConfigOption) (Result, error) {
	copier, err := NewCopier(NewConfig(options...))
	if err != nil {
		return Result{}, err
	}

	result, err := copier.Copy(src, dst)

	return result, errors.Wrapf(err, "copying %s to %s", src, dst)
}

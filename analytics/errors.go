// Copyright 2022-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of the error taxonomy; every failure reported by
// this package matches it with errors.Is
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrEmptySeries   = fmt.Errorf("%w: series is empty", ErrInvalidInput)
	ErrNonFinite     = fmt.Errorf("%w: series contains non-finite values", ErrInvalidInput)
	ErrInvalidWindow = fmt.Errorf("%w: unrecognized window token", ErrInvalidInput)
)

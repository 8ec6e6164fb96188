// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package chatmark

import (
	"io"
	"log"
	"sync/atomic"
)

var logger atomic.Pointer[log.Logger]

func init() {
	SetLogger(nil)
}

// SetLogger sets the logger used to report recovered failures,
// such as a table that could not be built or a tokenizer that panicked.
// Rendering never fails because of them.
// Passing nil discards such reports, which is the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger.Store(l)
}

func logf(format string, args ...any) {
	logger.Load().Printf("chatmark: "+format, args...)
}

// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package cli

import (
	"fmt"
	"io"
	"sync"
)

// StdoutConsole writes interleaved per-preset output as "[prefix] text"
// lines, serialized behind a mutex since RunAll drives one preset per
// goroutine and every preset writes through the same console.
type StdoutConsole struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdoutConsole builds a StdoutConsole writing to w.
func NewStdoutConsole(w io.Writer) *StdoutConsole {
	return &StdoutConsole{w: w}
}

// Line implements execclient.Console.
func (c *StdoutConsole) Line(prefix, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prefix == "" {
		fmt.Fprintln(c.w, text)
		return
	}
	fmt.Fprintf(c.w, "[%s] %s\n", prefix, text)
}

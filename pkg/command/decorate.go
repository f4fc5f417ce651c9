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

package command

import (
	"fmt"
	"sort"
	"strings"
)

// WithEnvironmentPrelude prepends a fixed export block to a command line.
// The prelude establishes PATH and well-known toolchain roots for every
// subsequent command issued against a TaskContext.
func WithEnvironmentPrelude(line string, env map[string]string) string {
	if len(env) == 0 {
		return line
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "export %s=%s\n", k, quote(env[k]))
	}
	b.WriteString(line)
	return b.String()
}

// WithCgroupJoin prepends a best-effort cgroup-join prelude: it writes the
// current shell's PID into <cgroupPath>/cgroup.procs, tolerating a missing
// or unwritable file so bootstrap commands (e.g. starting the exec daemon
// itself, before any cgroup exists) are never blocked by this step.
func WithCgroupJoin(line, cgroupPath string) string {
	if cgroupPath == "" {
		return line
	}
	join := fmt.Sprintf("echo $$ > %s/cgroup.procs 2>/dev/null || true\n", quote(cgroupPath))
	return join + line
}

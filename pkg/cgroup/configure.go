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

package cgroup

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Runner is the minimal transport surface the cgroup configurator needs:
// run a command line and get back its ExecResult (or error on transport
// failure). Its shape differs from pkg/execclient.Transport, so callers
// holding a Transport wrap it in a small adapter to satisfy this.
type Runner interface {
	Run(ctx context.Context, label, line string, timeout time.Duration) (exitCode int, stdout, stderr string, err error)
}

const basePath = "/sys/fs/cgroup/cmux"

// Configure renders and runs the cgroup-creation script for profile on the
// remote VM, preferring the v2 interface and falling back to v1 tooling.
// It returns the cgroup path to join on success, or "" (with no error) when
// neither interface is usable — provisioning continues without resource
// isolation in that case, matching the original's "log a warning and carry
// on" behavior.
func Configure(ctx context.Context, r Runner, profile Profile) (string, error) {
	script := renderScript(profile, basePath)
	exitCode, stdout, _, err := r.Run(ctx, "configure-provisioning-cgroup", script, 30*time.Second)
	if err != nil {
		return "", err
	}
	if exitCode != 0 {
		return "", nil
	}
	result := strings.TrimSpace(stdout)
	if result == "" {
		return "", nil
	}
	return result, nil
}

// renderScript builds the shell script that creates path (v2) or a v1
// equivalent named after profile.Name, writes only non-empty fields, and
// echoes the resulting cgroup path on its final line iff verification
// (directory + cgroup.procs existing) succeeds. It prints nothing and exits
// 0 when no usable cgroup interface is found, matching "continue without
// resource isolation".
func renderScript(p Profile, path string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "set -eu\n")
	fmt.Fprintf(&b, "target=%s\n", shQuote(path))
	b.WriteString(`if [ -f /sys/fs/cgroup/cgroup.controllers ]; then
  mkdir -p "$target"
  parent_controllers=$(cat /sys/fs/cgroup/cgroup.controllers)
  enable_controller() {
    ctrl="$1"
    case " $parent_controllers " in
      *" $ctrl "*)
        if ! grep -qw "$ctrl" /sys/fs/cgroup/cgroup.subtree_control 2>/dev/null; then
          echo "+$ctrl" > /sys/fs/cgroup/cgroup.subtree_control 2>/dev/null || true
        fi
        ;;
    esac
  }
  enable_controller cpu
  enable_controller io
  enable_controller memory
`)
	if p.CPUQuota != nil && p.CPUPeriod != nil {
		fmt.Fprintf(&b, "  [ -w \"$target/cpu.max\" ] && echo %q > \"$target/cpu.max\" || true\n",
			fmt.Sprintf("%d %d", *p.CPUQuota, *p.CPUPeriod))
	}
	if p.CPUWeight != nil {
		fmt.Fprintf(&b, "  [ -w \"$target/cpu.weight\" ] && echo %d > \"$target/cpu.weight\" || true\n", *p.CPUWeight)
	}
	if p.MemoryHigh != nil {
		fmt.Fprintf(&b, "  [ -w \"$target/memory.high\" ] && echo %d > \"$target/memory.high\" || true\n", *p.MemoryHigh)
	}
	if p.MemoryMax != nil {
		fmt.Fprintf(&b, "  [ -w \"$target/memory.max\" ] && echo %d > \"$target/memory.max\" || true\n", *p.MemoryMax)
	}
	if p.IOWeight != nil {
		fmt.Fprintf(&b, "  [ -w \"$target/io.weight\" ] && echo %d > \"$target/io.weight\" || true\n", *p.IOWeight)
	}
	b.WriteString("  if [ -d \"$target\" ] && [ -f \"$target/cgroup.procs\" ]; then echo \"$target\"; fi\n")
	b.WriteString("elif command -v cgcreate >/dev/null 2>&1; then\n")
	fmt.Fprintf(&b, "  name=%s\n", shQuote(p.Name))
	b.WriteString("  cgcreate -g cpu,memory,blkio:\"$name\" 2>/dev/null || true\n")
	if p.CPUPeriod != nil {
		fmt.Fprintf(&b, "  cgset -r cpu.cfs_period_us=%d \"$name\" 2>/dev/null || true\n", *p.CPUPeriod)
	}
	if p.CPUQuota != nil {
		fmt.Fprintf(&b, "  cgset -r cpu.cfs_quota_us=%d \"$name\" 2>/dev/null || true\n", *p.CPUQuota)
	}
	if p.MemoryMax != nil {
		fmt.Fprintf(&b, "  cgset -r memory.limit_in_bytes=%d \"$name\" 2>/dev/null || true\n", *p.MemoryMax)
	}
	if p.MemoryHigh != nil {
		fmt.Fprintf(&b, "  cgset -r memory.soft_limit_in_bytes=%d \"$name\" 2>/dev/null || true\n", *p.MemoryHigh)
	}
	if p.IOWeight != nil {
		fmt.Fprintf(&b, "  cgset -r blkio.weight=%d \"$name\" 2>/dev/null || true\n", *p.IOWeight)
	}
	b.WriteString("  v1path=\"/sys/fs/cgroup/cpu/$name\"\n")
	b.WriteString("  if [ -d \"$v1path\" ] && [ -f \"$v1path/cgroup.procs\" ]; then echo \"$v1path\"; fi\n")
	b.WriteString("fi\n")

	return b.String()
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

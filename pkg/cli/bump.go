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
	"context"
	"fmt"
	"os"
	"os/exec"
)

// bumpIDEDeps runs "bun run bump-ide-deps" in repoRoot before provisioning,
// refreshing the pinned IDE dependency versions the task graph installs.
// Absence of bun on the host is a fatal configuration error rather than a
// silent skip, matching the original's refusal to proceed without it.
func bumpIDEDeps(ctx context.Context, repoRoot string, stdout, stderr *os.File) error {
	bunPath, err := exec.LookPath("bun")
	if err != nil {
		return fmt.Errorf("bun not found on host; install bun or rerun with --bump-ide-deps=false")
	}

	cmd := exec.CommandContext(ctx, bunPath, "run", "bump-ide-deps")
	cmd.Dir = repoRoot
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("bun run bump-ide-deps failed: %w", err)
	}
	return nil
}

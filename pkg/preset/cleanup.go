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

package preset

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmux/snapctl/pkg/defaults"
	"github.com/cmux/snapctl/pkg/execclient"
)

// cleanupDiskScript removes the extracted repo, the (already-unlinked)
// upload tar, and every toolchain cache before a snapshot is taken,
// re-creating the cache directories empty at 0755 so the golden image
// boots with a warm, empty cache rather than a missing one.
func cleanupDiskScript(remoteRepoRoot, remoteRepoTar string) string {
	return fmt.Sprintf(`
set -euo pipefail
rm -rf %[1]s
rm -f %[2]s
if [ -d /usr/local/cargo ]; then
    rm -rf /usr/local/cargo/registry /usr/local/cargo/git
    install -d -m 0755 /usr/local/cargo/registry /usr/local/cargo/git
fi
if [ -d /usr/local/rustup ]; then
    rm -rf /usr/local/rustup/tmp /usr/local/rustup/downloads
    install -d -m 0755 /usr/local/rustup/tmp /usr/local/rustup/downloads
fi
rm -rf /root/.cache/go-build /root/.cache/pip /root/.cache/uv /root/.cache/bun
rm -rf /root/.bun/install/cache /root/.npm /root/.pnpm-store /root/go
rm -rf /usr/local/go-workspace/bin /usr/local/go-workspace/pkg/mod /usr/local/go-workspace/pkg/sumdb
rm -rf /usr/local/go-cache
install -d -m 0755 /root/.cache/go-build /root/.cache/pip /root/.cache/uv /root/.cache/bun
install -d -m 0755 /usr/local/go-workspace/bin /usr/local/go-workspace/pkg/mod /usr/local/go-workspace/pkg/sumdb
install -d -m 0755 /usr/local/go-cache
if [ -d /var/cache/apt/archives ]; then
    rm -rf /var/cache/apt/archives/*.deb /var/cache/apt/archives/partial
    install -d -m 0755 /var/cache/apt/archives/partial
fi
if [ -d /var/lib/apt/lists ]; then
    find /var/lib/apt/lists -mindepth 1 -maxdepth 1 -type f -delete
    rm -rf /var/lib/apt/lists/partial
    install -d -m 0755 /var/lib/apt/lists/partial
fi
`, shQuote(remoteRepoRoot), shQuote(remoteRepoTar))
}

func cleanupDisk(ctx context.Context, transport execclient.Transport, remoteRepoRoot, remoteRepoTar string) error {
	_, err := transport.Run(ctx, "cleanup-disk-artifacts", cleanupDiskScript(remoteRepoRoot, remoteRepoTar), defaults.TaskDefaultTimeout)
	return err
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

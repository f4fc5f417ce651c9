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

package provisiontasks

import (
	"context"

	"github.com/cmux/snapctl/pkg/defaults"
	"github.com/cmux/snapctl/pkg/task"
)

// run renders a shell-backed task body: run the given script through
// tc.ExecClient under the task's own name, returning its error unchanged
// (execclient.Transport already wraps a non-zero exit as a
// RemoteCommandFailure-flavored StructuredError).
func run(name, script string) task.Func {
	return func(ctx context.Context, tc *task.Context) error {
		_, err := tc.ExecClient.Run(ctx, name, script, defaults.TaskDefaultTimeout)
		return err
	}
}

func aptBootstrapTask() task.Definition {
	return task.Definition{
		Name:        "apt-bootstrap",
		Description: "Install core apt utilities and set up package sources",
		Func: run("apt-bootstrap", `
set -eux
DEBIAN_FRONTEND=noninteractive apt-get update
DEBIAN_FRONTEND=noninteractive apt-get install -y \
    ca-certificates curl wget jq git gnupg lsb-release \
    tar unzip xz-utils zip bzip2 gzip htop lsof
rm -rf /var/lib/apt/lists/*
`),
	}
}

func installBasePackagesTask() task.Definition {
	return task.Definition{
		Name:         "install-base-packages",
		Description:  "Install build-essential tooling and desktop utilities",
		Dependencies: []string{"apt-bootstrap"},
		Func: run("install-base-packages", `
set -eux
DEBIAN_FRONTEND=noninteractive apt-get update
DEBIAN_FRONTEND=noninteractive apt-get install -y \
    build-essential make pkg-config g++ libssl-dev \
    tigervnc-standalone-server xvfb x11-xserver-utils xterm novnc \
    dbus-x11 openbox tmux gh zsh ripgrep ffmpeg xdotool
rm -rf /var/lib/apt/lists/*
`),
	}
}

func ensureDockerTask() task.Definition {
	return task.Definition{
		Name:         "ensure-docker",
		Description:  "Install Docker engine and CLI plugins",
		Dependencies: []string{"install-base-packages"},
		Func: run("ensure-docker", `
set -euo pipefail
DEBIAN_FRONTEND=noninteractive apt-get update
DEBIAN_FRONTEND=noninteractive apt-get install -y docker-ce docker-ce-cli containerd.io docker-buildx-plugin docker-compose-plugin
systemctl enable --now docker.service
for attempt in $(seq 1 30); do
  docker info >/dev/null 2>&1 && break
  [ "$attempt" -eq 30 ] && { echo "docker daemon failed to start" >&2; exit 1; }
  sleep 2
done
`),
	}
}

func installNodeRuntimeTask() task.Definition {
	return task.Definition{
		Name:         "install-node-runtime",
		Description:  "Install Node.js runtime and pnpm via corepack",
		Dependencies: []string{"install-base-packages"},
		Func: run("install-node-runtime", `
set -eux
curl -fsSL https://deb.nodesource.com/setup_lts.x | bash -
DEBIAN_FRONTEND=noninteractive apt-get install -y nodejs
corepack enable
`),
	}
}

func installBunTask() task.Definition {
	return task.Definition{
		Name:         "install-bun",
		Description:  "Install the Bun runtime",
		Dependencies: []string{"install-base-packages"},
		Func: run("install-bun", `
set -eux
curl -fsSL https://bun.sh/install | bash
install -Dm0755 "$HOME/.bun/bin/bun" /usr/local/bin/bun
`),
	}
}

func installGoToolchainTask() task.Definition {
	return task.Definition{
		Name:         "install-go-toolchain",
		Description:  "Install the Go toolchain",
		Dependencies: []string{"install-base-packages"},
		Func: run("install-go-toolchain", `
set -eux
arch="$(dpkg --print-architecture)"
curl -fsSL -o /tmp/go.tar.gz "https://go.dev/dl/go1.23.0.linux-${arch}.tar.gz"
rm -rf /usr/local/go
tar -C /usr/local -xzf /tmp/go.tar.gz
rm -f /tmp/go.tar.gz
ln -sf /usr/local/go/bin/go /usr/local/bin/go
`),
	}
}

func installUvPythonTask() task.Definition {
	return task.Definition{
		Name:         "install-uv-python",
		Description:  "Install uv and a managed Python runtime",
		Dependencies: []string{"install-base-packages"},
		Func: run("install-uv-python", `
set -eux
curl -fsSL https://astral.sh/uv/install.sh | sh
install -Dm0755 "$HOME/.local/bin/uv" /usr/local/bin/uv
uv python install 3.12
`),
	}
}

func installRustToolchainTask() task.Definition {
	return task.Definition{
		Name:         "install-rust-toolchain",
		Description:  "Install the Rust toolchain via rustup",
		Dependencies: []string{"install-base-packages"},
		Func: run("install-rust-toolchain", `
set -eux
curl --proto '=https' --tlsv1.2 -sSf https://sh.rustup.rs | sh -s -- -y --default-toolchain stable
`),
	}
}

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

	"github.com/cmux/snapctl/pkg/task"
)

// ideGated wraps a script so it only runs when Context.IDEProvider matches
// provider, otherwise logging a skip — mirroring the original system's
// per-provider early return without a process-wide IDE setting.
func ideGated(provider, script string) func(string) task.Func {
	return func(name string) task.Func {
		return func(ctx context.Context, tc *task.Context) error {
			if tc.IDEProvider != provider {
				tc.Console.Line(name, "skipping ("+tc.IDEProvider+" selected)")
				return nil
			}
			return run(name, script)(ctx, tc)
		}
	}
}

func installOpenVSCodeTask() task.Definition {
	name := "install-openvscode"
	return task.Definition{
		Name:         name,
		Description:  "Install OpenVSCode server",
		Dependencies: []string{"apt-bootstrap"},
		Func: ideGated(IDEProviderOpenVSCode, `
set -eux
mkdir -p /app/openvscode-server
release="$(curl -fsSL https://api.github.com/repos/gitpod-io/openvscode-server/releases/latest | jq -r '.tag_name')"
curl -fsSL -o /tmp/openvscode.tar.gz "https://github.com/gitpod-io/openvscode-server/releases/download/${release}/${release#openvscode-server-}-linux-x64.tar.gz"
tar xf /tmp/openvscode.tar.gz -C /app/openvscode-server --strip-components=1
rm -f /tmp/openvscode.tar.gz
`)(name),
	}
}

func installCoderTask() task.Definition {
	name := "install-coder"
	return task.Definition{
		Name:         name,
		Description:  "Install Coder (code-server)",
		Dependencies: []string{"apt-bootstrap"},
		Func: ideGated(IDEProviderCoder, `
set -eux
mkdir -p /app/code-server
release="$(curl -fsSL https://api.github.com/repos/coder/code-server/releases/latest | jq -r '.tag_name')"
curl -fsSL -o /tmp/code-server.tar.gz "https://github.com/coder/code-server/releases/download/${release}/code-server-${release#v}-linux-amd64.tar.gz"
tar xf /tmp/code-server.tar.gz -C /app/code-server --strip-components=1
rm -f /tmp/code-server.tar.gz
mkdir -p /root/.config/code-server
printf 'bind-addr: 0.0.0.0:%d\nauth: none\ncert: false\n' 39378 > /root/.config/code-server/config.yaml
`)(name),
	}
}

func installCmuxCodeTask() task.Definition {
	name := "install-cmux-code"
	return task.Definition{
		Name:         name,
		Description:  "Install Cmux Code (VSCode fork with OpenVSIX)",
		Dependencies: []string{"apt-bootstrap"},
		Func: ideGated(IDEProviderCmuxCode, `
set -eux
mkdir -p /app/cmux-code
release="$(curl -fsSL https://api.github.com/repos/manaflow-ai/vscode-1/releases/latest | jq -r '.tag_name')"
curl -fsSL -o /tmp/cmux-code.tar.gz "https://github.com/manaflow-ai/vscode-1/releases/download/${release}/vscode-server-linux-x64-web.tar.gz"
tar xf /tmp/cmux-code.tar.gz -C /app/cmux-code --strip-components=1
rm -f /tmp/cmux-code.tar.gz
`)(name),
	}
}

func installIDEExtensionsTask() task.Definition {
	return task.Definition{
		Name:         "install-ide-extensions",
		Description:  "Install the selected IDE's default extension set",
		Dependencies: []string{"install-openvscode", "install-coder", "install-cmux-code", "install-repo-dependencies"},
		Func: func(ctx context.Context, tc *task.Context) error {
			script := extensionInstallScript(tc.IDEProvider)
			if script == "" {
				tc.Console.Line("install-ide-extensions", "no extension script for provider "+tc.IDEProvider)
				return nil
			}
			return run("install-ide-extensions", script)(ctx, tc)
		},
	}
}

func extensionInstallScript(provider string) string {
	switch provider {
	case IDEProviderOpenVSCode:
		return `for ext in dbaeumer.vscode-eslint esbenp.prettier-vscode; do /app/openvscode-server/bin/openvscode-server --install-extension "$ext" || true; done`
	case IDEProviderCoder:
		return `for ext in dbaeumer.vscode-eslint esbenp.prettier-vscode; do /app/code-server/bin/code-server --install-extension "$ext" || true; done`
	case IDEProviderCmuxCode:
		return `for ext in dbaeumer.vscode-eslint esbenp.prettier-vscode; do /app/cmux-code/bin/remote-cli/code --install-extension "$ext" || true; done`
	default:
		return ""
	}
}

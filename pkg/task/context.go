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

package task

import (
	"github.com/cmux/snapctl/pkg/cgroup"
	"github.com/cmux/snapctl/pkg/cloud"
	"github.com/cmux/snapctl/pkg/execclient"
)

// Context is the per-VM mutable bag passed to every task body (C7). It
// carries no process-wide globals — values that the original system kept as
// module-level state (e.g. the selected IDE provider) are threaded through
// here instead, per the duck-typed-singleton redesign note.
type Context struct {
	Instance cloud.Instance

	RepoRoot       string
	RemoteRepoRoot string
	RemoteRepoTar  string
	ExecServiceURL string

	Console execclient.Console
	Timings *TimingsCollector

	ResourceProfile *cgroup.Profile
	CgroupPath      string

	// ExecClient is the active transport for task commands: the SSH
	// fallback until build-setup-exec-binary completes, then the HTTP
	// client against the daemon it installed.
	ExecClient execclient.Transport

	// SSHClient is the raw SSH-fallback transport, always available
	// regardless of what ExecClient currently points to. Tasks that must
	// run before or independently of the exec daemon (installing it,
	// configuring the cgroup) use this instead.
	SSHClient execclient.Transport

	// EnvironmentPrelude is an export block for commands issued through
	// this context. Task bodies run their scripts through ExecClient
	// unchanged; nothing in this module prepends it.
	EnvironmentPrelude map[string]string

	// IDEProvider selects which IDE task bodies are active for this run
	// (coder/openvscode/cmux-code). Passed by value, not a global.
	IDEProvider string

	// Values holds additional per-run data (correlation id, flags) that
	// individual task packages need without widening this struct; prefer a
	// named field above when the data is used by more than one package.
	Values map[string]any
}

// NewContext builds a Context with its Values map initialized.
func NewContext() *Context {
	return &Context{Values: make(map[string]any)}
}

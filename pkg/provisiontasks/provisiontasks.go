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

// Package provisiontasks supplies the task graph's node bodies: thin
// wrappers that render a command line and run it through a TaskContext's
// transport. None of these bodies contain scheduling, retry, or transport
// logic of their own — that all lives in pkg/task, pkg/execclient, and
// pkg/execdaemon. A task body's only job is to know what to run and which
// other tasks must finish first.
package provisiontasks

import (
	"github.com/cmux/snapctl/pkg/task"
)

// IDE provider identifiers, threaded through Context.IDEProvider rather
// than a process-wide global (spec.md's duck-typed-singleton redesign).
const (
	IDEProviderOpenVSCode = "openvscode"
	IDEProviderCoder      = "coder"
	IDEProviderCmuxCode   = "cmux-code"
)

// Register adds every task body in this package to reg, wiring the
// dependency graph a single preset run executes. ocicache.Config is carried
// through Register's caller via Context.Values, not a package parameter,
// since it is optional and orthogonal to the graph's shape.
func Register(reg *task.Registry) error {
	defs := []task.Definition{
		buildSetupExecBinaryTask(),
		configureProvisioningCgroupTask(),

		aptBootstrapTask(),
		installBasePackagesTask(),
		ensureDockerTask(),
		installNodeRuntimeTask(),
		installBunTask(),
		installGoToolchainTask(),
		installUvPythonTask(),
		installRustToolchainTask(),

		installOpenVSCodeTask(),
		installCoderTask(),
		installCmuxCodeTask(),

		uploadRepoTask(),
		installRepoDependenciesTask(),
		installIDEExtensionsTask(),

		installSystemdUnitsTask(),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

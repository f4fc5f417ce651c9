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

package execclient

import (
	"context"
	"time"

	"github.com/cmux/snapctl/pkg/command"
)

// Decorated wraps a Transport with a fixed decoration order: environment
// prelude first, then cgroup join. JoinCgroup
// can be disabled per-call for bootstrap commands (e.g. the exec daemon
// installer itself runs before any cgroup exists).
type Decorated struct {
	Inner      Transport
	Env        map[string]string
	CgroupPath string
}

// Run decorates cmd's rendered command line and delegates to Inner.
func (d Decorated) Run(ctx context.Context, label string, cmd command.Command, joinCgroup bool, timeout time.Duration) (ExecResult, error) {
	line := cmd.Line()
	line = command.WithEnvironmentPrelude(line, d.Env)
	if joinCgroup {
		line = command.WithCgroupJoin(line, d.CgroupPath)
	}
	return d.Inner.Run(ctx, label, line, timeout)
}

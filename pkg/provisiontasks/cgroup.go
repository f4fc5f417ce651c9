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
	"errors"
	"time"

	"github.com/cmux/snapctl/pkg/cgroup"
	snaperrors "github.com/cmux/snapctl/pkg/errors"
	"github.com/cmux/snapctl/pkg/execclient"
	"github.com/cmux/snapctl/pkg/task"
)

// configureProvisioningCgroupTask sizes and creates the resource cgroup for
// this preset and stores its path in Context.CgroupPath. Later task
// commands are not rewritten to join it; they run through the transport as
// given. It runs over the SSH fallback, alongside build-setup-exec-binary
// in the graph's first layer, since neither depends on the daemon it
// installs.
func configureProvisioningCgroupTask() task.Definition {
	return task.Definition{
		Name:        "configure-provisioning-cgroup",
		Description: "Configure provisioning cgroup",
		Func: func(ctx context.Context, tc *task.Context) error {
			if tc.ResourceProfile == nil {
				tc.Console.Line("configure-provisioning-cgroup", "no resource profile; skipping")
				return nil
			}
			path, err := cgroup.Configure(ctx, transportRunner{tc.SSHClient}, *tc.ResourceProfile)
			if err != nil {
				return err
			}
			if path == "" {
				tc.Console.Line("configure-provisioning-cgroup", "cgroup controllers unavailable; continuing without isolation")
				return nil
			}
			tc.CgroupPath = path
			tc.Console.Line("configure-provisioning-cgroup", "resource cgroup active at "+path)
			return nil
		},
	}
}

// transportRunner adapts an execclient.Transport to cgroup.Runner, whose
// four-value shape predates the exec daemon. A non-zero exit, which a
// Transport reports as an ErrCodeRemoteCommand error, is handed back as the
// exit code with a nil error, so Runner's error stays a transport failure.
type transportRunner struct {
	t execclient.Transport
}

func (r transportRunner) Run(ctx context.Context, label, line string, timeout time.Duration) (int, string, string, error) {
	result, err := r.t.Run(ctx, label, line, timeout)
	var se *snaperrors.StructuredError
	if err != nil && result.ExitCode != 0 && errors.As(err, &se) && se.Code == snaperrors.ErrCodeRemoteCommand {
		err = nil
	}
	return result.ExitCode, result.Stdout, result.Stderr, err
}

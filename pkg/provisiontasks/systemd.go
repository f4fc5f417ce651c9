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
	"fmt"

	"github.com/cmux/snapctl/pkg/defaults"
	"github.com/cmux/snapctl/pkg/task"
)

// ideServiceUnit maps the selected IDE provider to the systemd unit that
// runs it, matching the original's per-provider service naming.
func ideServiceUnit(provider string) string {
	switch provider {
	case IDEProviderCoder:
		return "cmux-coder.service"
	case IDEProviderCmuxCode:
		return "cmux-cmux-code.service"
	default:
		return "cmux-openvscode.service"
	}
}

func installSystemdUnitsTask() task.Definition {
	return task.Definition{
		Name:        "install-systemd-units",
		Description: "Install cmux systemd units and enable the boot target",
		Dependencies: []string{
			"upload-repo",
			"install-ide-extensions",
			"ensure-docker",
		},
		Func: func(ctx context.Context, tc *task.Context) error {
			repo := shQuote(tc.RemoteRepoRoot)
			unit := ideServiceUnit(tc.IDEProvider)
			script := fmt.Sprintf(`
set -euo pipefail
install -d /usr/lib/systemd/system /etc/systemd/system/cmux.target.wants
install -Dm0644 %[1]s/configs/systemd/cmux.target /usr/lib/systemd/system/cmux.target
install -Dm0644 %[1]s/configs/systemd/%[2]s /usr/lib/systemd/system/cmux-ide.service
install -Dm0644 %[1]s/configs/systemd/cmux-worker.service /usr/lib/systemd/system/cmux-worker.service
install -Dm0644 %[1]s/configs/systemd/cmux-dockerd.service /usr/lib/systemd/system/cmux-dockerd.service
ln -sf /usr/lib/systemd/system/cmux-ide.service /etc/systemd/system/cmux.target.wants/cmux-ide.service
ln -sf /usr/lib/systemd/system/cmux-worker.service /etc/systemd/system/cmux.target.wants/cmux-worker.service
ln -sf /usr/lib/systemd/system/cmux-dockerd.service /etc/systemd/system/cmux.target.wants/cmux-dockerd.service
systemctl daemon-reload || true
systemctl enable --now cmux.target || true
`, repo, unit)
			_, err := tc.ExecClient.Run(ctx, "install-systemd-units", script, defaults.TaskDefaultTimeout)
			return err
		},
	}
}

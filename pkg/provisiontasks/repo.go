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
	"strings"

	"github.com/cmux/snapctl/pkg/archive"
	"github.com/cmux/snapctl/pkg/defaults"
	"github.com/cmux/snapctl/pkg/task"
)

func uploadRepoTask() task.Definition {
	return task.Definition{
		Name:         "upload-repo",
		Description:  "Upload repository to the instance",
		Dependencies: []string{"apt-bootstrap"},
		Func: func(ctx context.Context, tc *task.Context) error {
			return archive.Sync(ctx, tc.Instance, tc.ExecClient, tc.RepoRoot, tc.RemoteRepoRoot)
		},
	}
}

func installRepoDependenciesTask() task.Definition {
	return task.Definition{
		Name:         "install-repo-dependencies",
		Description:  "Install workspace dependencies via bun",
		Dependencies: []string{"upload-repo", "install-bun", "install-node-runtime"},
		Func: func(ctx context.Context, tc *task.Context) error {
			script := fmt.Sprintf("cd %s && bun install --frozen-lockfile", shQuote(tc.RemoteRepoRoot))
			_, err := tc.ExecClient.Run(ctx, "install-repo-dependencies", script, defaults.TaskDefaultTimeout)
			return err
		},
	}
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

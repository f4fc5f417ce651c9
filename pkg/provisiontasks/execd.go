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
	"github.com/cmux/snapctl/pkg/execclient"
	"github.com/cmux/snapctl/pkg/execdaemon"
	"github.com/cmux/snapctl/pkg/execdaemon/ocicache"
	"github.com/cmux/snapctl/pkg/task"
)

// ocicacheConfigKey is the Context.Values key an orchestrator may set to an
// ocicache.Config to enable the binary cache for this run; absent or a
// zero-value Config disables it and buildSetupExecBinary falls straight
// through to a local cross-compile.
const ocicacheConfigKey = "ocicache_config"

// buildSetupExecBinaryTask cross-compiles, uploads, and launches cmux-execd
// over the SSH fallback transport, then swaps Context.ExecClient to the
// resulting HTTP client so every later task rides the daemon instead.
func buildSetupExecBinaryTask() task.Definition {
	return task.Definition{
		Name:        "build-setup-exec-binary",
		Description: "Build and setup exec binary",
		Func: func(ctx context.Context, tc *task.Context) error {
			tc.Console.Line("build-setup-exec-binary", "building exec daemon")

			binaryPath, err := buildOrFetchBinary(ctx, tc)
			if err != nil {
				return err
			}

			if err := execdaemon.UploadWithRetry(ctx, tc.Instance, binaryPath); err != nil {
				return err
			}
			if err := execdaemon.Launch(ctx, tc.SSHClient, defaults.ExecHTTPPort); err != nil {
				return execdaemon.TailLogOnFailure(ctx, tc.SSHClient, err)
			}

			client := execclient.NewHTTPClient(tc.ExecServiceURL, tc.Console)
			if err := client.WaitReady(ctx, defaults.DaemonLaunchReadyRetries, defaults.DaemonLaunchReadyDelay); err != nil {
				return execdaemon.TailLogOnFailure(ctx, tc.SSHClient, err)
			}

			tc.ExecClient = client
			tc.Console.Line("build-setup-exec-binary", "exec daemon ready at "+tc.ExecServiceURL)
			return nil
		},
	}
}

// buildOrFetchBinary tries the OCI cache first when one is configured,
// falling back to a local cross-compile (and, on success, populating the
// cache for the next preset sharing this GOOS/GOARCH target) on a miss.
func buildOrFetchBinary(ctx context.Context, tc *task.Context) (string, error) {
	goos, goarch, err := execdaemon.ResolveTarget()
	if err != nil {
		return "", err
	}

	cfg, _ := tc.Values[ocicacheConfigKey].(ocicache.Config)
	if cfg.Enabled() {
		if path, fetchErr := ocicache.Fetch(ctx, cfg, tc.RepoRoot, goos, goarch); fetchErr == nil {
			tc.Console.Line("build-setup-exec-binary", "reused cached exec daemon binary")
			return path, nil
		}
	}

	binaryPath, err := execdaemon.Build(tc.RepoRoot)
	if err != nil {
		return "", err
	}

	if cfg.Enabled() {
		if storeErr := ocicache.Store(ctx, cfg, tc.RepoRoot+"/"+execdaemon.BuildOutputDir, goos, goarch); storeErr != nil {
			tc.Console.Line("build-setup-exec-binary", "oci cache store failed (continuing): "+storeErr.Error())
		}
	}
	return binaryPath, nil
}

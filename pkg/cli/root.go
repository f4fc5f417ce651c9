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

package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cmux/snapctl/pkg/cloud"
	"github.com/cmux/snapctl/pkg/defaults"
	"github.com/cmux/snapctl/pkg/preset"
	"github.com/cmux/snapctl/pkg/provisiontasks"
)

// version is overridden at build time via -ldflags "-X ...cli.version=...".
var version = "dev"

// Command builds the snapctl root command. factory supplies the cloud.Client
// a run boots instances through; pass nil to use DefaultClientFactory.
func Command(factory ClientFactory) *cli.Command {
	if factory == nil {
		factory = DefaultClientFactory
	}
	return &cli.Command{
		Name:                  "snapctl",
		Version:               version,
		EnableShellCompletion: true,
		Usage:                 "Provision transient micro-VMs and capture golden workspace snapshots",
		Description: `Boots transient micro-VMs from a base snapshot, provisions each with the
cmux workspace toolchain via a dependency-ordered task graph, verifies the
result externally, and captures a new snapshot per hardware preset.

Runs the standard and performance ("boosted") presets concurrently, updates
the committed snapshot manifest in preset-declaration order, and prints a
verification table of the VS Code/VNC URLs for each captured workspace.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "snapshot-id",
				Value: defaults.DefaultSnapshotID,
				Usage: "base snapshot to boot from",
			},
			&cli.StringFlag{
				Name:  "repo-root",
				Value: ".",
				Usage: "local repository root to archive and upload",
			},
			&cli.IntFlag{
				Name:  "standard-vcpus",
				Value: 4,
				Usage: "vCPU count for the standard preset",
			},
			&cli.IntFlag{
				Name:  "standard-memory",
				Value: 16384,
				Usage: "memory (MiB) for the standard preset",
			},
			&cli.IntFlag{
				Name:  "standard-disk-size",
				Value: 49152,
				Usage: "disk size (MiB) for the standard preset",
			},
			&cli.IntFlag{
				Name:  "boosted-vcpus",
				Value: 8,
				Usage: "vCPU count for the boosted preset",
			},
			&cli.IntFlag{
				Name:  "boosted-memory",
				Value: 32768,
				Usage: "memory (MiB) for the boosted preset",
			},
			&cli.IntFlag{
				Name:  "boosted-disk-size",
				Value: 49152,
				Usage: "disk size (MiB) for the boosted preset",
			},
			&cli.IntFlag{
				Name:  "ttl-seconds",
				Value: 3600,
				Usage: "TTL applied to transient VMs, in seconds",
			},
			&cli.StringFlag{
				Name:  "ttl-action",
				Value: string(cloud.TTLPause),
				Usage: "action when TTL expires: pause or stop",
			},
			&cli.BoolFlag{
				Name:  "require-verify",
				Usage: "print verification URLs before snapshot and skip the post-snapshot TTL; does not wait before snapshotting",
			},
			&cli.StringFlag{
				Name:  "ide-provider",
				Value: provisiontasks.IDEProviderCmuxCode,
				Usage: "IDE provider to install: coder, openvscode, or cmux-code",
			},
			&cli.BoolFlag{
				Name:  "print-deps",
				Usage: "print the task dependency graph and exit",
			},
			&cli.BoolFlag{
				Name:  "bump-ide-deps",
				Value: true,
				Usage: "run a host-side dependency-refresh step before provisioning",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := Config{
				SnapshotID: cmd.String("snapshot-id"),
				RepoRoot:   cmd.String("repo-root"),
				Standard: preset.HardwareSpec{
					VCPUs:       int(cmd.Int("standard-vcpus")),
					MemoryMiB:   cmd.Int("standard-memory"),
					DiskSizeMiB: cmd.Int("standard-disk-size"),
				},
				Boosted: preset.HardwareSpec{
					VCPUs:       int(cmd.Int("boosted-vcpus")),
					MemoryMiB:   cmd.Int("boosted-memory"),
					DiskSizeMiB: cmd.Int("boosted-disk-size"),
				},
				TTLSeconds:    cmd.Int("ttl-seconds"),
				TTLAction:     cloud.TTLAction(cmd.String("ttl-action")),
				RequireVerify: cmd.Bool("require-verify"),
				IDEProvider:   cmd.String("ide-provider"),
				PrintDeps:     cmd.Bool("print-deps"),
				BumpIDEDeps:   cmd.Bool("bump-ide-deps"),
				ClientFactory: factory,
				Console:       NewStdoutConsole(os.Stdout),
			}
			return Run(ctx, cfg)
		},
	}
}

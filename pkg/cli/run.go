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
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmux/snapctl/pkg/cloud"
	"github.com/cmux/snapctl/pkg/execclient"
	"github.com/cmux/snapctl/pkg/manifest"
	"github.com/cmux/snapctl/pkg/notify"
	"github.com/cmux/snapctl/pkg/preset"
	"github.com/cmux/snapctl/pkg/provisiontasks"
	"github.com/cmux/snapctl/pkg/task"
)

// cleanupStopTimeout bounds how long a single instance.Stop call may take
// while tearing down unsnapshotted VMs after an interrupt.
const cleanupStopTimeout = 30 * time.Second

// Run executes the full top-level driver sequence (spec.md §4.8): build the
// task registry, honor --print-deps, optionally bump IDE deps, run every
// preset, stop any instance that was booted but never snapshotted (only
// under --require-verify), persist the manifest, render the verification
// table, and notify.
func Run(ctx context.Context, cfg Config) error {
	console := cfg.Console
	if console == nil {
		console = execclient.NopConsole{}
	}

	build := cfg.RegistryBuilder
	if build == nil {
		build = provisiontasks.Register
	}
	reg := task.NewRegistry()
	if err := build(reg); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	if cfg.PrintDeps {
		if graph := renderDependencyGraph(reg); graph != "" {
			fmt.Println(graph)
		}
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.BumpIDEDeps {
		console.Line("", "Bumping IDE deps to latest (bun run bump-ide-deps)...")
		if err := bumpIDEDeps(ctx, cfg.RepoRoot, os.Stdout, os.Stderr); err != nil {
			return err
		}
	}

	factory := cfg.ClientFactory
	if factory == nil {
		factory = DefaultClientFactory
	}
	client, err := factory(ctx)
	if err != nil {
		return fmt.Errorf("failed to build cloud client: %w", err)
	}

	plans := cfg.Plans()
	console.Line("", fmt.Sprintf(
		"Starting snapshot runs for presets %s from base snapshot %s (IDE provider: %s)",
		presetIDs(plans), cfg.SnapshotID, cfg.IDEProvider))

	runCtx, stopNotify := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopNotify()

	opts := preset.Options{
		BaseSnapshotID: cfg.SnapshotID,
		TTLSeconds:     cfg.TTLSeconds,
		TTLAction:      cfg.TTLAction,
		RequireVerify:  cfg.RequireVerify,
		IDEProvider:    cfg.IDEProvider,
		RepoRoot:       cfg.RepoRoot,
		Registry:       reg,
		Console:        console,
	}

	outcomes, unfinished := preset.RunAll(runCtx, client, plans, opts)

	if cfg.RequireVerify {
		stopUnfinished(console, unfinished)
	}

	if err := persistManifest(outcomes, console); err != nil {
		return err
	}

	reportOutcomes(console, outcomes)

	notifier := notify.Platform()
	failed := failedOutcomes(outcomes)
	if len(failed) > 0 {
		msg := fmt.Sprintf("%d of %d presets failed", len(failed), len(outcomes))
		notify.RunFailed(ctx, notifier, msg)
		return fmt.Errorf("%s", msg)
	}
	notify.VerificationReady(ctx, notifier, "snapshot run", verifySummary(outcomes))
	return nil
}

// stopUnfinished terminates every instance that was booted but never
// snapshotted, used when --require-verify means the TTL mechanism was never
// armed for these instances.
func stopUnfinished(console execclient.Console, unfinished []cloud.Instance) {
	for _, inst := range unfinished {
		stopCtx, cancel := context.WithTimeout(context.Background(), cleanupStopTimeout)
		if err := inst.Stop(stopCtx); err != nil {
			console.Line("", "warning: failed to stop unverified instance: "+err.Error())
		}
		cancel()
	}
}

func persistManifest(outcomes []preset.Outcome, console execclient.Console) error {
	m, err := manifest.Load(manifest.DefaultPath, func(schemaVersion int) {
		console.Line("", fmt.Sprintf("warning: manifest schema version %d differs from current", schemaVersion))
	})
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil {
			continue
		}
		m = manifest.UpdateWithSnapshot(m, manifest.PresetDisplay{
			PresetID: o.Plan.PresetID,
			Label:    o.Plan.Label,
			CPU:      o.Plan.CPUDisplay,
			Memory:   o.Plan.MemoryDisplay,
			Disk:     o.Plan.DiskDisplay,
		}, o.Result.SnapshotID, o.Result.CapturedAt)
	}

	if err := manifest.Write(manifest.DefaultPath, m); err != nil {
		return err
	}
	console.Line("", fmt.Sprintf("\nUpdated snapshot manifest at %s", manifest.DefaultPath))
	return nil
}

func reportOutcomes(console execclient.Console, outcomes []preset.Outcome) {
	if table := renderVerificationTable(outcomes); table != "" {
		console.Line("", table)
	}
	for _, o := range outcomes {
		if o.Err != nil {
			console.Line(o.Plan.PresetID, "failed: "+o.Err.Error())
			continue
		}
		console.Line(o.Plan.PresetID, fmt.Sprintf("snapshot %s captured at %s", o.Result.SnapshotID, o.Result.CapturedAt))
	}
}

func failedOutcomes(outcomes []preset.Outcome) []preset.Outcome {
	var failed []preset.Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

func verifySummary(outcomes []preset.Outcome) string {
	var lines []string
	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: VS Code %s, VNC %s", o.Plan.PresetID, o.Result.VSCodeURL, o.Result.VNCURL))
	}
	return strings.Join(lines, "\n")
}

func presetIDs(plans []preset.Plan) string {
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.PresetID
	}
	return strings.Join(ids, ", ")
}

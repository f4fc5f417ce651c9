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

package preset

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmux/snapctl/pkg/cgroup"
	"github.com/cmux/snapctl/pkg/cloud"
	"github.com/cmux/snapctl/pkg/defaults"
	snaperrors "github.com/cmux/snapctl/pkg/errors"
	"github.com/cmux/snapctl/pkg/execclient"
	"github.com/cmux/snapctl/pkg/metrics"
	"github.com/cmux/snapctl/pkg/task"
)

// observeTimings feeds one preset run's per-task and per-layer durations
// into pkg/metrics' Prometheus collectors. A nil collector (no
// timings taken, e.g. in tests) is a no-op.
func observeTimings(presetID string, timings *task.TimingsCollector) {
	if timings == nil {
		return
	}
	for _, r := range timings.Records() {
		switch {
		case strings.HasPrefix(r.Label, "task:"):
			metrics.ObserveTask(presetID, strings.TrimPrefix(r.Label, "task:"), r.Duration)
		case strings.HasPrefix(r.Label, "layer:"):
			metrics.ObserveLayer(presetID, r.Duration)
		}
	}
}

// named HTTP services requested on every instance, keyed by the standard
// port constants so provisiontasks and this package agree on which port
// is which.
var serviceNames = map[int]string{
	defaults.ExecHTTPPort:   "exec",
	defaults.ExtraPort1:     "proxy",
	defaults.VSCodeHTTPPort: "vscode",
	defaults.ExtraPort2:     "extra",
	defaults.XtermHTTPPort:  "xterm",
	defaults.VNCHTTPPort:    "vnc",
	defaults.CDPHTTPPort:    "cdp",
}

// Options configures a single preset run; the same value is shared,
// read-only, across every preset in a batch.
type Options struct {
	BaseSnapshotID string
	TTLSeconds     int64
	TTLAction      cloud.TTLAction
	RequireVerify  bool
	IDEProvider    string
	RepoRoot       string
	WakeOnHTTP     bool

	// PostVerifyTTLSeconds/PostVerifyTTLAction apply once a snapshot has
	// been captured, in non-require-verify runs, so an operator can still
	// attach briefly afterward.
	PostVerifyTTLSeconds int64
	PostVerifyTTLAction  cloud.TTLAction

	// Registry supplies the task graph; callers normally pass a registry
	// built by provisiontasks.Register.
	Registry *task.Registry

	// Values seeds Context.Values for every preset run (e.g. an ocicache
	// config under "ocicache_config").
	Values map[string]any

	Console execclient.Console

	// VerifyHTTPClient overrides the HTTP client used to poll the CDP
	// endpoint; tests substitute one pointed at a local server.
	VerifyHTTPClient *http.Client
}

// Run executes the full per-preset sequence (spec.md §4.6): boot, await
// ready, expose the standard port set, build a TaskContext, run the task
// graph, verify externally, clean the disk, snapshot, and set a short
// post-verification TTL.
func Run(ctx context.Context, client cloud.Client, plan Plan, opts Options) (*RunResult, error) {
	console := opts.Console
	if console == nil {
		console = execclient.NopConsole{}
	}
	console.Line(plan.PresetID, "provisioning "+plan.Label)

	instance, err := client.Boot(ctx, cloud.BootSpec{
		BaseSnapshotID: opts.BaseSnapshotID,
		VCPUs:          plan.VCPUs,
		MemoryMiB:      plan.MemoryMiB,
		DiskSizeMiB:    plan.DiskSizeMiB,
		TTLSeconds:     opts.TTLSeconds,
		TTLAction:      opts.TTLAction,
		WakeOnHTTP:     opts.WakeOnHTTP,
	})
	if err != nil {
		return nil, snaperrors.Wrap(snaperrors.ErrCodeConfig, "failed to boot instance for preset "+plan.PresetID, err)
	}

	readyCtx, cancelReady := context.WithTimeout(ctx, defaults.InstanceReadyTimeout)
	defer cancelReady()
	if err := instance.AwaitReady(readyCtx); err != nil {
		return nil, snaperrors.Wrap(snaperrors.ErrCodeConfig, "instance never became ready", err)
	}

	portMap, err := exposeStandardPorts(ctx, instance)
	if err != nil {
		return nil, err
	}

	execURL, ok := portMap[defaults.ExecHTTPPort]
	if !ok {
		return nil, snaperrors.New(snaperrors.ErrCodeConfig, "failed to expose exec service port")
	}
	vscodeURL, ok := portMap[defaults.VSCodeHTTPPort]
	if !ok {
		return nil, snaperrors.New(snaperrors.ErrCodeConfig, "failed to expose VS Code service URL")
	}
	vncURL, ok := portMap[defaults.VNCHTTPPort]
	if !ok {
		return nil, snaperrors.New(snaperrors.ErrCodeConfig, "failed to expose VNC service URL")
	}
	cdpURL, ok := portMap[defaults.CDPHTTPPort]
	if !ok {
		return nil, snaperrors.New(snaperrors.ErrCodeConfig, "failed to expose DevTools service URL")
	}

	sshTransport := execclient.NewSSHClient(instance, console)
	profile := cgroup.DefaultProfile(plan.PresetID, plan.VCPUs, plan.MemoryMiB)

	tc := task.NewContext()
	tc.Instance = instance
	tc.RepoRoot = opts.RepoRoot
	tc.RemoteRepoRoot = defaults.RemoteRepoRoot
	tc.RemoteRepoTar = defaults.RemoteRepoTar
	tc.ExecServiceURL = execURL
	tc.Console = console
	tc.Timings = task.NewTimingsCollector()
	tc.ResourceProfile = &profile
	tc.ExecClient = sshTransport
	tc.SSHClient = sshTransport
	tc.IDEProvider = opts.IDEProvider
	for k, v := range opts.Values {
		tc.Values[k] = v
	}

	if _, err := task.RunGraph(ctx, opts.Registry, tc); err != nil {
		return nil, err
	}
	observeTimings(plan.PresetID, tc.Timings)

	if err := verifyDevTools(ctx, opts.VerifyHTTPClient, cdpURL, func(msg string) { console.Line(plan.PresetID, msg) }); err != nil {
		return nil, err
	}

	if opts.RequireVerify {
		console.Line(plan.PresetID, "manual verification requested; snapshot proceeds without waiting")
		console.Line(plan.PresetID, "VS Code: "+vscodeURL)
		console.Line(plan.PresetID, "VNC: "+vncURL)
	}

	if err := cleanupDisk(ctx, tc.ExecClient, tc.RemoteRepoRoot, tc.RemoteRepoTar); err != nil {
		return nil, err
	}

	snapCtx, cancelSnap := context.WithTimeout(ctx, defaults.SnapshotTimeout)
	defer cancelSnap()
	snapshotID, err := instance.Snapshot(snapCtx)
	if err != nil {
		return nil, snaperrors.Wrap(snaperrors.ErrCodeSnapshot, "failed to snapshot instance", err)
	}
	capturedAt := time.Now().UTC().Format(time.RFC3339)

	if !opts.RequireVerify {
		ttlSeconds := opts.PostVerifyTTLSeconds
		ttlAction := opts.PostVerifyTTLAction
		if ttlSeconds == 0 {
			ttlSeconds = 600
		}
		if ttlAction == "" {
			ttlAction = cloud.TTLPause
		}
		if err := instance.SetTTL(ctx, ttlSeconds, ttlAction); err != nil {
			console.Line(plan.PresetID, "warning: failed to set post-snapshot TTL: "+err.Error())
		}
	}

	console.Line(plan.PresetID, "snapshot created: "+snapshotID)
	return &RunResult{
		Preset:     plan,
		SnapshotID: snapshotID,
		CapturedAt: capturedAt,
		VSCodeURL:  vscodeURL,
		VNCURL:     vncURL,
		InstanceID: instance.ID(),
	}, nil
}

func exposeStandardPorts(ctx context.Context, instance cloud.Instance) (map[int]string, error) {
	exposeCtx, cancel := context.WithTimeout(ctx, defaults.InstancePortExposeTimeout)
	defer cancel()

	portMap := make(map[int]string, len(defaults.StandardPorts()))
	for _, port := range defaults.StandardPorts() {
		name := serviceNames[port]
		url, err := instance.ExposeHTTPService(exposeCtx, name, port)
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrCodeConfig, "failed to expose port", err)
		}
		portMap[port] = url
	}
	return portMap, nil
}

// RunAll runs every plan concurrently, one goroutine per preset, and
// returns one Outcome per plan in the same order as plans regardless of
// which presets failed: a failure isolates to its own Outcome and never
// cancels its siblings (spec.md §5's cross-preset independence guarantee).
// Booted-but-unsnapshotted instances are tracked and returned so a caller
// enforcing --require-verify semantics can stop them on interrupt or on a
// failed run.
func RunAll(ctx context.Context, client cloud.Client, plans []Plan, opts Options) ([]Outcome, []cloud.Instance) {
	outcomes := make([]Outcome, len(plans))
	var (
		mu        sync.Mutex
		unfinished []cloud.Instance
	)

	trackingClient := &trackingBooter{
		inner: client,
		onBoot: func(inst cloud.Instance) {
			mu.Lock()
			unfinished = append(unfinished, inst)
			mu.Unlock()
		},
		onSnapshot: func(inst cloud.Instance) {
			mu.Lock()
			defer mu.Unlock()
			for i, candidate := range unfinished {
				if candidate.ID() == inst.ID() {
					unfinished = append(unfinished[:i], unfinished[i+1:]...)
					break
				}
			}
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, plan := range plans {
		i, plan := i, plan
		g.Go(func() error {
			metrics.PresetsInFlight.Inc()
			result, err := Run(gctx, trackingClient, plan, opts)
			metrics.PresetsInFlight.Dec()

			outcome := "success"
			if err != nil {
				outcome = "failure"
			}
			metrics.RecordPresetOutcome(plan.PresetID, outcome)

			outcomes[i] = Outcome{Plan: plan, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	mu.Lock()
	defer mu.Unlock()
	return outcomes, append([]cloud.Instance(nil), unfinished...)
}

// trackingBooter wraps a cloud.Client so RunAll can observe every instance
// it boots and (via trackingInstance) every one it successfully snapshots,
// without Run itself needing to know about cleanup bookkeeping.
type trackingBooter struct {
	inner      cloud.Client
	onBoot     func(cloud.Instance)
	onSnapshot func(cloud.Instance)
}

func (b *trackingBooter) Boot(ctx context.Context, spec cloud.BootSpec) (cloud.Instance, error) {
	inst, err := b.inner.Boot(ctx, spec)
	if err != nil {
		return nil, err
	}
	wrapped := &trackingInstance{Instance: inst, onSnapshot: b.onSnapshot}
	b.onBoot(wrapped)
	return wrapped, nil
}

type trackingInstance struct {
	cloud.Instance
	onSnapshot func(cloud.Instance)
}

func (t *trackingInstance) Snapshot(ctx context.Context) (string, error) {
	id, err := t.Instance.Snapshot(ctx)
	if err == nil {
		t.onSnapshot(t)
	}
	return id, err
}

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

// Package cloud adapts the external cloud SDK (boot/snapshot/expose a
// micro-VM) behind small interfaces, so pkg/preset and pkg/provisiontasks
// depend only on behavior this module defines, never on the SDK's own
// types. The SDK itself, and a production implementation of these
// interfaces, are out of scope (spec.md's "external collaborators with
// interfaces named in §6").
package cloud

import (
	"context"
	"time"
)

// TTLAction is the action applied when an instance's TTL expires.
type TTLAction string

const (
	TTLPause TTLAction = "pause"
	TTLStop  TTLAction = "stop"
)

// BootSpec describes the hardware and lifecycle policy for a new instance.
type BootSpec struct {
	BaseSnapshotID string
	VCPUs          int
	MemoryMiB      int64
	DiskSizeMiB    int64
	TTLSeconds     int64
	TTLAction      TTLAction
	WakeOnHTTP     bool
}

// Instance is a booted micro-VM. Every method is a suspension point.
type Instance interface {
	ID() string

	// AwaitReady blocks until the cloud SDK reports the instance is ready
	// to accept connections.
	AwaitReady(ctx context.Context) error

	// ExposeHTTPService registers a named HTTP service on port and returns
	// its publicly reachable URL.
	ExposeHTTPService(ctx context.Context, name string, port int) (url string, err error)

	// SetTTL updates the instance's time-to-live policy, e.g. to shorten it
	// once a snapshot has been captured.
	SetTTL(ctx context.Context, seconds int64, action TTLAction) error

	// UploadFile transfers a local file to remotePath on the instance. Used
	// by the exec daemon installer (C3) and the repo archiver (C4), both of
	// which retry this call themselves on transient failure.
	UploadFile(ctx context.Context, localPath, remotePath string) error

	// Snapshot captures the instance's current disk+memory state and
	// returns the new snapshot's identifier.
	Snapshot(ctx context.Context) (snapshotID string, err error)

	// Stop terminates the instance, used by cleanup hooks for instances
	// that were booted but never snapshotted.
	Stop(ctx context.Context) error

	// DashboardURL returns a human-facing URL for observing the instance,
	// if the SDK exposes one.
	DashboardURL() string

	// Exec runs a single command line to completion over the SDK's native
	// SSH-equivalent channel, bypassing cmux-execd entirely. Satisfies
	// execclient.SSHExecutor, so every Instance doubles as the fallback
	// transport the exec daemon installer (C3) uses to launch the daemon
	// it is about to start, and that pkg/preset falls back to if the HTTP
	// transport never comes up.
	Exec(ctx context.Context, line string) (stdout, stderr string, exitCode int, err error)
}

// Client boots instances from a base snapshot.
type Client interface {
	Boot(ctx context.Context, spec BootSpec) (Instance, error)
}

// Get duck-types a field lookup across the two shapes the original SDK
// returns (attribute-bearing records and key-accessed maps), per spec.md
// §9's adapter-layer redesign note. obj may be a map[string]any or any type
// satisfying fieldGetter; any other value, including a plain struct,
// reports the key as not found.
func Get(obj any, key string) (any, bool) {
	switch v := obj.(type) {
	case map[string]any:
		val, ok := v[key]
		return val, ok
	case fieldGetter:
		return v.Field(key)
	default:
		return nil, false
	}
}

// fieldGetter lets a concrete SDK wrapper type participate in Get without
// this package needing to know its shape.
type fieldGetter interface {
	Field(key string) (any, bool)
}

// PollReady repeatedly calls check until it returns true, up to maxAttempts
// times with delay between attempts; used by verification steps that poll
// an externally exposed URL rather than the SDK's own readiness signal.
func PollReady(ctx context.Context, maxAttempts int, delay time.Duration, check func(context.Context) (bool, error)) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ok, err := check(ctx)
		if err != nil {
			lastErr = err
		} else if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if lastErr != nil {
		return lastErr
	}
	return context.DeadlineExceeded
}

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

package defaults

import "time"

// Exec transport timeouts and retry parameters (C2).
const (
	// ExecClientTimeout bounds a single /exec HTTP round trip, including the
	// streamed response, when the caller passes no command timeout.
	ExecClientTimeout = 30 * time.Second

	// ExecMaxRetries is the number of attempts the HTTP exec client makes
	// against transient 502/503/504 responses before giving up.
	ExecMaxRetries = 3

	// ExecRetryInitialDelay is the base delay for the HTTP exec client's
	// exponential backoff: delay = ExecRetryInitialDelay * 2^attempt.
	ExecRetryInitialDelay = 1 * time.Second

	// ExecReadyRetries is how many times wait-ready polls /healthz.
	ExecReadyRetries = 20
	// ExecReadyDelay is the interval between /healthz polls.
	ExecReadyDelay = 500 * time.Millisecond
)

// Exec daemon install timeouts and retry parameters (C3).
const (
	// DaemonUploadMaxAttempts bounds upload retries for the cross-compiled binary.
	DaemonUploadMaxAttempts = 5
	// DaemonUploadBackoffUnit scales linearly with attempt count: unit * attempt.
	DaemonUploadBackoffUnit = 1500 * time.Millisecond

	// DaemonLaunchReadyRetries is how many times the post-launch health gate polls.
	DaemonLaunchReadyRetries = 30
	// DaemonLaunchReadyDelay is the interval between post-launch health polls.
	DaemonLaunchReadyDelay = 500 * time.Millisecond

	// DaemonLaunchVerifyDelay is how long to wait after nohup before pgrep-checking.
	DaemonLaunchVerifyDelay = 1 * time.Second

	// DaemonLogTailLines is how many trailing log lines to surface on launch failure.
	DaemonLogTailLines = 50
)

// HTTP server timeouts for the exec daemon's own listener (C2.1, C3 server side).
const (
	ServerReadTimeout       = 10 * time.Second
	ServerReadHeaderTimeout = 5 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second
	ServerShutdownTimeout   = 30 * time.Second
)

// Cloud instance lifecycle timeouts (C9).
const (
	// InstanceReadyTimeout bounds how long a preset waits for boot readiness.
	InstanceReadyTimeout = 10 * time.Minute
	// InstancePortExposeTimeout bounds exposing the standard port set.
	InstancePortExposeTimeout = 2 * time.Minute
	// SnapshotTimeout bounds the final snapshot capture call.
	SnapshotTimeout = 5 * time.Minute
	// VerificationPromptTimeout is a bound for a manual-verification wait.
	// No code path references it; a --require-verify run does not wait for
	// the operator before snapshotting.
	VerificationPromptTimeout = 30 * time.Minute
)

// Task graph scheduling (C5/C6).
const (
	// TaskDefaultTimeout bounds an individual task body absent an override.
	TaskDefaultTimeout = 10 * time.Minute
)

// Standard exposed ports (C9), matching the VM-side service layout.
const (
	ExecHTTPPort   = 39375
	ExtraPort1     = 39377
	VSCodeHTTPPort = 39378
	ExtraPort2     = 39379
	XtermHTTPPort  = 39380
	VNCHTTPPort    = 39381
	CDPHTTPPort    = 39382
)

// StandardPorts returns the fixed set of ports exposed on every provisioned
// instance, in a stable order.
func StandardPorts() []int {
	return []int{ExecHTTPPort, ExtraPort1, VSCodeHTTPPort, ExtraPort2, XtermHTTPPort, VNCHTTPPort, CDPHTTPPort}
}

// RemoteRepoRoot is the path the archived repository is extracted to on the instance.
const RemoteRepoRoot = "/cmux"

// RemoteRepoTar is the path the repository archive is uploaded to before extraction.
const RemoteRepoTar = "/tmp/cmux-repo.tar"

// DefaultSnapshotID is used when no --snapshot-id flag is supplied.
const DefaultSnapshotID = "snapshot_3fjuvxbs"

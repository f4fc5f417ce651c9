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
	"fmt"
	"log/slog"
	"strings"
	"time"

	snaperrors "github.com/cmux/snapctl/pkg/errors"
	"github.com/cmux/snapctl/pkg/metrics"
)

// SSHExecutor is the cloud SDK's native exec primitive, satisfied by the
// pkg/cloud adapter. It runs one command line to completion and returns raw
// stdout/stderr/exit, with no retry or streaming semantics of its own —
// those are layered on by SSHClient.
type SSHExecutor interface {
	Exec(ctx context.Context, line string) (stdout, stderr string, exitCode int, err error)
}

// SSHClient is the SSH fallback transport (C2.2): identical ExecResult
// contract to HTTPClient, retried on transient connection-level errors with
// linear backoff instead of exponential.
type SSHClient struct {
	Executor   SSHExecutor
	Console    Console
	MaxRetries int
	sleep      func(time.Duration)
}

// NewSSHClient builds an SSHClient wrapping the given executor.
func NewSSHClient(executor SSHExecutor, console Console) *SSHClient {
	if console == nil {
		console = NopConsole{}
	}
	return &SSHClient{Executor: executor, Console: console, MaxRetries: 3, sleep: time.Sleep}
}

// Run implements Transport, retrying transient SSH/network errors with
// linear backoff (1.0 + 0.5*attempt seconds), mirroring the HTTP backend's
// retry discipline but with the original system's SSH-specific constants.
func (c *SSHClient) Run(ctx context.Context, label, line string, timeout time.Duration) (ExecResult, error) {
	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		stdout, stderr, code, err := c.Executor.Exec(ctx, line)
		if err == nil {
			echoLines(c.Console, "["+label+"]", stdout)
			echoLines(c.Console, "["+label+"][stderr]", stderr)
			result := ExecResult{ExitCode: code, Stdout: stdout, Stderr: stderr}
			if !result.Succeeded() {
				return result, snaperrors.NewWithContext(snaperrors.ErrCodeRemoteCommand,
					fmt.Sprintf("%s: exit %d", label, code),
					map[string]any{"stdout": result.TrimmedStdout(), "stderr": result.TrimmedStderr()})
			}
			return result, nil
		}
		if !isTransientSSHError(err) {
			return ExecResult{}, snaperrors.Wrap(snaperrors.ErrCodeTransport, fmt.Sprintf("ssh exec %q failed", label), err)
		}
		lastErr = err
		delay := time.Duration(float64(time.Second) * (1.0 + 0.5*float64(attempt)))
		metrics.ExecRetriesTotal.WithLabelValues("ssh").Inc()
		slog.Warn("ssh exec transient failure, retrying", "label", label, "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return ExecResult{}, ctx.Err()
		default:
			c.sleep(delay)
		}
	}
	return ExecResult{}, snaperrors.Wrap(snaperrors.ErrCodeTransport, fmt.Sprintf("ssh exec %q exhausted retry budget", label), lastErr)
}

// isTransientSSHError classifies connection-level failures (closed channel,
// timeout, connection reset) as retryable; anything else — most notably a
// command that ran and simply exited non-zero, which never reaches this
// path since Executor.Exec reports that via exitCode, not err — is not.
func isTransientSSHError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"closed", "reset", "timeout", "broken pipe", "eof", "unreachable"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

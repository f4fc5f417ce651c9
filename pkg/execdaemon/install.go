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

package execdaemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmux/snapctl/pkg/cloud"
	"github.com/cmux/snapctl/pkg/defaults"
	"github.com/cmux/snapctl/pkg/execclient"

	snaperrors "github.com/cmux/snapctl/pkg/errors"
)

// RemoteTempPath is where the binary lands before install -Dm0755 moves it
// into place.
const RemoteTempPath = "/tmp/cmux-execd.upload"

// RemoteBinaryPath is the daemon's final installed location on the VM.
const RemoteBinaryPath = "/usr/local/bin/cmux-execd"

// LogPath is where the daemon's stdout/stderr are redirected once launched.
const LogPath = "/var/log/cmux-execd.log"

// sleepFunc is overridable in tests.
var sleepFunc = time.Sleep

// UploadWithRetry transfers localBinaryPath to RemoteTempPath on instance,
// retrying up to DaemonUploadMaxAttempts times with linear backoff
// (DaemonUploadBackoffUnit * attempt). Each attempt re-uploads the full
// file; no partial-transfer state is assumed to survive a failure.
func UploadWithRetry(ctx context.Context, instance cloud.Instance, localBinaryPath string) error {
	var lastErr error
	for attempt := 1; attempt <= defaults.DaemonUploadMaxAttempts; attempt++ {
		if err := instance.UploadFile(ctx, localBinaryPath, RemoteTempPath); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt == defaults.DaemonUploadMaxAttempts {
			break
		}
		delay := time.Duration(attempt) * defaults.DaemonUploadBackoffUnit
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			sleepFunc(delay)
		}
	}
	return snaperrors.Wrap(snaperrors.ErrCodeTransport,
		fmt.Sprintf("failed to upload exec daemon binary after %d attempts", defaults.DaemonUploadMaxAttempts), lastErr)
}

// launchScript renders the install/kill-prior/launch/verify shell sequence
// run once over ssh, bypassing the daemon it starts.
func launchScript(port int) string {
	var b strings.Builder
	b.WriteString("set -euo pipefail\n")
	fmt.Fprintf(&b, "install -Dm0755 %s %s\n", shQuote(RemoteTempPath), shQuote(RemoteBinaryPath))
	fmt.Fprintf(&b, "rm -f %s\n", shQuote(RemoteTempPath))
	b.WriteString("if command -v pkill >/dev/null 2>&1; then\n")
	fmt.Fprintf(&b, "  pkill -x %s || true\n", BinaryName)
	b.WriteString("else\n")
	fmt.Fprintf(&b, "  pids=$(ps -eo pid,comm | awk '$2 == \"%s\" {print $1}')\n", BinaryName)
	b.WriteString("  if [ -n \"$pids\" ]; then kill $pids || true; fi\n")
	b.WriteString("fi\n")
	b.WriteString("mkdir -p /var/log\n")
	fmt.Fprintf(&b, "nohup %s --port %d >%s 2>&1 &\n", shQuote(RemoteBinaryPath), port, shQuote(LogPath))
	b.WriteString("if command -v pgrep >/dev/null 2>&1; then\n")
	b.WriteString("  sleep 1\n")
	fmt.Fprintf(&b, "  if ! pgrep -x %s >/dev/null 2>&1; then\n", BinaryName)
	b.WriteString("    echo \"cmux-execd failed to start\" >&2\n")
	fmt.Fprintf(&b, "    if [ -f %s ]; then tail -n %d %s >&2 || true; fi\n", shQuote(LogPath), defaults.DaemonLogTailLines, shQuote(LogPath))
	b.WriteString("    exit 1\n")
	b.WriteString("  fi\n")
	b.WriteString("fi\n")
	return b.String()
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Launch runs the install/kill-prior/start sequence over ssh and waits for
// the process to be alive, surfacing a log tail on failure.
func Launch(ctx context.Context, ssh execclient.Transport, port int) error {
	result, err := ssh.Run(ctx, "launch-exec-daemon", launchScript(port), defaults.TaskDefaultTimeout)
	if err != nil {
		return err
	}
	if !result.Succeeded() {
		return snaperrors.NewWithContext(snaperrors.ErrCodeRemoteCommand,
			fmt.Sprintf("exec daemon failed to launch: exit %d", result.ExitCode),
			map[string]any{"stderr": result.TrimmedStderr()})
	}
	return nil
}

// Install cross-compiles, uploads, launches, and health-gates the exec
// daemon, returning an HTTPClient ready for use as the TaskContext's
// Transport. execURL is the publicly exposed URL for the daemon's port.
func Install(ctx context.Context, repoRoot string, instance cloud.Instance, ssh execclient.Transport, execURL string, port int, console execclient.Console) (*execclient.HTTPClient, error) {
	binaryPath, err := Build(repoRoot)
	if err != nil {
		return nil, err
	}

	if err := UploadWithRetry(ctx, instance, binaryPath); err != nil {
		return nil, err
	}

	if err := Launch(ctx, ssh, port); err != nil {
		return nil, err
	}

	client := execclient.NewHTTPClient(execURL, console)
	if err := client.WaitReady(ctx, defaults.DaemonLaunchReadyRetries, defaults.DaemonLaunchReadyDelay); err != nil {
		return nil, err
	}
	return client, nil
}

// TailLogOnFailure best-effort tails LogPath over ssh and appends the
// result to err's context, for diagnostic capture on an HTTP task failure
// (§4.3's "every task command run via HTTP that fails triggers a best-effort
// tail of the daemon log"). Returns err unchanged if the tail itself fails.
func TailLogOnFailure(ctx context.Context, ssh execclient.Transport, err error) error {
	if err == nil || ssh == nil {
		return err
	}
	tailCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	line := fmt.Sprintf("tail -n %d %s 2>/dev/null || true", defaults.DaemonLogTailLines, shQuote(LogPath))
	result, tailErr := ssh.Run(tailCtx, "tail-exec-daemon-log", line, 10*time.Second)
	if tailErr != nil {
		return err
	}

	var se *snaperrors.StructuredError
	if asStructured, ok := err.(*snaperrors.StructuredError); ok {
		se = asStructured
	} else {
		se = snaperrors.Wrap(snaperrors.ErrCodeRemoteCommand, "task failed", err)
	}
	ctxCopy := make(map[string]any, len(se.Context)+1)
	for k, v := range se.Context {
		ctxCopy[k] = v
	}
	ctxCopy["daemon_log_tail"] = result.TrimmedStdout()
	return snaperrors.WrapWithContext(se.Code, se.Message, se.Cause, ctxCopy)
}

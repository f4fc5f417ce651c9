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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmux/snapctl/pkg/cloud"
	snaperrors "github.com/cmux/snapctl/pkg/errors"
	"github.com/cmux/snapctl/pkg/execclient"
)

type flakyUploadInstance struct {
	cloud.FakeInstance
	failUntilAttempt int
	attempts         int
}

func (f *flakyUploadInstance) UploadFile(ctx context.Context, localPath, remotePath string) error {
	f.attempts++
	if f.attempts < f.failUntilAttempt {
		return snaperrors.New(snaperrors.ErrCodeTransport, "simulated upload failure")
	}
	return nil
}

func TestUploadWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	orig := sleepFunc
	sleepFunc = func(time.Duration) {}
	defer func() { sleepFunc = orig }()

	inst := &flakyUploadInstance{failUntilAttempt: 3}
	err := UploadWithRetry(context.Background(), inst, "/tmp/fake-binary")
	require.NoError(t, err)
	assert.Equal(t, 3, inst.attempts)
}

func TestUploadWithRetryExhaustsAttempts(t *testing.T) {
	orig := sleepFunc
	sleepFunc = func(time.Duration) {}
	defer func() { sleepFunc = orig }()

	inst := &flakyUploadInstance{failUntilAttempt: 100}
	err := UploadWithRetry(context.Background(), inst, "/tmp/fake-binary")
	require.Error(t, err)
	assert.Equal(t, 5, inst.attempts)
}

type fakeSSH struct {
	result execclient.ExecResult
	err    error
	lastLine string
}

func (f *fakeSSH) Run(ctx context.Context, label, line string, timeout time.Duration) (execclient.ExecResult, error) {
	f.lastLine = line
	return f.result, f.err
}

func TestLaunchScriptIncludesInstallKillAndStart(t *testing.T) {
	script := launchScript(39375)
	assert.Contains(t, script, "install -Dm0755")
	assert.Contains(t, script, "pkill -x cmux-execd")
	assert.Contains(t, script, "nohup")
	assert.Contains(t, script, "--port 39375")
	assert.Contains(t, script, "/var/log/cmux-execd.log")
}

func TestLaunchSucceedsOnZeroExit(t *testing.T) {
	ssh := &fakeSSH{result: execclient.ExecResult{ExitCode: 0}}
	err := Launch(context.Background(), ssh, 39375)
	require.NoError(t, err)
	assert.Contains(t, ssh.lastLine, "cmux-execd")
}

func TestLaunchFailsOnNonZeroExit(t *testing.T) {
	ssh := &fakeSSH{result: execclient.ExecResult{ExitCode: 1, Stderr: "cmux-execd failed to start"}}
	err := Launch(context.Background(), ssh, 39375)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to launch")
}

func TestTailLogOnFailureAppendsLogContext(t *testing.T) {
	ssh := &fakeSSH{result: execclient.ExecResult{Stdout: "boom trace"}}
	base := snaperrors.New(snaperrors.ErrCodeRemoteCommand, "task failed")

	wrapped := TailLogOnFailure(context.Background(), ssh, base)

	var se *snaperrors.StructuredError
	require.ErrorAs(t, wrapped, &se)
	assert.Equal(t, "boom trace", se.Context["daemon_log_tail"])
}

func TestTailLogOnFailureReturnsNilUnchanged(t *testing.T) {
	ssh := &fakeSSH{}
	assert.NoError(t, TailLogOnFailure(context.Background(), ssh, nil))
}

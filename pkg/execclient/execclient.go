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

// Package execclient implements the remote execution substrate (C2): a
// uniform ExecResult produced by either an HTTP-streamed daemon client or an
// SSH fallback, plus Decorated, which prepends the environment and
// cgroup-join preludes to a command before it reaches a backend. The
// backends do not decorate commands themselves, and no task body in this
// module runs its commands through Decorated.
package execclient

import (
	"context"
	"strings"
	"time"
)

// ExecResult is the uniform outcome of running a command through either
// backend.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Warning is set when the result was synthesized from an incomplete
	// signal, e.g. a stream that ended without an exit frame.
	Warning string
}

// Succeeded reports whether the command exited zero.
func (r ExecResult) Succeeded() bool { return r.ExitCode == 0 }

// TrimmedStdout returns Stdout with surrounding whitespace removed, as used
// when composing a RemoteCommandFailure message.
func (r ExecResult) TrimmedStdout() string { return strings.TrimSpace(r.Stdout) }

// TrimmedStderr returns Stderr with surrounding whitespace removed.
func (r ExecResult) TrimmedStderr() string { return strings.TrimSpace(r.Stderr) }

// EventType discriminates an ExecEvent's payload.
type EventType string

const (
	EventStdout EventType = "stdout"
	EventStderr EventType = "stderr"
	EventExit   EventType = "exit"
	EventError  EventType = "error"
)

// ExecEvent is one newline-delimited JSON frame of the exec daemon's
// streaming response.
type ExecEvent struct {
	Type EventType `json:"type"`
	Data string    `json:"data,omitempty"`
	Code *int      `json:"code,omitempty"`
	// Message carries an "error" frame's text, and also absorbs any field
	// named "message" on frames this client doesn't otherwise recognize.
	Message string `json:"message,omitempty"`
}

// Transport runs a single labeled command and returns its ExecResult. A
// non-zero ExitCode is surfaced as an error (an ErrCodeRemoteCommand
// StructuredError carrying the trimmed stdout/stderr) returned together with
// the ExecResult, so callers see the exit code as well as the failure.
type Transport interface {
	Run(ctx context.Context, label string, line string, timeout time.Duration) (ExecResult, error)
}

// Console receives line-by-line output as commands stream, for interleaved
// human-facing display during provisioning.
type Console interface {
	Line(prefix, text string)
}

// NopConsole discards all output; useful in tests.
type NopConsole struct{}

func (NopConsole) Line(string, string) {}

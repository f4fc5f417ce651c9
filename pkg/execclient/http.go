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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmux/snapctl/pkg/defaults"
	snaperrors "github.com/cmux/snapctl/pkg/errors"
	"github.com/cmux/snapctl/pkg/metrics"
)

// transientHTTPCodes are the status codes the HTTP exec client retries with
// exponential backoff; every other non-200 status is surfaced immediately.
var transientHTTPCodes = map[int]bool{
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// HTTPClient talks to an in-VM cmux-execd daemon over /exec and /healthz.
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Console    Console

	MaxRetries    int
	InitialDelay  time.Duration
	sleep         func(time.Duration)
}

// NewHTTPClient builds an HTTPClient with package defaults for retry
// behavior; pass a Console to mirror streamed output, or NopConsole{} for
// silent operation (e.g. tests).
func NewHTTPClient(baseURL string, console Console) *HTTPClient {
	if console == nil {
		console = NopConsole{}
	}
	return &HTTPClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		HTTPClient:   &http.Client{},
		Console:      console,
		MaxRetries:   defaults.ExecMaxRetries,
		InitialDelay: defaults.ExecRetryInitialDelay,
		sleep:        time.Sleep,
	}
}

type execRequest struct {
	Command   string `json:"command"`
	TimeoutMs int64  `json:"timeout_ms,omitempty"`
}

// WaitReady polls GET {base}/healthz until it returns HTTP 200, up to
// retries times with a fixed delay between attempts.
func (c *HTTPClient) WaitReady(ctx context.Context, retries int, delay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if c.healthy(ctx) {
			return nil
		}
		lastErr = fmt.Errorf("exec daemon not ready after %d attempts", attempt+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			c.sleep(delay)
		}
	}
	return snaperrors.Wrap(snaperrors.ErrCodeTransport, "exec daemon never became ready", lastErr)
}

func (c *HTTPClient) healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Run implements Transport: POST {base}/exec with the command line, parse
// the streamed NDJSON response, and retry transient 502/503/504 responses
// with exponential backoff. Non-transient HTTP errors and connection errors
// fail immediately without retry.
func (c *HTTPClient) Run(ctx context.Context, label, line string, timeout time.Duration) (ExecResult, error) {
	body, err := json.Marshal(execRequest{Command: line, TimeoutMs: timeout.Milliseconds()})
	if err != nil {
		return ExecResult{}, snaperrors.Wrap(snaperrors.ErrCodeProtocol, "failed to encode exec request", err)
	}

	readTimeout := defaults.ExecClientTimeout
	if timeout > 0 {
		readTimeout = timeout + 5*time.Second
	}

	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		result, status, err := c.attempt(ctx, label, body, readTimeout)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !transientHTTPCodes[status] {
			return result, lastErr
		}
		delay := c.InitialDelay * (1 << attempt)
		metrics.ExecRetriesTotal.WithLabelValues("http").Inc()
		slog.Warn("exec http transient failure, retrying", "label", label, "status", status, "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return ExecResult{}, ctx.Err()
		default:
			c.sleep(delay)
		}
	}
	return ExecResult{}, snaperrors.Wrap(snaperrors.ErrCodeTransport,
		fmt.Sprintf("exec %q exhausted retry budget", label), lastErr)
}

// attempt performs a single POST /exec round trip. status is 0 when the
// failure was not an HTTP-level error (e.g. a connection refusal), which
// attempt's caller never treats as transient.
func (c *HTTPClient) attempt(ctx context.Context, label string, body []byte, readTimeout time.Duration) (ExecResult, int, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if readTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, readTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.BaseURL+"/exec", bytes.NewReader(body))
	if err != nil {
		return ExecResult{}, 0, snaperrors.Wrap(snaperrors.ErrCodeProtocol, "failed to build exec request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ExecResult{}, 0, snaperrors.Wrap(snaperrors.ErrCodeTransport, fmt.Sprintf("exec %q request failed", label), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return ExecResult{}, resp.StatusCode, snaperrors.NewWithContext(snaperrors.ErrCodeProtocol,
			fmt.Sprintf("exec %q received HTTP %d", label, resp.StatusCode),
			map[string]any{"body": string(text)})
	}

	result := parseStream(label, resp.Body, c.Console)
	if !result.Succeeded() {
		return result, 0, snaperrors.NewWithContext(snaperrors.ErrCodeRemoteCommand,
			fmt.Sprintf("%s: exit %d", label, result.ExitCode),
			map[string]any{
				"stdout": result.TrimmedStdout(),
				"stderr": result.TrimmedStderr(),
			})
	}
	return result, 0, nil
}

// parseStream folds a newline-delimited JSON ExecEvent stream into a single
// ExecResult, echoing stdout/stderr lines to the console as they arrive.
// Malformed lines and unknown frame types are recorded as stderr noise
// rather than aborting the stream. A stream that ends without an exit frame
// yields exit_code 0 with a warning (spec's documented base behavior).
func parseStream(label string, body io.Reader, console Console) ExecResult {
	var stdout, stderr strings.Builder
	sawExit := false
	exitCode := 0

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var ev ExecEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			stderr.WriteString(fmt.Sprintf("[malformed event] %s\n", string(raw)))
			continue
		}
		switch ev.Type {
		case EventStdout:
			stdout.WriteString(ev.Data)
			echoLines(console, "["+label+"]", ev.Data)
		case EventStderr:
			stderr.WriteString(ev.Data)
			echoLines(console, "["+label+"][stderr]", ev.Data)
		case EventExit:
			sawExit = true
			if ev.Code != nil {
				exitCode = *ev.Code
			} else {
				exitCode = 1
			}
		case EventError:
			stderr.WriteString(ev.Message)
			stderr.WriteString("\n")
		default:
			stderr.WriteString(fmt.Sprintf("[unknown event type %q]\n", ev.Type))
		}
	}

	result := ExecResult{ExitCode: exitCode, Stdout: stdout.String(), Stderr: stderr.String()}
	if !sawExit {
		result.ExitCode = 0
		result.Warning = fmt.Sprintf("%s: stream ended without an exit frame, assuming success", label)
		console.Line("["+label+"]", "Warning: "+result.Warning)
	}
	return result
}

func echoLines(console Console, prefix, data string) {
	for _, line := range strings.Split(data, "\n") {
		if line == "" {
			continue
		}
		console.Line(prefix, line)
	}
}

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

package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postExec(t *testing.T, body string) []execEvent {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/exec", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handleExec(rec, req)

	var events []execEvent
	scanner := bufio.NewScanner(bytes.NewReader(rec.Body.Bytes()))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var ev execEvent
		require.NoError(t, json.Unmarshal(line, &ev))
		events = append(events, ev)
	}
	return events
}

func TestHandleExecStreamsStdoutAndExitsZero(t *testing.T) {
	events := postExec(t, `{"command":"echo hello"}`)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, "exit", last.Type)
	require.NotNil(t, last.Code)
	assert.Equal(t, 0, *last.Code)

	var stdout strings.Builder
	for _, ev := range events {
		if ev.Type == "stdout" {
			stdout.WriteString(ev.Data)
		}
	}
	assert.Contains(t, stdout.String(), "hello")
}

func TestHandleExecReportsNonZeroExit(t *testing.T) {
	events := postExec(t, `{"command":"exit 7"}`)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, "exit", last.Type)
	require.NotNil(t, last.Code)
	assert.Equal(t, 7, *last.Code)
}

func TestHandleExecStreamsStderr(t *testing.T) {
	events := postExec(t, `{"command":"echo oops 1>&2"}`)
	var stderr strings.Builder
	for _, ev := range events {
		if ev.Type == "stderr" {
			stderr.WriteString(ev.Data)
		}
	}
	assert.Contains(t, stderr.String(), "oops")
}

func TestHandleExecRejectsEmptyCommand(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/exec", strings.NewReader(`{"command":""}`))
	rec := httptest.NewRecorder()
	handleExec(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExecRejectsNonPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/exec", nil)
	rec := httptest.NewRecorder()
	handleExec(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleExecRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/exec", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	handleExec(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExecTimeoutKillsCommand(t *testing.T) {
	events := postExec(t, `{"command":"sleep 5","timeout_ms":50}`)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, "exit", last.Type)
	require.NotNil(t, last.Code)
	assert.NotEqual(t, 0, *last.Code)
}

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

// Package server implements the in-VM cmux-execd HTTP daemon: a single
// /exec endpoint that runs a shell command and streams its output back as
// newline-delimited JSON frames, reusing pkg/server's middleware chain,
// health/ready/metrics endpoints, and graceful-shutdown loop.
package server

import (
	"net/http"
	"time"

	"github.com/cmux/snapctl/pkg/serializer"
	"github.com/cmux/snapctl/pkg/server"
)

// New builds the exec daemon's HTTP server, listening on port. version
// identifies the daemon in its root route listing. /healthz is the contract
// pkg/execclient.HTTPClient.WaitReady polls, distinct from pkg/server's own
// /health and /ready (which remain available for operator tooling).
func New(port int, version string) *server.Server {
	return server.New(
		server.WithName("cmux-execd"),
		server.WithVersion(version),
		server.WithPort(port),
		server.WithHandler(map[string]http.HandlerFunc{
			"/exec":    handleExec,
			"/healthz": handleHealthz,
		}),
	)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

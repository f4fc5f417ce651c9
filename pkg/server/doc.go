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

// Package server provides a generic HTTP server configured through
// functional options, with a shared middleware chain, health and readiness
// probes, Prometheus metrics and graceful shutdown.
//
// # Architecture
//
// Every handler registered through WithHandler is wrapped, outermost first, in:
//
//   - metrics (request counts and durations)
//   - API version negotiation (X-API-Version response header)
//   - request ID tracking
//   - panic recovery
//   - rate limiting: one token-bucket limiter (golang.org/x/time/rate) shared
//     by every wrapped route of the Server
//   - request logging
//
// /health, /ready and /metrics are registered without this chain and are not
// rate-limited. The package does no request validation of its own.
//
// # Usage
//
//	s := server.New(
//	    server.WithName("exec-daemon"),
//	    server.WithVersion("v1.0.0"),
//	    server.WithPort(8080),
//	    server.WithHandler(map[string]http.HandlerFunc{"/exec": handleExec}),
//	)
//	if err := s.Run(ctx); err != nil {
//	    panic(err)
//	}
//
// Custom configuration:
//
//	config := server.NewConfig()
//	config.Port = 9090
//	config.RateLimit = 200  // 200 requests/sec
//	config.RateLimitBurst = 400
//
//	s := server.New(server.WithConfig(config))
//
// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
//
// # API Endpoints
//
// GET / - Lists the server's routes
//
// GET /metrics - Prometheus metrics
//
// GET /health - Health check (for liveness probe)
//
//	Always returns 200 OK with {"status": "healthy", "timestamp": "..."}
//
// GET /ready - Readiness check (for readiness probe)
//
//	Returns 200 OK when ready, 503 when not ready
//
// # Observability
//
// Request ID Tracking:
//
//	Wrapped routes accept an optional X-Request-Id header (UUID format).
//	If it is missing or not a valid UUID, the server generates one.
//	The request ID is returned in the X-Request-Id response header
//	and included in all error responses for tracing.
//
// Rate Limiting:
//
//	Response headers indicate rate limit status:
//	  X-RateLimit-Limit: Configured requests per second
//	  X-RateLimit-Remaining: Tokens left in the shared bucket
//	  X-RateLimit-Reset: Unix timestamp one second ahead
//
//	When rate limited, returns 429 with a RATE_LIMIT_EXCEEDED body and Retry-After: 1.
//
// # Error Handling
//
// All errors return a consistent JSON structure:
//
//	{
//	  "code": "INVALID_REQUEST",
//	  "message": "missing field: script",
//	  "details": {"field": "script"},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-12-22T12:00:00Z",
//	  "retryable": false
//	}
//
// Error codes come from pkg/errors; HTTPStatusFromCode maps them to statuses:
//   - INVALID_REQUEST: 400
//   - UNAUTHORIZED: 401
//   - NOT_FOUND: 404
//   - METHOD_NOT_ALLOWED: 405
//   - RATE_LIMIT_EXCEEDED: 429
//   - SERVICE_UNAVAILABLE: 503
//   - TIMEOUT: 504
//   - INTERNAL and every other code: 500
//
// # References
//
//   - Rate limiting: https://pkg.go.dev/golang.org/x/time/rate
//   - UUID generation: https://pkg.go.dev/github.com/google/uuid
//   - Error groups: https://pkg.go.dev/golang.org/x/sync/errgroup
//   - HTTP best practices: https://datatracker.ietf.org/doc/html/rfc7807
//   - Kubernetes probes: https://kubernetes.io/docs/tasks/configure-pod-container/configure-liveness-readiness-startup-probes/
package server

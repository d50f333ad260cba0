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

// Package server is the HTTP workload that stays up while a termination
// notice is handled.
//
// Endpoints:
//
//	GET /health   liveness, always 200
//	GET /ready    readiness, 503 with {"status":"not_ready"} once shutdown starts
//	GET /metrics  Prometheus metrics
//	GET /         name, version and routes
//
// Extra handlers passed with WithHandler go through the middleware chain:
// metrics, request ID (X-Request-Id, UUID), panic recovery, rate limiting
// (golang.org/x/time/rate) and debug logging.
//
// Shutdown ordering:
//
//	coord := shutdown.NewCoordinator(p,
//	    shutdown.WithNotifyHook(func(context.Context) { srv.SetReady(false) }))
//	coord.HandleSignals(ctx)
//	err := srv.Run(ctx, coord) // drains only after coord reaches Exited
//
// Error responses share one JSON shape:
//
//	{
//	  "code": "RATE_LIMIT_EXCEEDED",
//	  "message": "Rate limit exceeded",
//	  "details": {"limit": 100, "burst": 200},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-12-22T12:00:00Z",
//	  "retryable": true
//	}
package server

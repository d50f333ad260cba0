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

// Package defaults provides centralized configuration constants for sigcap.
//
// This package defines timeout values and polling intervals used across the
// termination hook. Centralizing these values keeps the cumulative latency of
// the shutdown sequence visible in one place.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Shutdown timeouts: Total grace budget for the termination hook
//   - Metadata timeouts: Local task metadata endpoint
//   - Control plane timeouts: Describe-task query and its poll interval
//   - Diagnostic timeouts: Per-command execution and remote artifact writes
//   - Server timeouts: For HTTP server configuration
//   - HTTP client timeouts: For outbound HTTP requests
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/sigterm-capture/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.MetadataFetchTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
// The sum of MetadataFetchTimeout, ControlPlaneTimeout and the diagnostic
// command timeouts must stay below ShutdownGracePeriod, which in turn must
// stay below the orchestrator stop timeout (30s by default on ECS).
package defaults

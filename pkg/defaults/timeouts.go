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

package defaults

import "time"

// Shutdown timeouts for the termination hook.
const (
	// ShutdownGracePeriod is the default budget for the whole termination
	// sequence. ECS and Kubernetes both default to 30s between SIGTERM and
	// SIGKILL, so the hook must finish well inside that window.
	ShutdownGracePeriod = 25 * time.Second

	// ShutdownExitWait is the extra time the exit path waits for the hook
	// after the grace budget expires before giving up.
	ShutdownExitWait = 2 * time.Second
)

// Metadata timeouts for the local task metadata endpoint.
const (
	// MetadataFetchTimeout is the total timeout for fetching the metadata document.
	// The endpoint is link-local and should answer in milliseconds.
	MetadataFetchTimeout = 2 * time.Second

	// MetadataMaxSize is the maximum number of bytes read from the metadata endpoint.
	MetadataMaxSize = 1 << 20
)

// Control plane timeouts for the describe-task query.
const (
	// ControlPlaneTimeout bounds the describe-task call, including SDK retries.
	ControlPlaneTimeout = 10 * time.Second

	// ControlPlanePollInterval is the interval at which the in-flight call is checked.
	ControlPlanePollInterval = 50 * time.Millisecond
)

// Diagnostic timeouts for command execution.
const (
	// DiagnosticCommandTimeout is the timeout for a single diagnostic command.
	DiagnosticCommandTimeout = 5 * time.Second

	// ArtifactWriteTimeout is the timeout for persisting a single artifact remotely.
	ArtifactWriteTimeout = 5 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for draining the server
	// once the termination hook has completed.
	ServerShutdownTimeout = 5 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 1 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 2 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

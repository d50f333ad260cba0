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


// Package cli implements the sigcap command-line interface.
//
// # Commands
//
// serve - Run the HTTP workload and the termination hook:
//
//	sigcap serve [--control-plane ecs|kubernetes] [--artifact-dir DIR] [--port PORT]
//
// The server exposes /health, /ready, /metrics and /v1/shutdown. On the first
// SIGTERM readiness is withdrawn, the stop reason is classified and, for
// unexpected stops, diagnostic output is persisted before the server drains.
//
// inspect - Run the hook once and print the report:
//
//	sigcap inspect [--persist] [--output FILE] [--format yaml|json|table]
//
// # Configuration
//
// Every setting is read from the environment first (see pkg/config) and
// then overridden by flags that were set explicitly.
//
//	CONTROL_PLANE                  ecs (default) or kubernetes
//	ECS_CONTAINER_METADATA_URI_V4  ECS task metadata endpoint
//	POD_NAME, POD_NAMESPACE        pod identity on Kubernetes
//	ARTIFACT_DIR                   artifact directory (default /data)
//	EXPECTED_STOP_REASONS          extra expected stop reason fragments
//	DIAGNOSTIC_COMMANDS_FILE       YAML list of diagnostic commands
//	DIAGNOSTIC_COMMAND_TIMEOUT_SECONDS  per-command time limit
//	ARTIFACT_S3_BUCKET             optional S3 mirror
//	ARTIFACT_CONFIGMAP             optional ConfigMap mirror (namespace/name)
//	LOG_LEVEL                      debug, info, warn, error
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/sigterm-capture/pkg/cli.version=1.0.0'"
package cli

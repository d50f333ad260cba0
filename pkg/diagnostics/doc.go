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

// Package diagnostics captures host state when a task is stopping for an
// unrecognized reason.
//
// Each Command runs as "<shell> -c <command>" through k8s.io/utils/exec,
// sequentially, with its own timeout. Standard output becomes an
// artifact.Artifact named after the command. The defaults are the process
// table ("process": ps aux) and the environment ("env": env); a YAML file
// loaded with LoadCommands replaces them.
package diagnostics

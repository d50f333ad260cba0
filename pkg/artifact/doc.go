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

// Package artifact persists diagnostic and metadata artifacts.
//
// FileStore writes each artifact to a file in an externally mounted
// directory:
//
//	/data/status-<host>-<name>.txt
//
// The file is replaced on every write and its mode is set to 0644 after
// writing. S3Store optionally mirrors the same artifacts to a bucket, and
// MultiStore fans a single Save out to several stores.
//
// Callers are expected to log and continue on error: a failed write must
// never stop the shutdown sequence.
package artifact

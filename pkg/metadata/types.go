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

package metadata

import (
	"context"
	stderrors "errors"
)

// ErrNotAvailable is the "cannot classify" outcome: the task identity could not
// be determined. It is expected when running outside the managed environment.
var ErrNotAvailable = stderrors.New("task metadata not available")

// TaskIdentity identifies the task this process runs in.
type TaskIdentity struct {
	// ID is the short task identifier (the last segment of the task ARN, or the pod name).
	ID string `json:"id" yaml:"id"`
	// Cluster is the ECS cluster name or ARN, or the pod namespace.
	Cluster string `json:"cluster" yaml:"cluster"`
}

// Complete reports whether both fields are set.
func (t TaskIdentity) Complete() bool {
	return t.ID != "" && t.Cluster != ""
}

// Document is the result of a successful resolution.
type Document struct {
	Identity TaskIdentity
	// Raw is the metadata document as fetched, nil when the backend has none.
	Raw []byte
}

// Resolver resolves the identity of the current task.
//
// Implementations return an error wrapping ErrNotAvailable when the identity
// cannot be determined. A non-nil Document may accompany that error when a raw
// document was fetched but could not be interpreted.
type Resolver interface {
	Resolve(ctx context.Context) (*Document, error)
}

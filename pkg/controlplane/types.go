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

package controlplane

import (
	"context"

	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
)

// Task is the control plane's view of a task.
type Task struct {
	// ID is the task identifier as reported by the control plane.
	ID string `json:"id" yaml:"id"`
	// StopReason is the free-text reason attached to the stopping task.
	// It is never modified, only pattern-matched.
	StopReason string `json:"stopReason" yaml:"stopReason"`
	// LastStatus is the last known lifecycle status (e.g. STOPPING, Running).
	LastStatus string `json:"lastStatus,omitempty" yaml:"lastStatus,omitempty"`
}

// Describer queries the control plane for a task.
// It returns zero tasks when the control plane no longer knows the task.
type Describer interface {
	Describe(ctx context.Context, identity metadata.TaskIdentity) ([]Task, error)
}

// DescriberFunc adapts a function to the Describer interface.
type DescriberFunc func(ctx context.Context, identity metadata.TaskIdentity) ([]Task, error)

// Describe calls f.
func (f DescriberFunc) Describe(ctx context.Context, identity metadata.TaskIdentity) ([]Task, error) {
	return f(ctx, identity)
}

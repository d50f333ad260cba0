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
	"log/slog"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

// PodResolver reads the task identity from downward API values: the pod name
// is the task ID and the namespace plays the role of the cluster.
type PodResolver struct {
	Name      string
	Namespace string

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Resolve returns the pod identity, or ErrNotAvailable when either value is unset.
func (r *PodResolver) Resolve(_ context.Context) (*Document, error) {
	if r.Name == "" || r.Namespace == "" {
		r.logger().Info("pod identity not configured, downward API env missing?",
			"name", r.Name, "namespace", r.Namespace)
		return nil, errors.Wrap(errors.ErrCodeConfigurationAbsent,
			"pod name and namespace not configured", ErrNotAvailable)
	}

	return &Document{
		Identity: TaskIdentity{ID: r.Name, Cluster: r.Namespace},
	}, nil
}

func (r *PodResolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

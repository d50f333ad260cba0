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

package pipeline

import (
	"time"

	"github.com/NVIDIA/sigterm-capture/pkg/classifier"
	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
)

// Report describes one shutdown event from metadata lookup to the last
// artifact write.
type Report struct {
	// EventID correlates every log line of the event.
	EventID    string                `json:"eventId" yaml:"eventId"`
	Host       string                `json:"host" yaml:"host"`
	Identity   metadata.TaskIdentity `json:"identity" yaml:"identity"`
	Verdict    classifier.Verdict    `json:"verdict" yaml:"verdict"`
	StopReason string                `json:"stopReason,omitempty" yaml:"stopReason,omitempty"`
	// Error is the fault that made the verdict Indeterminate, if any.
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
	Artifacts []ArtifactResult `json:"artifacts" yaml:"artifacts"`
	DryRun    bool             `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Started   time.Time        `json:"started" yaml:"started"`
	Finished  time.Time        `json:"finished" yaml:"finished"`
}

// ArtifactResult records the outcome of persisting one artifact.
type ArtifactResult struct {
	Name  string `json:"name" yaml:"name"`
	Bytes int    `json:"bytes" yaml:"bytes"`
	Saved bool   `json:"saved" yaml:"saved"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Duration is the elapsed time of the event so far.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}

// Captured reports whether any diagnostic artifact (anything other than
// the metadata document) was recorded.
func (r *Report) Captured() bool {
	for _, a := range r.Artifacts {
		if a.Name != MetadataArtifact {
			return true
		}
	}
	return false
}

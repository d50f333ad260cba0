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

package classifier

import (
	"strings"
	"sync"

	"github.com/NVIDIA/sigterm-capture/pkg/controlplane"
)

// DefaultECSReason is the stop-reason fragment ECS uses for service scaling.
const DefaultECSReason = "Scaling activity initiated"

// DefaultKubernetesReason is the DisruptionTarget reason set by the eviction API.
const DefaultKubernetesReason = "EvictionByEvictionAPI"

// DefaultKubernetesDeletedReason matches pods deleted through the API.
const DefaultKubernetesDeletedReason = controlplane.ReasonPodDeleted

// Rules is the set of recognized stop-reason fragments.
// A reason is valid when it contains any fragment (case-sensitive).
// Rules only ever grow: entries are added, never inverted or removed.
type Rules struct {
	mu        sync.RWMutex
	fragments []string
}

// NewRules returns a rule set holding the given fragments.
// Empty fragments are ignored since they would match every reason.
func NewRules(fragments ...string) *Rules {
	r := &Rules{}
	r.Add(fragments...)
	return r
}

// DefaultECSRules returns the rule set for the ECS backend.
func DefaultECSRules() *Rules {
	return NewRules(DefaultECSReason)
}

// DefaultKubernetesRules returns the rule set for the Kubernetes backend.
func DefaultKubernetesRules() *Rules {
	return NewRules(DefaultKubernetesReason, DefaultKubernetesDeletedReason)
}

// Add appends fragments, skipping empties and duplicates.
func (r *Rules) Add(fragments ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range fragments {
		if f == "" || r.contains(f) {
			continue
		}
		r.fragments = append(r.fragments, f)
	}
}

func (r *Rules) contains(f string) bool {
	for _, existing := range r.fragments {
		if existing == f {
			return true
		}
	}
	return false
}

// Matches reports whether reason contains a recognized fragment.
// An empty reason never matches.
func (r *Rules) Matches(reason string) bool {
	if r == nil || reason == "" {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.fragments {
		if strings.Contains(reason, f) {
			return true
		}
	}
	return false
}

// Fragments returns a copy of the recognized fragments in insertion order.
func (r *Rules) Fragments() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.fragments))
	copy(out, r.fragments)
	return out
}

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

package artifact

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
)

// Artifact is one named diagnostic or metadata blob.
type Artifact struct {
	Name    string
	Content []byte
}

// Store persists artifacts. Saving the same name again replaces the content.
type Store interface {
	Save(ctx context.Context, a Artifact) error
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, a Artifact) error

func (f StoreFunc) Save(ctx context.Context, a Artifact) error {
	return f(ctx, a)
}

var unsafeSegment = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeSegment reduces s to a single safe path segment.
func SanitizeSegment(s string) string {
	s = unsafeSegment.ReplaceAllString(s, "_")
	s = strings.TrimLeft(s, ".")
	if s == "" {
		return "unnamed"
	}
	return s
}

// MultiStore saves each artifact to every store. All stores are attempted
// and their errors joined.
type MultiStore struct {
	Stores []Store
}

// NewMultiStore skips nil stores.
func NewMultiStore(stores ...Store) *MultiStore {
	m := &MultiStore{}
	for _, s := range stores {
		if s != nil {
			m.Stores = append(m.Stores, s)
		}
	}
	return m
}

func (m *MultiStore) Save(ctx context.Context, a Artifact) error {
	var errs []error
	for _, s := range m.Stores {
		if err := s.Save(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

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
	"fmt"
	"log/slog"
	"time"

	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

// ECSResolver reads the task identity from the ECS container metadata endpoint.
type ECSResolver struct {
	// Endpoint is the metadata URI; empty means not running on ECS.
	Endpoint string
	// Fetcher performs the request. Defaults to NewHTTPFetcher().
	Fetcher Fetcher
	// Timeout bounds the fetch. Defaults to defaults.MetadataFetchTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewECSResolver returns a resolver for the given endpoint.
func NewECSResolver(endpoint string) *ECSResolver {
	return &ECSResolver{
		Endpoint: endpoint,
		Fetcher:  NewHTTPFetcher(),
		Timeout:  defaults.MetadataFetchTimeout,
	}
}

// Resolve fetches the metadata document once and extracts the task identity.
// The raw document is returned whenever it was fetched, even if no identity
// could be extracted from it.
func (r *ECSResolver) Resolve(ctx context.Context) (*Document, error) {
	log := r.logger()

	if r.Endpoint == "" {
		log.Info("metadata endpoint not configured, not running on ECS?")
		return nil, errors.Wrap(errors.ErrCodeConfigurationAbsent,
			"metadata endpoint not configured", ErrNotAvailable)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaults.MetadataFetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fetcher := r.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}

	raw, err := fetcher.Fetch(fetchCtx, r.Endpoint)
	if err != nil {
		log.Warn("failed to fetch task metadata", "endpoint", r.Endpoint, "error", err)
		return nil, errors.WrapWithContext(errors.ErrCodeMetadataUnavailable,
			"failed to fetch task metadata", fmt.Errorf("%w: %w", ErrNotAvailable, err),
			map[string]any{"endpoint": r.Endpoint})
	}

	doc := &Document{Raw: raw}

	arn, cluster := extractECS(raw)
	if arn == "" {
		log.Warn("task ARN not found in metadata document", "bytes", len(raw))
		return doc, errors.Wrap(errors.ErrCodeMetadataUnavailable,
			"task ARN not found in metadata document", ErrNotAvailable)
	}

	doc.Identity = TaskIdentity{
		ID:      taskIDFromARN(arn),
		Cluster: cluster,
	}

	log.Debug("resolved task identity",
		slog.String("task", doc.Identity.ID),
		slog.String("cluster", doc.Identity.Cluster))

	return doc, nil
}

func (r *ECSResolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

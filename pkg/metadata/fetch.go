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
	"io"
	"net"
	"net/http"
	"time"

	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
)

const userAgent = "sigcap/1.0"

// Fetcher retrieves a document from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches documents over plain HTTP. The ECS metadata endpoint is
// link-local and unauthenticated, so no TLS or credentials are configured.
type HTTPFetcher struct {
	Client  *http.Client
	MaxSize int64
}

// NewHTTPFetcher returns a fetcher with short connect and header timeouts.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: defaults.MetadataFetchTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   defaults.HTTPConnectTimeout,
					KeepAlive: defaults.HTTPKeepAlive,
				}).DialContext,
				ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
				MaxIdleConns:          1,
				IdleConnTimeout:       10 * time.Second,
			},
		},
		MaxSize: defaults.MetadataMaxSize,
	}
}

// Fetch performs a single GET request and returns the response body.
// Non-2xx responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("url is empty")
	}
	if f.Client == nil {
		return nil, fmt.Errorf("http client is nil")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status fetching %s: %s", url, resp.Status)
	}

	limit := f.MaxSize
	if limit <= 0 {
		limit = defaults.MetadataMaxSize
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	return body, nil
}

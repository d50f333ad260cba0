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

package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func testConfig() *Config {
	cfg := parseConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = 0
	cfg.ShutdownTimeout = time.Second
	cfg.ExitWait = 100 * time.Millisecond
	return cfg
}

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "")
		cfg := parseConfig()

		if cfg.Port != 8080 {
			t.Errorf("expected port 8080, got %d", cfg.Port)
		}
		if cfg.RateLimit != 100 || cfg.RateLimitBurst != 200 {
			t.Errorf("unexpected rate limit %v/%d", cfg.RateLimit, cfg.RateLimitBurst)
		}
		if cfg.ExitWait <= cfg.ShutdownTimeout {
			t.Errorf("exit wait %v should cover the grace period", cfg.ExitWait)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "7")
		cfg := parseConfig()

		if cfg.Port != 9090 {
			t.Errorf("expected port 9090 from env, got %d", cfg.Port)
		}
		if cfg.ShutdownTimeout != 7*time.Second {
			t.Errorf("expected shutdown timeout 7s, got %v", cfg.ShutdownTimeout)
		}
	})

	t.Run("invalid values use defaults", func(t *testing.T) {
		t.Setenv("PORT", "invalid")
		t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "-3")
		cfg := parseConfig()

		if cfg.Port != 8080 {
			t.Errorf("expected default port, got %d", cfg.Port)
		}
		if cfg.ShutdownTimeout <= 0 {
			t.Errorf("expected positive shutdown timeout, got %v", cfg.ShutdownTimeout)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	s := New(WithConfig(testConfig()))

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}

	w = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", w.Code)
	}
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*Server)
		wantStatus int
		wantBody   string
		wantReason string
	}{
		{
			name:       "initializing",
			setup:      func(*Server) {},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "not_ready",
			wantReason: "service is initializing",
		},
		{
			name:       "ready",
			setup:      func(s *Server) { s.SetReady(true) },
			wantStatus: http.StatusOK,
			wantBody:   "ready",
		},
		{
			name:       "shutting down",
			setup:      func(s *Server) { s.SetReady(true); s.SetReady(false) },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "not_ready",
			wantReason: "shutting down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithConfig(testConfig()))
			tt.setup(s)

			w := httptest.NewRecorder()
			s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var resp HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("expected status %q, got %q", tt.wantBody, resp.Status)
			}
			if resp.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, resp.Reason)
			}
		})
	}
}

func TestServe_KeepsNotReadyAfterShutdownStarted(t *testing.T) {
	s := New(WithConfig(testConfig()))
	s.SetReady(false)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after shutdown started, got %d", resp.StatusCode)
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("serve returned %v", err)
	}
}

func TestDefaultAndMetricsEndpoints(t *testing.T) {
	s := New(WithConfig(testConfig()), WithHandler("/v1/shutdown", okHandler))

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "GET /v1/shutdown") {
		t.Errorf("expected custom route listed, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	// exercise the middleware so the HTTP series exist
	w = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/shutdown", nil))

	w = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "sigcap_http_requests_total") {
		t.Error("expected sigcap_http_requests_total in metrics output")
	}
}

type chanLifecycle chan struct{}

func (c chanLifecycle) Done() <-chan struct{} { return c }

func TestRun_DrainsAfterLifecycleExit(t *testing.T) {
	lc := make(chanLifecycle)
	s := New(WithConfig(testConfig()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(context.Background(), lc) }()

	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-errCh:
		t.Fatalf("server stopped before lifecycle exit: %v", err)
	default:
	}

	close(lc)
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after lifecycle exit")
	}

	if ready, _ := s.readiness(); ready {
		t.Error("expected server to be not ready after shutdown")
	}
}

func TestRun_ContextCancelWaitsBounded(t *testing.T) {
	lc := make(chanLifecycle) // never closes
	cfg := testConfig()
	s := New(WithConfig(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, lc) }()

	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if waited := time.Since(start); waited < cfg.ExitWait {
			t.Errorf("expected to wait at least %v for the sequence, waited %v", cfg.ExitWait, waited)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after exit wait")
	}
}

func TestRun_ListenError(t *testing.T) {
	cfg := testConfig()
	cfg.Address = "256.0.0.1"
	if err := RunWithConfig(context.Background(), cfg, make(chanLifecycle)); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s := New(WithConfig(testConfig()))

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{"generates when missing", "", false},
		{"keeps valid uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"replaces invalid", "not-a-valid-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}
			w := httptest.NewRecorder()
			h(w, req)

			if _, err := uuid.Parse(seen); err != nil {
				t.Errorf("expected valid UUID, got %q", seen)
			}
			if w.Header().Get("X-Request-Id") != seen {
				t.Errorf("header %q does not match context %q", w.Header().Get("X-Request-Id"), seen)
			}
			if tt.wantSame != (seen == tt.header) {
				t.Errorf("unexpected request ID %q for header %q", seen, tt.header)
			}
		})
	}
}

func TestRateLimiting(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	cfg.RateLimitBurst = 1
	s := New(WithConfig(cfg))

	h := s.withMiddleware(okHandler)

	w1 := httptest.NewRecorder()
	h(w1, httptest.NewRequest(http.MethodGet, "/test", nil))
	if w1.Code != http.StatusOK {
		t.Errorf("expected first request to succeed, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	h(w2, httptest.NewRequest(http.MethodGet, "/test", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header to be set")
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Code != ErrCodeRateLimitExceeded || !resp.Retryable || resp.RequestID == "" {
		t.Errorf("unexpected error response %+v", resp)
	}
}

func TestPanicRecovery(t *testing.T) {
	s := New(WithConfig(testConfig()))
	h := s.withMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d after panic recovery, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := newStatusRecorder(w)

	rec.WriteHeader(http.StatusAccepted)
	rec.WriteHeader(http.StatusTeapot)
	_, _ = rec.Write([]byte("x"))

	if rec.status != http.StatusAccepted {
		t.Errorf("expected first status to stick, got %d", rec.status)
	}
	if w.Code != http.StatusAccepted {
		t.Errorf("expected underlying status %d, got %d", http.StatusAccepted, w.Code)
	}
}

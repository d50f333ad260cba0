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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Lifecycle is the shutdown sequence the server waits for before draining.
// *shutdown.Coordinator implements it.
type Lifecycle interface {
	Done() <-chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithHandler adds a route served through the middleware chain.
func WithHandler(path string, h http.HandlerFunc) Option {
	return func(s *Server) {
		if s.config.Handlers == nil {
			s.config.Handlers = make(map[string]http.HandlerFunc)
		}
		s.config.Handlers[path] = h
	}
}

// Server is the HTTP workload: probes, metrics and optional handlers.
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter

	mu          sync.RWMutex
	ready       bool
	readyReason string
}

const initializingReason = "service is initializing"

// New builds a server. It is not ready until Serve or SetReady(true).
func New(opts ...Option) *Server {
	s := &Server{
		config:      NewConfig(),
		readyReason: initializingReason,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rateLimiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler:           s.setupRoutes(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// System endpoints (no rate limiting)
	mux.HandleFunc("/", s.handleDefault)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	for path, h := range s.config.Handlers {
		mux.HandleFunc(path, s.withMiddleware(h))
	}

	return mux
}

// SetReady sets the readiness probe result.
func (s *Server) SetReady(ready bool) {
	reason := ""
	if !ready {
		reason = "shutting down"
	}
	s.setReady(ready, reason)
}

func (s *Server) setReady(ready bool, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
	s.readyReason = reason
}

func (s *Server) readiness() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready, s.readyReason
}

// Serve serves on l until Shutdown. A server still initializing becomes
// ready; one already marked not ready stays that way.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.readyReason == initializingReason {
		s.ready = true
		s.readyReason = ""
	}
	s.mu.Unlock()
	slog.Info("http server listening", "address", l.Addr().String())

	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown marks the server not ready and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("draining http server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// RunWithConfig serves until the lifecycle reaches Exited, then drains.
//
// The server keeps answering while the shutdown sequence runs; readiness is
// expected to be flipped by the sequence itself. When ctx is cancelled first,
// the server waits at most ExitWait for the sequence before draining. With a
// nil lifecycle the server stops on SIGINT or SIGTERM.
func RunWithConfig(ctx context.Context, cfg *Config, lc Lifecycle, opts ...Option) error {
	s := New(append([]Option{WithConfig(cfg)}, opts...)...)
	return s.Run(ctx, lc)
}

// Run is RunWithConfig for an already built server.
func (s *Server) Run(ctx context.Context, lc Lifecycle) error {
	slog.Info("starting server",
		"name", s.config.Name,
		"version", s.config.Version,
		"address", s.httpServer.Addr,
		"rateLimit", s.config.RateLimit,
		"shutdownTimeout", s.config.ShutdownTimeout.String())

	if lc == nil {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		lc = contextLifecycle{ctx}
	}

	l, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Serve(l)
	})

	g.Go(func() error {
		select {
		case <-lc.Done():
		case <-gctx.Done():
			// a cancelled parent usually means a termination is in progress
			if ctx.Err() != nil {
				s.awaitExit(lc)
			}
		}
		return s.Shutdown(context.WithoutCancel(ctx))
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// awaitExit gives a running shutdown sequence a bounded chance to finish.
func (s *Server) awaitExit(lc Lifecycle) {
	timer := time.NewTimer(s.config.ExitWait)
	defer timer.Stop()

	select {
	case <-lc.Done():
	case <-timer.C:
		slog.Warn("shutdown sequence still running, draining anyway",
			"wait", s.config.ExitWait.String())
	}
}

type contextLifecycle struct {
	ctx context.Context
}

func (c contextLifecycle) Done() <-chan struct{} {
	return c.ctx.Done()
}

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

package shutdown

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/NVIDIA/sigterm-capture/pkg/classifier"
	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
	"github.com/NVIDIA/sigterm-capture/pkg/errors"
	"github.com/NVIDIA/sigterm-capture/pkg/pipeline"
)

// Runner executes the two pipeline phases. *pipeline.Pipeline implements it.
type Runner interface {
	Classify(ctx context.Context) *pipeline.Report
	Capture(ctx context.Context, r *pipeline.Report)
}

// Hook runs when the termination notice arrives, before classification.
// A typical hook flips the HTTP readiness probe.
type Hook func(ctx context.Context)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithGracePeriod bounds the whole termination sequence.
func WithGracePeriod(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.grace = d
		}
	}
}

// WithNotifyHook adds a hook run in the Notified state, in registration order.
func WithNotifyHook(h Hook) Option {
	return func(c *Coordinator) {
		if h != nil {
			c.hooks = append(c.hooks, h)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// Coordinator runs the shutdown pipeline exactly once per process.
type Coordinator struct {
	runner Runner
	grace  time.Duration
	hooks  []Hook
	logger *slog.Logger

	once       sync.Once
	signalOnce sync.Once
	done       chan struct{}

	mu     sync.RWMutex
	state  State
	report *pipeline.Report
}

// NewCoordinator returns a Coordinator in the Running state.
func NewCoordinator(r Runner, opts ...Option) *Coordinator {
	c := &Coordinator{
		runner: r,
		grace:  defaults.ShutdownGracePeriod,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify starts the termination sequence and blocks until it finishes.
// Only the first call runs the pipeline; concurrent and later calls wait
// for it and return the same report.
func (c *Coordinator) Notify(ctx context.Context) *pipeline.Report {
	c.once.Do(func() {
		c.run(ctx)
	})
	<-c.done
	return c.Report()
}

// Done is closed once the coordinator reaches Exited.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until Exited or the timeout elapses.
func (c *Coordinator) Wait(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.done:
		return nil
	case <-timer.C:
		return errors.NewWithContext(errors.ErrCodeTimeout, "shutdown sequence did not finish in time",
			map[string]any{"timeout": timeout.String(), "state": c.State().String()})
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Report returns the event report, or nil before Exited.
func (c *Coordinator) Report() *pipeline.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != Exited {
		return nil
	}
	return c.report
}

// HandleSignals registers for SIGTERM and SIGINT once. The first signal
// runs Notify on the goroutine that received it; later signals are
// ignored. Cancelling ctx before a signal arrives stops listening, and a
// run already in progress is not interrupted by it.
func (c *Coordinator) HandleSignals(ctx context.Context) {
	c.signalOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)

		go func() {
			select {
			case sig := <-ch:
				c.logger.Info("termination signal received", "signal", sig.String())
				c.Notify(context.WithoutCancel(ctx))
			case <-ctx.Done():
				signal.Stop(ch)
			}
		}()
	})
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()

	transitions.WithLabelValues(s.String()).Inc()
	c.logger.Debug("shutdown state changed", "from", prev.String(), "to", s.String())
}

func (c *Coordinator) run(parent context.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, c.grace)

	var report *pipeline.Report
	defer func() {
		cancel()
		if report == nil {
			report = &pipeline.Report{Verdict: classifier.Indeterminate, Started: start.UTC()}
		}
		if report.Finished.IsZero() {
			report.Finished = time.Now().UTC()
		}

		c.mu.Lock()
		c.report = report
		c.mu.Unlock()

		c.setState(Draining)
		sequenceDuration.Observe(time.Since(start).Seconds())
		c.logger.Info("shutdown sequence complete",
			"event", report.EventID,
			"verdict", report.Verdict.String(),
			"artifacts", len(report.Artifacts),
			"duration", time.Since(start).String())

		c.setState(Exited)
		close(c.done)
	}()

	c.setState(Notified)
	for i, h := range c.hooks {
		c.safely(fmt.Sprintf("notify hook %d", i), func() { h(ctx) })
	}

	if c.runner == nil {
		c.logger.Warn("no shutdown pipeline configured")
		return
	}

	c.setState(Classifying)
	c.safely("classify", func() { report = c.runner.Classify(ctx) })
	if report == nil || !report.Verdict.ShouldCapture() {
		return
	}

	c.setState(Capturing)
	c.safely("capture", func() { c.runner.Capture(ctx, report) })
}

// safely keeps a panicking step from stopping the sequence before Exited.
func (c *Coordinator) safely(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("shutdown step panicked",
				"step", step,
				"code", errors.ErrCodeInternal,
				"panic", fmt.Sprintf("%v", r))
		}
	}()
	fn()
}

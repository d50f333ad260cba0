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
	"context"
	"log/slog"
	"time"

	"github.com/NVIDIA/sigterm-capture/pkg/controlplane"
	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
	"github.com/NVIDIA/sigterm-capture/pkg/errors"
	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
)

// Result is the classification outcome for one shutdown event.
type Result struct {
	Verdict Verdict
	// StopReason is the reason reported by the control plane, if any.
	StopReason string
	// Err is set when the verdict is Indeterminate because of a fault.
	Err error
}

// Classifier decides whether a stopping task is failing.
type Classifier struct {
	Describer controlplane.Describer
	Rules     *Rules
	// PollInterval and Timeout bound the wait on the describe request.
	PollInterval time.Duration
	Timeout      time.Duration
	Logger       *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTimeout overrides the describe timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		c.Timeout = d
	}
}

// WithPollInterval overrides how often the in-flight request is checked.
func WithPollInterval(d time.Duration) Option {
	return func(c *Classifier) {
		c.PollInterval = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		c.Logger = l
	}
}

// New returns a Classifier for the given backend and rule set.
func New(d controlplane.Describer, rules *Rules, opts ...Option) *Classifier {
	c := &Classifier{
		Describer:    d,
		Rules:        rules,
		PollInterval: defaults.ControlPlanePollInterval,
		Timeout:      defaults.ControlPlaneTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Classify queries the control plane once for the task and evaluates its
// stop reason. It never returns an error: faults and timeouts are reported
// as Indeterminate with Result.Err set.
func (c *Classifier) Classify(ctx context.Context, identity metadata.TaskIdentity) Result {
	log := c.logger().With("task", identity.ID, "cluster", identity.Cluster)

	if !identity.Complete() {
		err := errors.NewWithContext(errors.ErrCodeInvalidRequest, "task identity is incomplete",
			map[string]any{"task": identity.ID, "cluster": identity.Cluster})
		log.Warn("cannot classify task", "error", err)
		return Result{Verdict: Indeterminate, Err: err}
	}
	if c.Describer == nil {
		err := errors.New(errors.ErrCodeInternal, "no control plane describer configured")
		log.Warn("cannot classify task", "error", err)
		return Result{Verdict: Indeterminate, Err: err}
	}

	call := controlplane.Start(ctx, c.Describer, identity)
	tasks, err := call.Await(ctx, c.interval(), c.timeout())
	if err != nil {
		log.Warn("control plane query did not complete",
			"code", errors.CodeOf(err),
			"error", err)
		return Result{Verdict: Indeterminate, Err: err}
	}

	if len(tasks) == 0 {
		log.Info("control plane has no record of task, treating stop as expected")
		return Result{Verdict: Expected}
	}

	reason := tasks[0].StopReason
	if c.Rules.Matches(reason) {
		log.Info("task stop reason recognized", "reason", reason)
		return Result{Verdict: Expected, StopReason: reason}
	}

	log.Warn("task stop reason not recognized", "reason", reason, "lastStatus", tasks[0].LastStatus)
	return Result{Verdict: Failure, StopReason: reason}
}

func (c *Classifier) interval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaults.ControlPlanePollInterval
}

func (c *Classifier) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaults.ControlPlaneTimeout
}

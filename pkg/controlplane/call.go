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

package controlplane

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
)

// CallState is the completion state of an in-flight describe call.
type CallState int

const (
	// CallPending means the request has not finished yet.
	CallPending CallState = iota
	// CallCompleted means the request returned a result.
	CallCompleted
	// CallFaulted means the request returned an error.
	CallFaulted
)

// String implements fmt.Stringer.
func (s CallState) String() string {
	switch s {
	case CallPending:
		return "pending"
	case CallCompleted:
		return "completed"
	case CallFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Call is a describe request running in the background.
type Call struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state CallState
	tasks []Task
	err   error
}

// Start issues the describe request asynchronously and returns immediately.
// The request is bound to ctx; Cancel aborts it early.
func Start(ctx context.Context, d Describer, identity metadata.TaskIdentity) *Call {
	callCtx, cancel := context.WithCancel(ctx)
	c := &Call{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		start := time.Now()
		tasks, err := d.Describe(callCtx, identity)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.state = CallFaulted
			c.err = err
			describeDuration.WithLabelValues("fault").Observe(time.Since(start).Seconds())
			return
		}
		c.state = CallCompleted
		c.tasks = tasks
		describeDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	}()

	return c
}

// State returns the current completion state without blocking.
func (c *Call) State() CallState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the tasks and error. Only meaningful once State is not CallPending.
func (c *Call) Result() ([]Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks, c.err
}

// Cancel aborts the request if it is still running.
func (c *Call) Cancel() {
	c.cancel()
}

// Done is closed once the request has finished.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Await checks the call's completion state every interval until it completes,
// faults, or timeout elapses. On timeout the call is cancelled and an
// ErrCodeTimeout error is returned; a fault is returned as ErrCodeControlPlaneFault.
func (c *Call) Await(ctx context.Context, interval, timeout time.Duration) ([]Task, error) {
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true,
		func(context.Context) (bool, error) {
			switch c.State() {
			case CallCompleted:
				return true, nil
			case CallFaulted:
				_, err := c.Result()
				return false, err
			default:
				return false, nil
			}
		},
	)

	if err == nil {
		tasks, _ := c.Result()
		return tasks, nil
	}

	if c.State() == CallFaulted {
		return nil, errors.Wrap(errors.ErrCodeControlPlaneFault, "describe task failed", err)
	}

	c.Cancel()
	if stderrors.Is(err, context.DeadlineExceeded) {
		return nil, errors.WrapWithContext(errors.ErrCodeTimeout, "describe task did not complete in time", err,
			map[string]any{"timeout": timeout.String()})
	}
	return nil, errors.Wrap(errors.ErrCodeControlPlaneFault, "describe task wait aborted", err)
}

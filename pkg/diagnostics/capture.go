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

package diagnostics

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"k8s.io/utils/exec"

	"github.com/NVIDIA/sigterm-capture/pkg/artifact"
	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

// DefaultShell runs each command line.
const DefaultShell = "/bin/bash"

// Capturer runs diagnostic commands and returns their output as artifacts.
type Capturer struct {
	Commands []Command
	Shell    string
	Timeout  time.Duration
	Exec     exec.Interface
	Logger   *slog.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithShell sets the shell used as "<shell> -c <command>".
func WithShell(shell string) Option {
	return func(c *Capturer) {
		if shell != "" {
			c.Shell = shell
		}
	}
}

// WithCommandTimeout sets the per-command time limit.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Capturer) {
		c.Timeout = d
	}
}

// WithExec replaces the process runner.
func WithExec(e exec.Interface) Option {
	return func(c *Capturer) {
		c.Exec = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Capturer) {
		c.Logger = l
	}
}

// NewCapturer returns a Capturer for cmds, or DefaultCommands when cmds is empty.
func NewCapturer(cmds []Command, opts ...Option) *Capturer {
	if len(cmds) == 0 {
		cmds = DefaultCommands()
	}
	c := &Capturer{
		Commands: cmds,
		Shell:    DefaultShell,
		Timeout:  defaults.DiagnosticCommandTimeout,
		Exec:     exec.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture runs every command in order. A command that cannot be started is
// logged and skipped. A command that exits non-zero still yields an
// artifact holding whatever it wrote to stdout.
func (c *Capturer) Capture(ctx context.Context) []artifact.Artifact {
	log := c.logger()
	out := make([]artifact.Artifact, 0, len(c.Commands))

	for _, cmd := range c.Commands {
		if ctx.Err() != nil {
			log.Warn("diagnostic capture cancelled", "remaining", cmd.Name, "error", ctx.Err())
			break
		}

		content, err := c.run(ctx, cmd)
		if err != nil && content == nil {
			log.Error("diagnostic command failed to start",
				"name", cmd.Name,
				"code", errors.CodeOf(err),
				"error", err)
			continue
		}
		if err != nil {
			log.Warn("diagnostic command exited with error",
				"name", cmd.Name,
				"bytes", len(content),
				"error", err)
		} else {
			log.Debug("diagnostic command captured", "name", cmd.Name, "bytes", len(content))
		}

		out = append(out, artifact.Artifact{Name: cmd.Name, Content: content})
	}

	return out
}

// run returns nil content only when the process could not be started.
func (c *Capturer) run(ctx context.Context, cmd Command) ([]byte, error) {
	cmdCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	output, err := c.Exec.CommandContext(cmdCtx, c.shell(), "-c", cmd.Command).Output()
	if err == nil {
		if output == nil {
			output = []byte{}
		}
		return output, nil
	}

	ectx := map[string]any{"name": cmd.Name, "command": cmd.Command}

	var exitErr exec.ExitError
	if stderrors.As(err, &exitErr) {
		ectx["exitStatus"] = exitErr.ExitStatus()
		if output == nil {
			output = []byte{}
		}
		if stderrors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return output, errors.WrapWithContext(errors.ErrCodeTimeout, "diagnostic command timed out", err, ectx)
		}
		return output, errors.WrapWithContext(errors.ErrCodeCommandExecution, "diagnostic command exited non-zero", err, ectx)
	}

	return nil, errors.WrapWithContext(errors.ErrCodeCommandExecution, "failed to run diagnostic command", err, ectx)
}

func (c *Capturer) shell() string {
	if c.Shell != "" {
		return c.Shell
	}
	return DefaultShell
}

func (c *Capturer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

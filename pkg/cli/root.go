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


package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/sigterm-capture/pkg/config"
	"github.com/NVIDIA/sigterm-capture/pkg/logging"
)

const (
	name           = "sigcap"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute builds the root command and runs it with os.Args.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		EnableShellCompletion: true,
		Usage:                 "Capture diagnostics when a container is terminated unexpectedly",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Description: `sigcap runs next to a workload and handles SIGTERM. On termination it resolves
the task identity from the ECS metadata endpoint (or the pod downward API),
asks the control plane why the task is stopping, and captures diagnostic
command output when the stop was not an expected scale-in or eviction.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars(config.EnvLogLevel),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "shorthand for --log-level=debug",
			},
		},
		Before: initLogger,
		Commands: []*cli.Command{
			serveCmd(),
			inspectCmd(),
		},
	}
}

// initLogger configures slog once flags are parsed so --log-level takes
// effect before any command executes.
func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := cmd.String("log-level")
	if cmd.Bool("debug") {
		level = "debug"
	}

	logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", level)

	return ctx, nil
}

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
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/sigterm-capture/pkg/serializer"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Run the termination hook once and print the report",
		Description: `Resolves the task identity, classifies the current stop reason and, when the
verdict calls for it, runs the diagnostic commands. Nothing is written unless
--persist is set, which makes it safe to run against a healthy task.

# Examples

  sigcap inspect --format json
  sigcap inspect --persist --artifact-dir /tmp/sigcap`,
		Flags: append(append(hookFlags(),
			&cli.BoolFlag{
				Name:  "persist",
				Usage: "write artifacts to the configured stores",
			}),
			outputFlags()...,
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			p, err := buildPipeline(ctx, cfg, !cmd.Bool("persist"))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, cfg.GracePeriod)
			defer cancel()

			report := p.Run(ctx)

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				if closeErr := ser.Close(); closeErr != nil {
					fmt.Fprintf(os.Stderr, "failed to close output: %v\n", closeErr)
				}
			}()

			return ser.Serialize(ctx, report)
		},
	}
}

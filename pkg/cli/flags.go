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
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/sigterm-capture/pkg/config"
	"github.com/NVIDIA/sigterm-capture/pkg/serializer"
)

// outputFlags returns --output and --format for commands printing a report.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file path (default: stdout)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"t"},
			Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
			Value:   string(serializer.FormatYAML),
		},
	}
}

// hookFlags returns the flags shared by serve and inspect. Each one
// overrides the matching environment-derived config field when set.
func hookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "control-plane",
			Usage:   "describe-task backend (ecs, kubernetes)",
			Sources: cli.EnvVars(config.EnvControlPlane),
		},
		&cli.StringFlag{
			Name:  "metadata-endpoint",
			Usage: "ECS task metadata URI (default: $ECS_CONTAINER_METADATA_URI_V4)",
		},
		&cli.StringFlag{
			Name:    "host-id",
			Usage:   "identifier used in artifact names (default: hostname)",
			Sources: cli.EnvVars(config.EnvHostname),
		},
		&cli.StringFlag{
			Name:    "artifact-dir",
			Usage:   "directory receiving artifacts",
			Sources: cli.EnvVars(config.EnvArtifactDir),
		},
		&cli.StringSliceFlag{
			Name:  "expected-reason",
			Usage: "stop reason fragment treated as expected (can be repeated)",
		},
		&cli.StringFlag{
			Name:    "commands-file",
			Usage:   "YAML file replacing the default diagnostic commands",
			Sources: cli.EnvVars(config.EnvDiagnosticCommandsFile),
		},
		&cli.StringFlag{
			Name:    "shell",
			Usage:   "shell used to run diagnostic commands",
			Sources: cli.EnvVars(config.EnvShell),
		},
		&cli.DurationFlag{
			Name:  "command-timeout",
			Usage: "time limit for each diagnostic command",
		},
		&cli.DurationFlag{
			Name:  "grace-period",
			Usage: "budget for the whole termination sequence",
		},
		&cli.StringFlag{
			Name:    "s3-bucket",
			Usage:   "mirror artifacts to this S3 bucket",
			Sources: cli.EnvVars(config.EnvS3Bucket),
		},
		&cli.StringFlag{
			Name:    "s3-prefix",
			Usage:   "key prefix for mirrored artifacts",
			Sources: cli.EnvVars(config.EnvS3Prefix),
		},
		&cli.StringFlag{
			Name:    "configmap",
			Usage:   "mirror artifacts to a ConfigMap (cm://namespace/name)",
			Sources: cli.EnvVars(config.EnvArtifactConfigMap),
		},
		&cli.StringFlag{
			Name:    "kubeconfig",
			Aliases: []string{"k"},
			Usage:   "path to kubeconfig (in-cluster config when empty)",
			Sources: cli.EnvVars(config.EnvKubeconfig),
		},
	}
}

// loadConfig reads the environment, applies flag overrides and validates.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.New()
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cli.Command, cfg *config.Config) {
	setString := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}

	if cmd.IsSet("control-plane") {
		cfg.ControlPlane = strings.ToLower(strings.TrimSpace(cmd.String("control-plane")))
	}
	setString("metadata-endpoint", &cfg.MetadataEndpoint)
	setString("host-id", &cfg.HostID)
	setString("artifact-dir", &cfg.ArtifactDir)
	setString("commands-file", &cfg.DiagnosticCommandsFile)
	setString("shell", &cfg.Shell)
	setString("s3-bucket", &cfg.S3Bucket)
	setString("s3-prefix", &cfg.S3Prefix)
	setString("configmap", &cfg.ArtifactConfigMap)
	setString("kubeconfig", &cfg.Kubeconfig)

	if cmd.IsSet("expected-reason") {
		cfg.ExpectedStopReasons = append(cfg.ExpectedStopReasons, cmd.StringSlice("expected-reason")...)
	}
	if cmd.IsSet("command-timeout") {
		cfg.CommandTimeout = cmd.Duration("command-timeout")
	}
	if cmd.IsSet("grace-period") {
		cfg.GracePeriod = cmd.Duration("grace-period")
	}
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(strings.TrimSpace(cmd.String("format"))))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", cmd.String("format"))
	}
	return f, nil
}

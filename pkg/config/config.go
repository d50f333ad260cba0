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

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

// Control plane backends.
const (
	ControlPlaneECS        = "ecs"
	ControlPlaneKubernetes = "kubernetes"
)

// Environment variables read by New.
const (
	EnvMetadataURIV4          = "ECS_CONTAINER_METADATA_URI_V4"
	EnvMetadataURI            = "ECS_CONTAINER_METADATA_URI"
	EnvHostname               = "HOSTNAME"
	EnvArtifactDir            = "ARTIFACT_DIR"
	EnvControlPlane           = "CONTROL_PLANE"
	EnvExpectedStopReasons    = "EXPECTED_STOP_REASONS"
	EnvDiagnosticCommandsFile = "DIAGNOSTIC_COMMANDS_FILE"
	EnvShell                  = "DIAGNOSTIC_SHELL"
	EnvCommandTimeoutSeconds  = "DIAGNOSTIC_COMMAND_TIMEOUT_SECONDS"
	EnvGraceSeconds           = "SHUTDOWN_GRACE_SECONDS"
	EnvS3Bucket               = "ARTIFACT_S3_BUCKET"
	EnvS3Prefix               = "ARTIFACT_S3_PREFIX"
	EnvArtifactConfigMap      = "ARTIFACT_CONFIGMAP"
	EnvS3Region               = "ARTIFACT_S3_REGION"
	EnvS3Endpoint             = "ARTIFACT_S3_ENDPOINT"
	EnvS3AccessKeyID          = "ARTIFACT_S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey      = "ARTIFACT_S3_SECRET_ACCESS_KEY"
	EnvKubeconfig             = "KUBECONFIG"
	EnvPodName                = "POD_NAME"
	EnvPodNamespace           = "POD_NAMESPACE"
	EnvPort                   = "PORT"
	EnvLogLevel               = "LOG_LEVEL"
)

const (
	defaultArtifactDir = "/data"
	defaultShell       = "/bin/bash"
	defaultPort        = 8080
	defaultS3Prefix    = "sigcap"
)

// Config holds every setting of the termination hook. It is resolved once at
// startup and passed explicitly to each component.
type Config struct {
	// ControlPlane selects the describe-task backend: "ecs" or "kubernetes".
	ControlPlane string

	// MetadataEndpoint is the ECS task metadata URI. Empty outside ECS.
	MetadataEndpoint string

	// PodName and PodNamespace identify the task on Kubernetes (downward API).
	PodName      string
	PodNamespace string

	// Kubeconfig is an optional kubeconfig path; in-cluster config is used when empty.
	Kubeconfig string

	// HostID names artifacts on disk; defaults to the container hostname.
	HostID string

	// ArtifactDir is the externally mounted directory receiving artifacts.
	ArtifactDir string

	// S3Bucket enables mirroring artifacts to S3 when set.
	S3Bucket string
	S3Prefix string
	// ArtifactConfigMap mirrors artifacts into a ConfigMap ("namespace/name").
	ArtifactConfigMap string

	// S3Region and S3Endpoint override the SDK defaults, e.g. for MinIO.
	S3Region   string
	S3Endpoint string
	// Static S3 credentials; the default AWS credential chain is used when empty.
	S3AccessKeyID     string
	S3SecretAccessKey string

	// ExpectedStopReasons are appended to the backend's built-in expected reasons.
	ExpectedStopReasons []string

	// DiagnosticCommandsFile optionally replaces the default command list.
	DiagnosticCommandsFile string

	// Shell runs each diagnostic command as `<Shell> -c <command>`.
	Shell string

	// CommandTimeout bounds each diagnostic command.
	CommandTimeout time.Duration

	// GracePeriod bounds the whole termination sequence.
	GracePeriod time.Duration

	// Port is the HTTP workload port.
	Port int

	// LogLevel is the slog level name.
	LogLevel string
}

// New returns a Config populated from the environment.
func New() *Config {
	cfg := &Config{
		ControlPlane:   ControlPlaneECS,
		ArtifactDir:    defaultArtifactDir,
		S3Prefix:       defaultS3Prefix,
		Shell:          defaultShell,
		CommandTimeout: defaults.DiagnosticCommandTimeout,
		GracePeriod:    defaults.ShutdownGracePeriod,
		Port:           defaultPort,
		LogLevel:       "info",
	}

	if v := os.Getenv(EnvControlPlane); v != "" {
		cfg.ControlPlane = strings.ToLower(strings.TrimSpace(v))
	}

	// v4 is preferred; the v3 endpoint serves the same container labels
	cfg.MetadataEndpoint = os.Getenv(EnvMetadataURIV4)
	if cfg.MetadataEndpoint == "" {
		cfg.MetadataEndpoint = os.Getenv(EnvMetadataURI)
	}

	cfg.PodName = os.Getenv(EnvPodName)
	cfg.PodNamespace = os.Getenv(EnvPodNamespace)
	cfg.Kubeconfig = os.Getenv(EnvKubeconfig)

	cfg.HostID = os.Getenv(EnvHostname)
	if cfg.HostID == "" {
		if h, err := os.Hostname(); err == nil {
			cfg.HostID = h
		}
	}

	if v := os.Getenv(EnvArtifactDir); v != "" {
		cfg.ArtifactDir = v
	}

	cfg.S3Bucket = os.Getenv(EnvS3Bucket)
	if v := os.Getenv(EnvS3Prefix); v != "" {
		cfg.S3Prefix = v
	}
	cfg.ArtifactConfigMap = os.Getenv(EnvArtifactConfigMap)
	cfg.S3Region = os.Getenv(EnvS3Region)
	cfg.S3Endpoint = os.Getenv(EnvS3Endpoint)
	cfg.S3AccessKeyID = os.Getenv(EnvS3AccessKeyID)
	cfg.S3SecretAccessKey = os.Getenv(EnvS3SecretAccessKey)

	cfg.ExpectedStopReasons = SplitList(os.Getenv(EnvExpectedStopReasons))
	cfg.DiagnosticCommandsFile = os.Getenv(EnvDiagnosticCommandsFile)

	if v := os.Getenv(EnvShell); v != "" {
		cfg.Shell = v
	}

	if v := os.Getenv(EnvCommandTimeoutSeconds); v != "" {
		var seconds int
		if _, err := fmt.Sscanf(v, "%d", &seconds); err == nil && seconds > 0 {
			cfg.CommandTimeout = time.Duration(seconds) * time.Second
		}
	}

	// Allow the budget to follow the task definition's stopTimeout
	if v := os.Getenv(EnvGraceSeconds); v != "" {
		var seconds int
		if _, err := fmt.Sscanf(v, "%d", &seconds); err == nil && seconds > 0 {
			cfg.GracePeriod = time.Duration(seconds) * time.Second
		}
	}

	if v := os.Getenv(EnvPort); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Port = port
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

// Validate reports settings that would make the hook misbehave.
func (c *Config) Validate() error {
	switch c.ControlPlane {
	case ControlPlaneECS, ControlPlaneKubernetes:
	default:
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "unsupported control plane",
			map[string]any{"controlPlane": c.ControlPlane})
	}
	if c.GracePeriod <= 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "grace period must be positive")
	}
	if c.CommandTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "diagnostic command timeout must be positive")
	}
	if c.ArtifactDir == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "artifact directory is required")
	}
	if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
		return errors.New(errors.ErrCodeInvalidRequest, "S3 access key id and secret must be set together")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "invalid port",
			map[string]any{"port": c.Port})
	}
	return nil
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

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
	"log/slog"

	"github.com/NVIDIA/sigterm-capture/pkg/artifact"
	"github.com/NVIDIA/sigterm-capture/pkg/classifier"
	"github.com/NVIDIA/sigterm-capture/pkg/config"
	"github.com/NVIDIA/sigterm-capture/pkg/controlplane"
	"github.com/NVIDIA/sigterm-capture/pkg/diagnostics"
	"github.com/NVIDIA/sigterm-capture/pkg/k8s/client"
	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
	"github.com/NVIDIA/sigterm-capture/pkg/pipeline"
)

// buildPipeline wires every component of the termination hook from cfg.
// Only configuration mistakes fail; an unreachable control plane degrades
// to an indeterminate verdict at shutdown time.
func buildPipeline(ctx context.Context, cfg *config.Config, dryRun bool) (*pipeline.Pipeline, error) {
	cmds := diagnostics.DefaultCommands()
	if cfg.DiagnosticCommandsFile != "" {
		loaded, err := diagnostics.LoadCommands(cfg.DiagnosticCommandsFile)
		if err != nil {
			return nil, err
		}
		cmds = loaded
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rules := classifier.DefaultECSRules()
	if cfg.ControlPlane == config.ControlPlaneKubernetes {
		rules = classifier.DefaultKubernetesRules()
	}
	rules.Add(cfg.ExpectedStopReasons...)

	slog.Info("termination hook configured",
		"controlPlane", cfg.ControlPlane,
		"host", cfg.HostID,
		"artifactDir", cfg.ArtifactDir,
		"expectedReasons", rules.Fragments(),
		"commands", len(cmds),
		"commandTimeout", cfg.CommandTimeout.String(),
		"gracePeriod", cfg.GracePeriod.String(),
		"dryRun", dryRun)

	return &pipeline.Pipeline{
		Resolver:   buildResolver(cfg),
		Classifier: classifier.New(buildDescriber(ctx, cfg), rules),
		Capturer:   buildCapturer(cmds, cfg),
		Store:      store,
		Host:       cfg.HostID,
		DryRun:     dryRun,
	}, nil
}

func buildCapturer(cmds []diagnostics.Command, cfg *config.Config) *diagnostics.Capturer {
	return diagnostics.NewCapturer(cmds,
		diagnostics.WithShell(cfg.Shell),
		diagnostics.WithCommandTimeout(cfg.CommandTimeout),
	)
}

func buildResolver(cfg *config.Config) metadata.Resolver {
	if cfg.ControlPlane == config.ControlPlaneKubernetes {
		return &metadata.PodResolver{Name: cfg.PodName, Namespace: cfg.PodNamespace}
	}
	return metadata.NewECSResolver(cfg.MetadataEndpoint)
}

// buildDescriber returns the backend for cfg.ControlPlane. When the client
// cannot be built the returned describer reports that error on every call.
func buildDescriber(ctx context.Context, cfg *config.Config) controlplane.Describer {
	var (
		d   controlplane.Describer
		err error
	)

	switch cfg.ControlPlane {
	case config.ControlPlaneKubernetes:
		d, err = controlplane.NewPodDescriber(cfg.Kubeconfig)
	default:
		d, err = controlplane.NewECSDescriber(ctx)
	}

	if err != nil {
		slog.Warn("control plane client unavailable, verdicts will be indeterminate",
			"controlPlane", cfg.ControlPlane, "error", err)
		return failingDescriber(err)
	}
	return d
}

func failingDescriber(err error) controlplane.DescriberFunc {
	return func(context.Context, metadata.TaskIdentity) ([]controlplane.Task, error) {
		return nil, err
	}
}

// buildStore returns the local file store plus any configured mirrors.
func buildStore(ctx context.Context, cfg *config.Config) (artifact.Store, error) {
	stores := []artifact.Store{artifact.NewFileStore(cfg.ArtifactDir, cfg.HostID)}

	if cfg.S3Bucket != "" {
		s3Client, err := artifact.NewS3Client(ctx, artifact.S3Options{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		stores = append(stores, &artifact.S3Store{
			Client: s3Client,
			Bucket: cfg.S3Bucket,
			Prefix: cfg.S3Prefix,
			Host:   cfg.HostID,
		})
	}

	if cfg.ArtifactConfigMap != "" {
		namespace, cmName, err := artifact.ParseConfigMapTarget(cfg.ArtifactConfigMap)
		if err != nil {
			return nil, err
		}
		cs, _, err := client.BuildKubeClient(cfg.Kubeconfig)
		if err != nil {
			return nil, err
		}
		stores = append(stores, &artifact.ConfigMapStore{
			Client:    cs,
			Namespace: namespace,
			Name:      cmName,
			Host:      cfg.HostID,
		})
	}

	if len(stores) == 1 {
		return stores[0], nil
	}
	return artifact.NewMultiStore(stores...), nil
}

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/sigterm-capture/pkg/config"
	"github.com/NVIDIA/sigterm-capture/pkg/serializer"
)

// runWithHookFlags parses args against the hook flags and returns the
// config after overrides.
func runWithHookFlags(t *testing.T, base *config.Config, args ...string) *config.Config {
	t.Helper()

	cmd := &cli.Command{
		Name:  "test",
		Flags: hookFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			applyFlags(c, base)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return base
}

func TestApplyFlags(t *testing.T) {
	t.Run("unset flags keep config values", func(t *testing.T) {
		base := &config.Config{
			MetadataEndpoint: "http://169.254.170.2/v4/abc",
			GracePeriod:      20 * time.Second,
		}
		got := runWithHookFlags(t, base)
		assert.Equal(t, "http://169.254.170.2/v4/abc", got.MetadataEndpoint)
		assert.Equal(t, 20*time.Second, got.GracePeriod)
	})

	t.Run("set flags override", func(t *testing.T) {
		base := &config.Config{ControlPlane: config.ControlPlaneECS}
		got := runWithHookFlags(t, base,
			"--control-plane", " Kubernetes ",
			"--metadata-endpoint", "http://localhost:9000",
			"--host-id", "web-1",
			"--artifact-dir", "/tmp/artifacts",
			"--grace-period", "12s",
			"--command-timeout", "1500ms",
			"--s3-bucket", "diag",
			"--configmap", "cm://ops/sigcap",
		)
		assert.Equal(t, config.ControlPlaneKubernetes, got.ControlPlane)
		assert.Equal(t, "http://localhost:9000", got.MetadataEndpoint)
		assert.Equal(t, "web-1", got.HostID)
		assert.Equal(t, "/tmp/artifacts", got.ArtifactDir)
		assert.Equal(t, 12*time.Second, got.GracePeriod)
		assert.Equal(t, 1500*time.Millisecond, got.CommandTimeout)
		assert.Equal(t, "diag", got.S3Bucket)
		assert.Equal(t, "cm://ops/sigcap", got.ArtifactConfigMap)
	})

	t.Run("expected reasons are appended", func(t *testing.T) {
		base := &config.Config{ExpectedStopReasons: []string{"Maintenance"}}
		got := runWithHookFlags(t, base,
			"--expected-reason", "Deployment",
			"--expected-reason", "Spot interruption",
		)
		assert.Equal(t, []string{"Maintenance", "Deployment", "Spot interruption"}, got.ExpectedStopReasons)
	})
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    serializer.Format
		wantErr bool
	}{
		{name: "default is yaml", want: serializer.FormatYAML},
		{name: "long flag", args: []string{"--format", "table"}, want: serializer.FormatTable},
		{name: "short alias", args: []string{"-t", "json"}, want: serializer.FormatJSON},
		{name: "mixed case and spaces", args: []string{"--format", " Yaml "}, want: serializer.FormatYAML},
		{name: "unsupported", args: []string{"-t", "xml"}, wantErr: true},
		{name: "explicitly empty", args: []string{"--format", ""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got    serializer.Format
				gotErr error
			)
			cmd := &cli.Command{
				Name:  "test",
				Flags: outputFlags(),
				Action: func(_ context.Context, c *cli.Command) error {
					got, gotErr = parseOutputFormat(c)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))

			if tt.wantErr {
				assert.Error(t, gotErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRootCmd(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, name, root.Name)

	var names []string
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"serve", "inspect"}, names)
}

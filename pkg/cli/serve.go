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
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/sigterm-capture/pkg/config"
	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
	"github.com/NVIDIA/sigterm-capture/pkg/pipeline"
	"github.com/NVIDIA/sigterm-capture/pkg/serializer"
	"github.com/NVIDIA/sigterm-capture/pkg/server"
	"github.com/NVIDIA/sigterm-capture/pkg/shutdown"
)

const shutdownStatusPath = "/v1/shutdown"

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the workload and run the termination hook on SIGTERM",
		Description: `Starts the HTTP workload (health, readiness, metrics) and waits for SIGTERM.

On the first SIGTERM the pod is marked not ready, the stop reason is
classified and, for unexpected stops, diagnostic command output is written
to the artifact directory. The server drains once the sequence completes.

# Examples

Run on ECS with the default settings:
  sigcap serve

Run as a Kubernetes sidecar, mirroring artifacts to a ConfigMap:
  sigcap serve --control-plane kubernetes --configmap cm://default/sigcap-artifacts`,
		Flags: append(hookFlags(),
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP port",
				Sources: cli.EnvVars(config.EnvPort),
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "classify and capture without writing artifacts",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("port") {
				cfg.Port = int(cmd.Int("port"))
			}

			p, err := buildPipeline(ctx, cfg, cmd.Bool("dry-run"))
			if err != nil {
				return err
			}

			srvCfg := server.NewConfig()
			srvCfg.Name = name
			srvCfg.Version = version
			srvCfg.Port = cfg.Port
			srvCfg.ExitWait = cfg.GracePeriod + defaults.ShutdownExitWait

			var srv *server.Server
			coord := shutdown.NewCoordinator(p,
				shutdown.WithGracePeriod(cfg.GracePeriod),
				shutdown.WithNotifyHook(func(context.Context) {
					srv.SetReady(false)
				}),
			)
			srv = server.New(
				server.WithConfig(srvCfg),
				server.WithHandler(shutdownStatusPath, shutdownStatusHandler(coord)),
			)

			coord.HandleSignals(ctx)
			return srv.Run(ctx, coord)
		},
	}
}

// ShutdownStatus is returned by the shutdown status endpoint.
type ShutdownStatus struct {
	State  string           `json:"state" yaml:"state"`
	Report *pipeline.Report `json:"report,omitempty" yaml:"report,omitempty"`
}

type shutdownObserver interface {
	State() shutdown.State
	Report() *pipeline.Report
}

func shutdownStatusHandler(o shutdownObserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			server.WriteError(w, r, http.StatusMethodNotAllowed, server.ErrCodeMethodNotAllowed,
				"method not allowed", false, nil)
			return
		}
		serializer.RespondJSON(w, http.StatusOK, ShutdownStatus{
			State:  o.State().String(),
			Report: o.Report(),
		})
	}
}

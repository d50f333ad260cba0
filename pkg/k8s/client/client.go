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

package client

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
)

// userAgent identifies sigcap requests in API server audit logs.
const userAgent = "sigcap"

// BuildKubeClient creates a Kubernetes client for the shutdown path.
//
// The kubeconfig is resolved in order:
//  1. the kubeconfig argument
//  2. the KUBECONFIG environment variable
//  3. ~/.kube/config, if it exists
//  4. in-cluster service account configuration
//
// Every request is bounded by defaults.ControlPlaneTimeout so a slow API
// server cannot hold the termination sequence open.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	path := resolveKubeconfig(kubeconfig)

	var config *rest.Config
	var err error

	// Use InClusterConfig directly when no kubeconfig is available
	if path == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", path, err)
		}
	}

	config.Timeout = defaults.ControlPlaneTimeout
	config.UserAgent = userAgent

	cs, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return cs, config, nil
}

// resolveKubeconfig returns the kubeconfig path to use, or "" for in-cluster.
func resolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

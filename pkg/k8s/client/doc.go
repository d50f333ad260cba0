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

// Package client builds the Kubernetes client used by the pod describer.
//
// The client automatically handles both in-cluster and out-of-cluster
// authentication. Inside a pod it uses the service account token mounted at
// /var/run/secrets/kubernetes.io/serviceaccount/; elsewhere it reads the
// kubeconfig from the explicit path, KUBECONFIG, or ~/.kube/config.
//
//	clientset, _, err := client.BuildKubeClient("")
//	if err != nil {
//	    return fmt.Errorf("failed to build kubernetes client: %w", err)
//	}
//	pod, err := clientset.CoreV1().Pods(ns).Get(ctx, name, metav1.GetOptions{})
//
// Requests carry a short timeout because the only caller runs inside the
// termination grace period.
package client

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

package controlplane

import (
	"context"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
	"github.com/NVIDIA/sigterm-capture/pkg/k8s/client"
	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
)

// ReasonPodDeleted is reported for a pod being deleted without a
// DisruptionTarget condition: rollouts, scale-down and manual deletes.
const ReasonPodDeleted = "PodDeleted"

// PodDescriber describes the current pod through the Kubernetes API.
// The service account needs get on pods in its namespace.
type PodDescriber struct {
	Client kubernetes.Interface
}

// NewPodDescriber builds a client from kubeconfig, or in-cluster config when empty.
func NewPodDescriber(kubeconfig string) (*PodDescriber, error) {
	cs, _, err := client.BuildKubeClient(kubeconfig)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeControlPlaneFault, "failed to build kubernetes client", err)
	}
	return &PodDescriber{Client: cs}, nil
}

// Describe returns the pod as a Task. A pod that no longer exists yields no tasks.
func (d *PodDescriber) Describe(ctx context.Context, identity metadata.TaskIdentity) ([]Task, error) {
	if d.Client == nil {
		return nil, errors.New(errors.ErrCodeInternal, "kubernetes client is nil")
	}

	pod, err := d.Client.CoreV1().Pods(identity.Cluster).Get(ctx, identity.ID, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return []Task{}, nil
		}
		return nil, errors.WrapWithContext(errors.ErrCodeControlPlaneFault, "failed to get pod", err,
			map[string]any{
				"namespace": identity.Cluster,
				"pod":       identity.ID,
				"forbidden": apierrors.IsForbidden(err),
			})
	}

	return []Task{{
		ID:         string(pod.UID),
		StopReason: podStopReason(pod),
		LastStatus: string(pod.Status.Phase),
	}}, nil
}

// podStopReason prefers the DisruptionTarget condition, which the control plane
// sets when it deliberately terminates a pod (eviction, preemption, taint
// manager). A pod with a deletion timestamp but no such condition was deleted
// through the API and reports ReasonPodDeleted. Otherwise the pod status
// reason is used; a container killed without deletion (failed liveness probe)
// has none.
func podStopReason(pod *corev1.Pod) string {
	for _, c := range pod.Status.Conditions {
		if c.Type == corev1.DisruptionTarget && c.Status == corev1.ConditionTrue {
			return joinReason(c.Reason, c.Message)
		}
	}
	if pod.DeletionTimestamp != nil {
		return joinReason(ReasonPodDeleted, "deletion requested")
	}
	return joinReason(pod.Status.Reason, pod.Status.Message)
}

func joinReason(reason, message string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{reason, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ": ")
}

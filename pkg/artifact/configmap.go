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

package artifact

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

// ConfigMapURIScheme prefixes a ConfigMap target, e.g. cm://monitoring/sigcap.
const ConfigMapURIScheme = "cm://"

const fieldManagerPrefix = "sigcap-"

// ConfigMapStore keeps artifacts as binary data keys of one ConfigMap,
// for pods without a mounted artifact volume. Each artifact is applied with
// its own field manager so server-side apply never prunes the others.
type ConfigMapStore struct {
	Client    kubernetes.Interface
	Namespace string
	Name      string
	Host      string
}

// Key returns the ConfigMap data key for an artifact name.
func (s *ConfigMapStore) Key(name string) string {
	return fmt.Sprintf("%s-%s.txt", SanitizeSegment(s.Host), SanitizeSegment(name))
}

func (s *ConfigMapStore) Save(ctx context.Context, a Artifact) error {
	key := s.Key(a.Name)

	cm := accorev1.ConfigMap(s.Name, s.Namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "sigcap",
			"app.kubernetes.io/component": "diagnostics",
		}).
		WithBinaryData(map[string][]byte{key: a.Content})

	_, err := s.Client.CoreV1().ConfigMaps(s.Namespace).Apply(ctx, cm, metav1.ApplyOptions{
		FieldManager: fieldManagerPrefix + SanitizeSegment(a.Name),
		Force:        true,
	})
	if err != nil {
		writes.WithLabelValues("configmap", "error").Inc()
		return errors.WrapWithContext(errors.ErrCodePersistence, "failed to apply artifact ConfigMap", err,
			map[string]any{"namespace": s.Namespace, "name": s.Name, "key": key})
	}

	writes.WithLabelValues("configmap", "ok").Inc()
	return nil
}

// ParseConfigMapTarget accepts "cm://namespace/name" or "namespace/name".
func ParseConfigMapTarget(target string) (namespace, name string, err error) {
	path := strings.TrimPrefix(strings.TrimSpace(target), ConfigMapURIScheme)

	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return "", "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"invalid ConfigMap target, expected namespace/name",
			map[string]any{"target": target})
	}
	return parts[0], parts[1], nil
}

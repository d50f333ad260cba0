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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

func TestParseConfigMapTarget(t *testing.T) {
	tests := []struct {
		target  string
		ns      string
		name    string
		wantErr bool
	}{
		{target: "cm://monitoring/sigcap", ns: "monitoring", name: "sigcap"},
		{target: "default/diag", ns: "default", name: "diag"},
		{target: "cm://only-namespace", wantErr: true},
		{target: "cm:///name", wantErr: true},
		{target: "a/b/c", wantErr: true},
		{target: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			ns, name, err := ParseConfigMapTarget(tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ns, ns)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestConfigMapStore_Save(t *testing.T) {
	cs := fake.NewClientset()
	s := &ConfigMapStore{Client: cs, Namespace: "default", Name: "sigcap", Host: "web-0"}
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Artifact{Name: "process", Content: []byte("ps v1")}))
	require.NoError(t, s.Save(ctx, Artifact{Name: "process", Content: []byte("ps v2")}))

	cm, err := cs.CoreV1().ConfigMaps("default").Get(ctx, "sigcap", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ps v2", string(cm.BinaryData["web-0-process.txt"]))
	assert.Equal(t, "sigcap", cm.Labels["app.kubernetes.io/name"])
}

func TestConfigMapStore_Key(t *testing.T) {
	s := &ConfigMapStore{Host: "web-0"}
	assert.Equal(t, "web-0-env.txt", s.Key("env"))
	assert.Equal(t, "web-0-_etc.txt", s.Key("../etc"))
}

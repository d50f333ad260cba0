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

package classifier

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/sigterm-capture/pkg/controlplane"
	"github.com/NVIDIA/sigterm-capture/pkg/errors"
	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
)

var identity = metadata.TaskIdentity{ID: "abc123", Cluster: "prod"}

func tasksDescriber(tasks ...controlplane.Task) controlplane.DescriberFunc {
	return func(context.Context, metadata.TaskIdentity) ([]controlplane.Task, error) {
		return tasks, nil
	}
}

func TestRules_Matches(t *testing.T) {
	rules := DefaultECSRules()

	tests := []struct {
		reason string
		want   bool
	}{
		{"Scaling activity initiated by (deployment ecs-svc/123)", true},
		{"Service foo: Scaling activity initiated", true},
		{"scaling activity initiated", false},
		{"Essential container in task exited", false},
		{"OutOfMemoryError: Container killed due to memory usage", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Matches(tt.reason))
		})
	}
}

func TestRules_Add(t *testing.T) {
	rules := DefaultECSRules()
	assert.False(t, rules.Matches("Task stopped by user"))

	rules.Add("stopped by user", "", DefaultECSReason)
	assert.True(t, rules.Matches("Task stopped by user"))
	assert.True(t, rules.Matches("Scaling activity initiated by x"))
	assert.Equal(t, []string{DefaultECSReason, "stopped by user"}, rules.Fragments())
}

func TestDefaultKubernetesRules(t *testing.T) {
	rules := DefaultKubernetesRules()
	assert.Equal(t, []string{DefaultKubernetesReason, DefaultKubernetesDeletedReason}, rules.Fragments())
	assert.True(t, rules.Matches("PodDeleted: deletion requested"))
	assert.False(t, rules.Matches("Error"))
}

func TestRules_Nil(t *testing.T) {
	var rules *Rules
	assert.False(t, rules.Matches("anything"))
	assert.Nil(t, rules.Fragments())
}

func TestVerdict(t *testing.T) {
	for _, v := range []Verdict{Expected, Failure, Indeterminate} {
		parsed, err := ParseVerdict(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
	_, err := ParseVerdict("maybe")
	assert.Error(t, err)

	assert.True(t, Failure.ShouldCapture())
	assert.False(t, Expected.ShouldCapture())
	assert.False(t, Indeterminate.ShouldCapture())

	data, err := json.Marshal(Failure)
	require.NoError(t, err)
	assert.JSONEq(t, `"failure"`, string(data))

	var v Verdict
	require.NoError(t, json.Unmarshal([]byte(`"expected"`), &v))
	assert.Equal(t, Expected, v)
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name       string
		describer  controlplane.Describer
		rules      *Rules
		want       Verdict
		wantReason string
		wantCode   errors.ErrorCode
	}{
		{
			name:       "recognized reason",
			describer:  tasksDescriber(controlplane.Task{StopReason: "Scaling activity initiated by (deployment x)"}),
			rules:      DefaultECSRules(),
			want:       Expected,
			wantReason: "Scaling activity initiated by (deployment x)",
		},
		{
			name:       "unrecognized reason",
			describer:  tasksDescriber(controlplane.Task{StopReason: "Essential container in task exited"}),
			rules:      DefaultECSRules(),
			want:       Failure,
			wantReason: "Essential container in task exited",
		},
		{
			name:      "empty reason",
			describer: tasksDescriber(controlplane.Task{}),
			rules:     DefaultECSRules(),
			want:      Failure,
		},
		{
			name:      "zero tasks",
			describer: tasksDescriber(),
			rules:     DefaultECSRules(),
			want:      Expected,
		},
		{
			name: "first task decides",
			describer: tasksDescriber(
				controlplane.Task{StopReason: "Scaling activity initiated"},
				controlplane.Task{StopReason: "crash"},
			),
			rules:      DefaultECSRules(),
			want:       Expected,
			wantReason: "Scaling activity initiated",
		},
		{
			name:       "added rule",
			describer:  tasksDescriber(controlplane.Task{StopReason: "Spot interruption"}),
			rules:      NewRules(DefaultECSReason, "Spot interruption"),
			want:       Expected,
			wantReason: "Spot interruption",
		},
		{
			name: "fault",
			describer: controlplane.DescriberFunc(func(context.Context, metadata.TaskIdentity) ([]controlplane.Task, error) {
				return nil, stderrors.New("AccessDeniedException")
			}),
			rules:    DefaultECSRules(),
			want:     Indeterminate,
			wantCode: errors.ErrCodeControlPlaneFault,
		},
		{
			name: "timeout",
			describer: controlplane.DescriberFunc(func(ctx context.Context, _ metadata.TaskIdentity) ([]controlplane.Task, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}),
			rules:    DefaultECSRules(),
			want:     Indeterminate,
			wantCode: errors.ErrCodeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.describer, tt.rules,
				WithPollInterval(5*time.Millisecond),
				WithTimeout(50*time.Millisecond))

			res := c.Classify(context.Background(), identity)
			assert.Equal(t, tt.want, res.Verdict)
			assert.Equal(t, tt.wantReason, res.StopReason)
			if tt.wantCode != "" {
				require.Error(t, res.Err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(res.Err))
			} else {
				assert.NoError(t, res.Err)
			}
		})
	}
}

func TestClassifier_IncompleteIdentity(t *testing.T) {
	var calls atomic.Int32
	d := controlplane.DescriberFunc(func(context.Context, metadata.TaskIdentity) ([]controlplane.Task, error) {
		calls.Add(1)
		return nil, nil
	})

	res := New(d, DefaultECSRules()).Classify(context.Background(), metadata.TaskIdentity{ID: "abc"})
	assert.Equal(t, Indeterminate, res.Verdict)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(res.Err))
	assert.Zero(t, calls.Load())
}

func TestClassifier_SingleQuery(t *testing.T) {
	var calls atomic.Int32
	d := controlplane.DescriberFunc(func(context.Context, metadata.TaskIdentity) ([]controlplane.Task, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []controlplane.Task{{StopReason: "crash"}}, nil
	})

	res := New(d, DefaultECSRules(), WithPollInterval(time.Millisecond)).Classify(context.Background(), identity)
	assert.Equal(t, Failure, res.Verdict)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClassifier_NilDescriber(t *testing.T) {
	res := New(nil, DefaultECSRules()).Classify(context.Background(), identity)
	assert.Equal(t, Indeterminate, res.Verdict)
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(res.Err))
}

func TestClassifier_KubernetesPods(t *testing.T) {
	podIdentity := metadata.TaskIdentity{ID: "web-abc", Cluster: "shop"}

	tests := []struct {
		name        string
		deleted     bool
		wantVerdict Verdict
	}{
		{name: "rollout deletes the pod", deleted: true, wantVerdict: Expected},
		{name: "container killed without deletion", deleted: false, wantVerdict: Failure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pod := &corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Name: podIdentity.ID, Namespace: podIdentity.Cluster},
				Status:     corev1.PodStatus{Phase: corev1.PodRunning},
			}
			if tt.deleted {
				pod.DeletionTimestamp = &metav1.Time{Time: time.Now()}
			}

			d := &controlplane.PodDescriber{Client: fake.NewClientset(pod)}
			res := New(d, DefaultKubernetesRules(), WithPollInterval(time.Millisecond)).
				Classify(context.Background(), podIdentity)
			assert.Equal(t, tt.wantVerdict, res.Verdict)
			assert.NoError(t, res.Err)
		})
	}
}

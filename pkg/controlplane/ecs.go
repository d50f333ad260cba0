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
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/smithy-go"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
)

// ecsRetryMaxAttempts keeps SDK retries inside the shutdown budget.
const ecsRetryMaxAttempts = 2

// ECSAPI is the subset of the ECS client used by ECSDescriber.
type ECSAPI interface {
	DescribeTasks(ctx context.Context, params *ecs.DescribeTasksInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error)
}

// ECSDescriber describes tasks with the ECS DescribeTasks API.
// The task role needs ecs:DescribeTasks on the cluster.
type ECSDescriber struct {
	Client ECSAPI
}

// NewECSDescriber builds an ECS client from the default AWS credential chain.
// On ECS this resolves the task role through the container credentials endpoint.
func NewECSDescriber(ctx context.Context) (*ECSDescriber, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRetryMaxAttempts(ecsRetryMaxAttempts),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeControlPlaneFault, "failed to load AWS config", err)
	}
	return &ECSDescriber{Client: ecs.NewFromConfig(cfg)}, nil
}

// Describe returns the task matching identity, or no tasks if ECS reports it missing.
func (d *ECSDescriber) Describe(ctx context.Context, identity metadata.TaskIdentity) ([]Task, error) {
	if d.Client == nil {
		return nil, errors.New(errors.ErrCodeInternal, "ecs client is nil")
	}

	out, err := d.Client.DescribeTasks(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(identity.Cluster),
		Tasks:   []string{identity.ID},
	})
	if err != nil {
		return nil, describeError(err, identity)
	}

	for _, f := range out.Failures {
		slog.Debug("describe tasks reported failure",
			"arn", aws.ToString(f.Arn),
			"reason", aws.ToString(f.Reason),
			"detail", aws.ToString(f.Detail))
	}

	tasks := make([]Task, 0, len(out.Tasks))
	for _, t := range out.Tasks {
		tasks = append(tasks, Task{
			ID:         aws.ToString(t.TaskArn),
			StopReason: aws.ToString(t.StoppedReason),
			LastStatus: aws.ToString(t.LastStatus),
		})
	}

	return tasks, nil
}

// describeError attaches the AWS error code, most commonly AccessDeniedException
// when the task role lacks ecs:DescribeTasks.
func describeError(err error, identity metadata.TaskIdentity) error {
	ctx := map[string]any{
		"cluster": identity.Cluster,
		"task":    identity.ID,
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		ctx["awsErrorCode"] = apiErr.ErrorCode()
		return errors.WrapWithContext(errors.ErrCodeControlPlaneFault,
			fmt.Sprintf("ecs DescribeTasks failed with %s", apiErr.ErrorCode()), err, ctx)
	}

	return errors.WrapWithContext(errors.ErrCodeControlPlaneFault, "ecs DescribeTasks failed", err, ctx)
}

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

package metadata

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Container label keys set by the ECS agent.
const (
	LabelTaskARN = "com.amazonaws.ecs.task-arn"
	LabelCluster = "com.amazonaws.ecs.cluster"
)

// safeValue is the set of characters accepted inside an attribute value.
var safeValue = regexp.MustCompile(`^[\w\-:/]*$`)

// ecsDocument covers both the container document (Labels) and the v4 task
// document (TaskARN, Cluster).
type ecsDocument struct {
	Labels  map[string]string `json:"Labels"`
	TaskARN string            `json:"TaskARN"`
	Cluster string            `json:"Cluster"`
}

// extractECS returns the task ARN and cluster from a metadata document.
// A typed decode is tried first; when it fails or finds no ARN, the raw text
// is scanned so documents that are not strictly valid JSON still resolve.
func extractECS(raw []byte) (arn, cluster string) {
	var doc ecsDocument
	if err := json.Unmarshal(raw, &doc); err == nil {
		arn = firstSafe(doc.Labels[LabelTaskARN], doc.TaskARN)
		cluster = firstSafe(doc.Labels[LabelCluster], doc.Cluster)
	}

	if arn == "" {
		arn = scanAttribute(string(raw), LabelTaskARN)
	}
	if cluster == "" {
		cluster = scanAttribute(string(raw), LabelCluster)
	}

	return arn, cluster
}

func firstSafe(values ...string) string {
	for _, v := range values {
		if v != "" && safeValue.MatchString(v) {
			return v
		}
	}
	return ""
}

// scanAttribute finds `"<key>": "<value>"` in text and returns the value of the
// last occurrence. Values containing characters outside the safe set never match.
func scanAttribute(text, key string) string {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `":\s*"([\w\-:/]*)"`)

	var value string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		value = m[1]
	}
	return value
}

// taskIDFromARN returns the segment after the last "/".
//
//	arn:aws:ecs:us-east-1:123456789012:task/my-cluster/abc123 -> abc123
func taskIDFromARN(arn string) string {
	if i := strings.LastIndex(arn, "/"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

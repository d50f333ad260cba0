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

// Package classifier decides whether a stopping task is failing.
//
// A Classifier issues one asynchronous describe request to the control
// plane, waits for it with a fixed poll interval and an explicit timeout,
// and evaluates the first task's stop reason against a Rules set:
//
//	c := classifier.New(describer, classifier.DefaultECSRules())
//	res := c.Classify(ctx, identity)
//	if res.Verdict.ShouldCapture() {
//	    // collect diagnostics
//	}
//
// Verdicts:
//   - Expected: the reason contains a recognized fragment, or the control
//     plane has no record of the task.
//   - Failure: the reason is present but unrecognized, or empty.
//   - Indeterminate: the query faulted or timed out; handled like Expected.
package classifier

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
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is the outcome of classifying a stopping task.
type Verdict int

const (
	// Indeterminate means the stop cause could not be established.
	// It is handled like Expected (no capture) but reported separately.
	Indeterminate Verdict = iota
	// Expected means the task is stopping for a recognized operational reason.
	Expected
	// Failure means the stop reason was not recognized.
	Failure
)

func (v Verdict) String() string {
	switch v {
	case Expected:
		return "expected"
	case Failure:
		return "failure"
	case Indeterminate:
		return "indeterminate"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// ShouldCapture reports whether diagnostics must be collected.
func (v Verdict) ShouldCapture() bool {
	return v == Failure
}

// ParseVerdict is the inverse of String.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expected":
		return Expected, nil
	case "failure":
		return Failure, nil
	case "indeterminate":
		return Indeterminate, nil
	default:
		return Indeterminate, fmt.Errorf("unknown verdict %q", s)
	}
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVerdict(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Verdict) MarshalYAML() (any, error) {
	return v.String(), nil
}

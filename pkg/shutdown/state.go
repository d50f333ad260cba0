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

package shutdown

// State is the coordinator lifecycle position. States only move forward.
type State int

const (
	// Running means no termination notice has arrived.
	Running State = iota
	// Notified means a termination notice arrived and hooks are running.
	Notified
	// Classifying means metadata lookup and classification are in progress.
	Classifying
	// Capturing means diagnostics are being captured and persisted.
	Capturing
	// Draining means all artifact writes have finished.
	Draining
	// Exited means the sequence is complete and the process may stop.
	Exited
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Notified:
		return "notified"
	case Classifying:
		return "classifying"
	case Capturing:
		return "capturing"
	case Draining:
		return "draining"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

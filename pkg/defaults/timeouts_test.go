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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// Shutdown timeouts
		{"ShutdownGracePeriod", ShutdownGracePeriod, 10 * time.Second, 30 * time.Second},
		{"ShutdownExitWait", ShutdownExitWait, 0, 5 * time.Second},

		// Metadata timeouts
		{"MetadataFetchTimeout", MetadataFetchTimeout, 500 * time.Millisecond, 5 * time.Second},

		// Control plane timeouts
		{"ControlPlaneTimeout", ControlPlaneTimeout, 1 * time.Second, 20 * time.Second},
		{"ControlPlanePollInterval", ControlPlanePollInterval, 10 * time.Millisecond, 1 * time.Second},

		// Diagnostic timeouts
		{"DiagnosticCommandTimeout", DiagnosticCommandTimeout, 1 * time.Second, 10 * time.Second},
		{"ArtifactWriteTimeout", ArtifactWriteTimeout, 1 * time.Second, 10 * time.Second},

		// Server timeouts
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 60 * time.Second},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 300 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 1 * time.Second, 30 * time.Second},

		// HTTP client timeouts
		{"HTTPConnectTimeout", HTTPConnectTimeout, 100 * time.Millisecond, 5 * time.Second},
		{"HTTPResponseHeaderTimeout", HTTPResponseHeaderTimeout, 100 * time.Millisecond, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) exceeds maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestPipelineFitsGracePeriod(t *testing.T) {
	// Metadata fetch, control plane query and the two default diagnostic commands.
	worst := MetadataFetchTimeout + ControlPlaneTimeout + 2*DiagnosticCommandTimeout
	if worst >= ShutdownGracePeriod {
		t.Errorf("worst-case pipeline latency %v does not fit grace period %v", worst, ShutdownGracePeriod)
	}
}

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

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigcap_shutdown_state_transitions_total",
			Help: "Shutdown coordinator state transitions by target state",
		},
		[]string{"state"},
	)

	sequenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sigcap_shutdown_sequence_duration_seconds",
			Help:    "Time from termination notice to Exited",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)
)

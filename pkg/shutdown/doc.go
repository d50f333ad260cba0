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

// Package shutdown coordinates the termination sequence of the process.
//
// A Coordinator moves through
//
//	Running → Notified → Classifying → [Capturing] → Draining → Exited
//
// Capturing is entered only for a Failure verdict. The sequence runs once
// per process, within the configured grace period, and always reaches
// Exited: step failures and panics are logged, never propagated.
//
//	coord := shutdown.NewCoordinator(p,
//	    shutdown.WithGracePeriod(cfg.GracePeriod),
//	    shutdown.WithNotifyHook(func(context.Context) { srv.SetReady(false) }),
//	)
//	coord.HandleSignals(ctx)
//	<-coord.Done()
//	fmt.Println(coord.Report().Verdict)
package shutdown

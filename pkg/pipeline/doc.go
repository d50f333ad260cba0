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

// Package pipeline runs the shutdown sequence for one termination event.
//
// Classify resolves the task identity, stores the raw metadata document as
// the "metadata" artifact, and asks the classifier for a verdict. Capture
// then runs diagnostics and stores each artifact, but only for a Failure
// verdict. Neither step returns an error; every outcome is recorded on the
// Report and logged with the report's EventID.
//
//	p := &pipeline.Pipeline{
//	    Resolver:   resolver,
//	    Classifier: classifier.New(describer, classifier.DefaultECSRules()),
//	    Capturer:   diagnostics.NewCapturer(nil),
//	    Store:      artifact.NewFileStore("/data", host),
//	    Host:       host,
//	}
//	report := p.Run(ctx)
package pipeline

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

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/sigterm-capture/pkg/artifact"
	"github.com/NVIDIA/sigterm-capture/pkg/classifier"
	"github.com/NVIDIA/sigterm-capture/pkg/defaults"
	"github.com/NVIDIA/sigterm-capture/pkg/errors"
	"github.com/NVIDIA/sigterm-capture/pkg/metadata"
)

// MetadataArtifact is the name under which the raw metadata document is stored.
const MetadataArtifact = "metadata"

// StatusClassifier is implemented by *classifier.Classifier.
type StatusClassifier interface {
	Classify(ctx context.Context, identity metadata.TaskIdentity) classifier.Result
}

// DiagnosticCapturer is implemented by *diagnostics.Capturer.
type DiagnosticCapturer interface {
	Capture(ctx context.Context) []artifact.Artifact
}

// Pipeline runs resolve, classify and capture for one shutdown event.
type Pipeline struct {
	Resolver   metadata.Resolver
	Classifier StatusClassifier
	Capturer   DiagnosticCapturer
	Store      artifact.Store
	Host       string
	// DryRun classifies and captures but writes nothing.
	DryRun bool
	Logger *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Run is Classify followed by Capture.
func (p *Pipeline) Run(ctx context.Context) *Report {
	r := p.Classify(ctx)
	p.Capture(ctx, r)
	return r
}

// Classify resolves the task identity, persists the raw metadata document
// and obtains a verdict. It always returns a report.
func (p *Pipeline) Classify(ctx context.Context) *Report {
	r := &Report{
		EventID:   uuid.NewString(),
		Host:      p.Host,
		Verdict:   classifier.Indeterminate,
		Artifacts: []ArtifactResult{},
		DryRun:    p.DryRun,
		Started:   time.Now().UTC(),
	}
	log := p.logger().With("event", r.EventID)

	doc, err := p.resolve(ctx, log)
	if doc != nil {
		r.Identity = doc.Identity
		if doc.Raw != nil {
			p.save(ctx, log, r, artifact.Artifact{Name: MetadataArtifact, Content: doc.Raw})
		}
	}

	if err != nil {
		r.Error = err.Error()
		p.finish(log, r)
		return r
	}

	res := p.classify(ctx, r.Identity)
	r.Verdict = res.Verdict
	r.StopReason = res.StopReason
	if res.Err != nil {
		r.Error = res.Err.Error()
	}

	p.finish(log, r)
	return r
}

// Capture collects diagnostics when the report's verdict is Failure and
// stores each one. For any other verdict it does nothing.
func (p *Pipeline) Capture(ctx context.Context, r *Report) {
	if r == nil || !r.Verdict.ShouldCapture() {
		return
	}
	log := p.logger().With("event", r.EventID)

	if p.Capturer == nil {
		log.Warn("failure verdict but no diagnostic capturer configured")
		return
	}

	start := time.Now()
	arts := p.Capturer.Capture(ctx)
	stageDuration.WithLabelValues("capture").Observe(time.Since(start).Seconds())

	for _, a := range arts {
		p.save(ctx, log, r, a)
	}

	p.finish(log, r)
}

func (p *Pipeline) resolve(ctx context.Context, log *slog.Logger) (*metadata.Document, error) {
	start := time.Now()
	defer func() {
		stageDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())
	}()

	if p.Resolver == nil {
		return nil, errors.Wrap(errors.ErrCodeConfigurationAbsent, "no metadata resolver configured", metadata.ErrNotAvailable)
	}

	doc, err := p.Resolver.Resolve(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrCodeConfigurationAbsent) {
			log.Info("task metadata not configured, skipping classification", "error", err)
		} else {
			log.Warn("task metadata unavailable", "code", errors.CodeOf(err), "error", err)
		}
		return doc, err
	}

	log.Info("task identity resolved", "task", doc.Identity.ID, "cluster", doc.Identity.Cluster)
	return doc, nil
}

func (p *Pipeline) classify(ctx context.Context, identity metadata.TaskIdentity) classifier.Result {
	start := time.Now()
	defer func() {
		stageDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())
	}()

	if p.Classifier == nil {
		return classifier.Result{
			Verdict: classifier.Indeterminate,
			Err:     errors.New(errors.ErrCodeInternal, "no classifier configured"),
		}
	}
	return p.Classifier.Classify(ctx, identity)
}

// save never fails the pipeline; the outcome is recorded on the report.
func (p *Pipeline) save(ctx context.Context, log *slog.Logger, r *Report, a artifact.Artifact) {
	res := ArtifactResult{Name: a.Name, Bytes: len(a.Content)}

	switch {
	case p.DryRun:
		log.Info("dry run, artifact not written", "artifact", a.Name, "bytes", res.Bytes)
	case p.Store == nil:
		res.Error = "no artifact store configured"
		log.Warn("artifact dropped", "artifact", a.Name, "error", res.Error)
	default:
		wctx, cancel := context.WithTimeout(ctx, defaults.ArtifactWriteTimeout)
		err := p.Store.Save(wctx, a)
		cancel()
		if err != nil {
			res.Error = err.Error()
			log.Error("failed to persist artifact",
				"artifact", a.Name,
				"code", errors.CodeOf(err),
				"error", err)
		} else {
			res.Saved = true
			log.Info("artifact persisted", "artifact", a.Name, "bytes", res.Bytes)
		}
	}

	r.Artifacts = append(r.Artifacts, res)
}

func (p *Pipeline) finish(log *slog.Logger, r *Report) {
	first := r.Finished.IsZero()
	r.Finished = time.Now().UTC()
	if first {
		verdicts.WithLabelValues(r.Verdict.String()).Inc()
		log.Info("task classified",
			"verdict", r.Verdict.String(),
			"reason", r.StopReason,
			"task", r.Identity.ID,
			"cluster", r.Identity.Cluster)
		return
	}
	log.Info("diagnostic capture complete",
		"artifacts", len(r.Artifacts),
		"duration", r.Duration().String())
}

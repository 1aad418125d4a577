package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/hl7autoct/pkg/engine"
	"github.com/dukex/hl7autoct/pkg/metrics"
	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/otelhelper"
	"github.com/dukex/hl7autoct/pkg/persistence"
	"github.com/dukex/hl7autoct/pkg/progress"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultGraceWindow is how long a recorded launch answers PENDING while the
// engine does not list it yet.
const DefaultGraceWindow = 30 * time.Second

// ResolveRequest is one poll. Type is the raw artifact selector and may be empty.
type ResolveRequest struct {
	Handle models.ExecutionHandle
	Type   string
}

type ResultKind int

const (
	ResultReport ResultKind = iota + 1
	ResultRedirect
)

// Redirect points the caller at one artifact.
type Redirect struct {
	Location  string
	ExpiresAt *time.Time
	Type      models.ArtifactType
}

// Result is either a status report or a redirect, selected by Kind.
type Result struct {
	Kind     ResultKind
	Report   *models.StatusReport
	Redirect *Redirect
}

type ResolverConfig struct {
	Engine    engine.Engine
	Progress  *progress.Model
	Artifacts *ArtifactResolver
	// Persistence is optional. Without it unknown handles are never PENDING.
	Persistence persistence.Persistence
	GraceWindow time.Duration
	Timeout     time.Duration
	Metrics     *metrics.Metrics
	Tracer      trace.Tracer
	Logger      *slog.Logger
}

// Resolver answers status polls and artifact requests. It keeps no state
// between calls; each poll queries the engine again.
type Resolver struct {
	engine      engine.Engine
	progress    *progress.Model
	artifacts   *ArtifactResolver
	persistence persistence.Persistence
	graceWindow time.Duration
	timeout     time.Duration
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
	now         func() time.Time
}

func NewResolver(config ResolverConfig) *Resolver {
	tracer := config.Tracer
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	grace := config.GraceWindow
	if grace < 0 {
		grace = 0
	}

	return &Resolver{
		engine:      config.Engine,
		progress:    config.Progress,
		artifacts:   config.Artifacts,
		persistence: config.Persistence,
		graceWindow: grace,
		timeout:     config.Timeout,
		metrics:     config.Metrics,
		tracer:      tracer,
		logger:      config.Logger.With("module", "resolver"),
		now:         time.Now,
	}
}

// Resolve returns a redirect only when a type was requested and the run
// succeeded. Any other combination returns the status report.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) (*Result, error) {
	if !req.Handle.WellFormed() {
		return nil, newError("Resolve", CodeInvalidHandle, "executionArn is required and must be a valid execution identifier", ErrInvalidHandle)
	}

	var (
		artifactType models.ArtifactType
		wantArtifact = req.Type != ""
	)

	if wantArtifact {
		parsed, ok := models.ParseArtifactType(req.Type)
		if !ok {
			return nil, newError("Resolve", CodeInvalidArtifactType,
				"type must be one of specification, validation or xmljs", ErrInvalidArtifactType)
		}

		artifactType = parsed
	}

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "services.Resolve",
		attribute.String(otelhelper.ExecutionArnKey, req.Handle.String()),
		attribute.String(otelhelper.ArtifactTypeKey, string(artifactType)))
	defer span.End()

	desc, err := r.describe(ctx, req.Handle)
	if err != nil {
		if IsUpstreamError(err) {
			otelhelper.SetError(span, err)
		}

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionStatus, string(desc.Status)))

	estimate := r.progress.Estimate(desc.Status, desc.CurrentStep, desc.ReachedSteps)
	span.SetAttributes(attribute.String(otelhelper.StepNameKey, estimate.CurrentStep))

	if desc.Status != models.StatusSucceeded {
		r.metrics.RecordStatusPoll(string(desc.Status))

		return reportResult(AssembleReport(req.Handle, desc.Status, estimate, nil)), nil
	}

	summary, err := r.artifacts.Summarize(ctx, req.Handle, desc.Output)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if !wantArtifact {
		r.metrics.RecordStatusPoll(string(desc.Status))

		return reportResult(AssembleReport(req.Handle, desc.Status, estimate, summary)), nil
	}

	descriptor, ok := summary.Descriptor(artifactType)
	if !ok {
		return nil, newError("Resolve", CodeArtifactNotFound,
			fmt.Sprintf("the execution did not produce a %s artifact", artifactType), ErrArtifactNotFound)
	}

	r.metrics.RecordArtifactRedirect(string(artifactType))

	return &Result{
		Kind: ResultRedirect,
		Redirect: &Redirect{
			Location:  descriptor.Location,
			ExpiresAt: descriptor.ExpiresAt,
			Type:      artifactType,
		},
	}, nil
}

// describe queries the engine and falls back to the launch ledger for
// handles the engine does not list.
func (r *Resolver) describe(ctx context.Context, handle models.ExecutionHandle) (*engine.Description, error) {
	engineCtx, cancel := withUpstreamTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	desc, err := r.engine.Describe(engineCtx, handle)

	switch {
	case err == nil:
		r.metrics.ObserveUpstream(metrics.DependencyEngine, "describe", time.Since(started), nil)

		return desc, nil
	case engine.IsInvalidHandle(err):
		r.metrics.ObserveUpstream(metrics.DependencyEngine, "describe", time.Since(started), nil)

		return nil, newError("Resolve", CodeInvalidHandle, "executionArn is not a valid execution identifier", ErrInvalidHandle)
	case engine.IsNotFound(err):
		r.metrics.ObserveUpstream(metrics.DependencyEngine, "describe", time.Since(started), nil)

		if r.recentlyLaunched(ctx, handle) {
			return &engine.Description{Handle: handle, Status: models.StatusPending}, nil
		}

		return nil, newError("Resolve", CodeExecutionNotFound, "no execution exists for the given executionArn", ErrExecutionNotFound)
	default:
		r.metrics.ObserveUpstream(metrics.DependencyEngine, "describe", time.Since(started), err)
		r.logger.ErrorContext(ctx, "Failed to describe execution", "execution_arn", handle, "error", err)

		return nil, newError("Resolve", CodeUpstreamUnavailable, "the workflow engine is unavailable", ErrUpstreamUnavailable)
	}
}

func (r *Resolver) recentlyLaunched(ctx context.Context, handle models.ExecutionHandle) bool {
	if r.persistence == nil || r.graceWindow == 0 {
		return false
	}

	ctx, cancel := withUpstreamTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	launch, err := r.persistence.LaunchByHandle(ctx, handle)

	if err != nil && !persistence.IsLaunchNotFound(err) {
		r.metrics.ObserveUpstream(metrics.DependencyLedger, "launch_by_handle", time.Since(started), err)
		r.logger.WarnContext(ctx, "Failed to read launch ledger", "execution_arn", handle, "error", err)

		return false
	}

	r.metrics.ObserveUpstream(metrics.DependencyLedger, "launch_by_handle", time.Since(started), nil)

	return launch.WithinGrace(r.now(), r.graceWindow)
}

func reportResult(report *models.StatusReport) *Result {
	return &Result{Kind: ResultReport, Report: report}
}

// HealthCheck pings the launch ledger. The engine is not polled.
func (r *Resolver) HealthCheck(ctx context.Context) (string, bool) {
	if r.persistence == nil {
		return "launch ledger disabled", true
	}

	ctx, cancel := withUpstreamTimeout(ctx, r.timeout)
	defer cancel()

	err := r.persistence.HealthCheck(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "Launch ledger health check failed", "error", err)

		return "launch ledger unreachable", false
	}

	return "launch ledger ok", true
}

// CatalogVersion identifies the step catalog progress is computed against.
func (r *Resolver) CatalogVersion() string {
	return r.progress.Catalog().Version()
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/hl7autoct/pkg/engine"
	"github.com/dukex/hl7autoct/pkg/eventbus"
	"github.com/dukex/hl7autoct/pkg/events"
	"github.com/dukex/hl7autoct/pkg/metrics"
	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/otelhelper"
	"github.com/dukex/hl7autoct/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LaunchMessage is the acknowledgement returned with every new run.
const LaunchMessage = "Pipeline started successfully. Processing may take up to 6 to 8 minutes. " +
	"Use check_status_url to follow progress and the get_*_url links to download the results once it completes."

// LaunchRequest is the transformation request of one caller.
type LaunchRequest struct {
	HL7Message string
}

// LaunchResult is returned as soon as the engine accepted the run.
type LaunchResult struct {
	Message                 string                 `json:"message"`
	ExecutionArn            models.ExecutionHandle `json:"execution_arn"`
	CheckStatusURL          string                 `json:"check_status_url"`
	GetSpecificationFileURL string                 `json:"get_specification_file_url"`
	GetValidationReportURL  string                 `json:"get_validation_report_url"`
	GetXMLJSFileURL         string                 `json:"get_xmljs_file_url"`
	Timestamp               time.Time              `json:"timestamp"`
}

// pipelineInput is the execution input handed to the first pipeline step.
type pipelineInput struct {
	HL7Message  string    `json:"hl7_message"`
	RequestID   string    `json:"request_id"`
	RequestedAt time.Time `json:"requested_at"`
}

type LauncherConfig struct {
	Engine      engine.Engine
	Persistence persistence.Persistence
	EventBus    eventbus.EventPublisher
	URLs        *URLBuilder
	Metrics     *metrics.Metrics
	Tracer      trace.Tracer
	Logger      *slog.Logger
	// Timeout bounds each call to a dependency.
	Timeout time.Duration
}

// Launcher starts one pipeline run per request.
type Launcher struct {
	engine      engine.Engine
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	urls        *URLBuilder
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
	timeout     time.Duration
	now         func() time.Time
	newID       func() string
}

func NewLauncher(config LauncherConfig) *Launcher {
	eventBus := config.EventBus
	if eventBus == nil {
		eventBus = eventbus.NoopEventBus{}
	}

	tracer := config.Tracer
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Launcher{
		engine:      config.Engine,
		persistence: config.Persistence,
		eventBus:    eventBus,
		urls:        config.URLs,
		metrics:     config.Metrics,
		tracer:      tracer,
		logger:      config.Logger.With("module", "launcher"),
		timeout:     config.Timeout,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Launch validates the request and starts exactly one run. Repeated calls
// with the same message start independent runs.
func (l *Launcher) Launch(ctx context.Context, req LaunchRequest) (*LaunchResult, error) {
	if strings.TrimSpace(req.HL7Message) == "" {
		l.metrics.RecordLaunch("invalid")

		return nil, newError("Launch", CodeValidation, "hl7_message is required and cannot be empty", ErrValidation)
	}

	requestID := l.newID()
	requestedAt := l.now().UTC()

	ctx, span := otelhelper.StartSpan(ctx, l.tracer, "services.Launch",
		attribute.String(otelhelper.RequestIDKey, requestID))
	defer span.End()

	payload, err := json.Marshal(pipelineInput{
		HL7Message:  req.HL7Message,
		RequestID:   requestID,
		RequestedAt: requestedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pipeline input: %w", err)
	}

	handle, err := l.start(ctx, engine.StartInput{Name: requestID, Payload: payload})
	if err != nil {
		otelhelper.SetError(span, err)
		l.metrics.RecordLaunch("error")
		l.logger.ErrorContext(ctx, "Failed to start pipeline", "request_id", requestID, "error", err)

		return nil, newError("Launch", CodeUpstreamUnavailable, "the workflow engine could not start the pipeline", ErrUpstreamUnavailable)
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionArnKey, handle.String()))

	launch := &models.Launch{Handle: handle, RequestID: requestID, LaunchedAt: requestedAt}
	l.record(ctx, launch)
	l.publish(ctx, launch, len(req.HL7Message))

	l.metrics.RecordLaunch("success")
	l.logger.InfoContext(ctx, "Pipeline started", "execution_arn", handle, "request_id", requestID)

	return &LaunchResult{
		Message:                 LaunchMessage,
		ExecutionArn:            handle,
		CheckStatusURL:          l.urls.StatusURL(handle),
		GetSpecificationFileURL: l.urls.ArtifactURL(handle, models.ArtifactSpecification),
		GetValidationReportURL:  l.urls.ArtifactURL(handle, models.ArtifactValidation),
		GetXMLJSFileURL:         l.urls.ArtifactURL(handle, models.ArtifactXMLJS),
		Timestamp:               requestedAt,
	}, nil
}

func (l *Launcher) start(ctx context.Context, input engine.StartInput) (models.ExecutionHandle, error) {
	ctx, cancel := withUpstreamTimeout(ctx, l.timeout)
	defer cancel()

	started := time.Now()
	handle, err := l.engine.Start(ctx, input)
	l.metrics.ObserveUpstream(metrics.DependencyEngine, "start", time.Since(started), err)

	return handle, err
}

// record is best effort. A lost entry only disables the not-found grace
// window for that run.
func (l *Launcher) record(ctx context.Context, launch *models.Launch) {
	if l.persistence == nil {
		return
	}

	ctx, cancel := withUpstreamTimeout(ctx, l.timeout)
	defer cancel()

	started := time.Now()
	err := l.persistence.SaveLaunch(ctx, launch)
	l.metrics.ObserveUpstream(metrics.DependencyLedger, "save_launch", time.Since(started), err)

	if err != nil {
		l.logger.WarnContext(ctx, "Failed to record launch", "execution_arn", launch.Handle, "error", err)
	}
}

func (l *Launcher) publish(ctx context.Context, launch *models.Launch, messageBytes int) {
	started := time.Now()
	err := l.eventBus.Publish(ctx, launch.Handle.String(), events.NewExecutionLaunched(launch, messageBytes))
	l.metrics.ObserveUpstream(metrics.DependencyEventBus, "publish", time.Since(started), err)

	if err != nil {
		l.logger.WarnContext(ctx, "Failed to publish launch event", "execution_arn", launch.Handle, "error", err)
	}
}

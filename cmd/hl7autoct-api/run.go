package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dukex/hl7autoct/pkg/catalog"
	"github.com/dukex/hl7autoct/pkg/cmd"
	"github.com/dukex/hl7autoct/pkg/metrics"
	"github.com/dukex/hl7autoct/pkg/otelhelper"
	"github.com/dukex/hl7autoct/pkg/persistence"
	"github.com/dukex/hl7autoct/pkg/progress"
	"github.com/dukex/hl7autoct/pkg/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "hl7autoct-api"
	reportPath  = "/transformations/report"
)

type settings struct {
	Port                int
	PublicBaseURL       string
	Engine              string
	StateMachineArn     string
	AWSRegion           string
	ArtifactStore       string
	ArtifactBaseURL     string
	URLExpiry           time.Duration
	SigningWindow       time.Duration
	UpstreamTimeout     time.Duration
	StepCatalog         string
	LedgerURL           string
	GraceWindow         time.Duration
	LedgerRetention     time.Duration
	LedgerPruneSchedule string
	EventBus            string
	KafkaBrokers        string
	Tracing             bool
}

func run(ctx context.Context, logger *slog.Logger, s settings) error {
	api, closeAll, err := setup(ctx, logger, s)
	if err != nil {
		return err
	}
	defer closeAll()

	return api.Start(s.Port)
}

// setup builds every dependency of the API. The returned function releases
// them in reverse order.
func setup(ctx context.Context, logger *slog.Logger, s settings) (*API, func(), error) {
	var closers []func()

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	fail := func(err error) (*API, func(), error) {
		closeAll()

		return nil, nil, err
	}

	statusURL, err := url.JoinPath(s.PublicBaseURL, reportPath)
	if err != nil {
		return fail(fmt.Errorf("invalid public base url: %w", err))
	}

	urls, err := services.NewURLBuilder(statusURL)
	if err != nil {
		return fail(err)
	}

	steps, err := loadCatalog(s.StepCatalog)
	if err != nil {
		return fail(err)
	}

	var awsCfg aws.Config
	if s.Engine == "stepfunctions" || s.ArtifactStore == "s3" {
		awsCfg, err = cmd.LoadAWSConfig(ctx, s.AWSRegion)
		if err != nil {
			return fail(err)
		}
	}

	eng, err := cmd.NewEngine(s.Engine, awsCfg, s.StateMachineArn, logger)
	if err != nil {
		return fail(err)
	}

	store, err := cmd.NewArtifactStore(cmd.ArtifactStoreOptions{
		Provider:      s.ArtifactStore,
		BaseURL:       s.ArtifactBaseURL,
		Expiry:        s.URLExpiry,
		SigningWindow: s.SigningWindow,
	}, awsCfg)
	if err != nil {
		return fail(err)
	}

	ledger, err := cmd.NewPersistence(ctx, logger, s.LedgerURL, s.LedgerRetention)
	if err != nil {
		return fail(err)
	}

	closers = append(closers, func() {
		if err := ledger.Close(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to close launch ledger", "error", err)
		}
	})

	if pruner, ok := ledger.(persistence.Pruner); ok && s.LedgerPruneSchedule != "" {
		launchPruner, err := persistence.NewLaunchPruner(pruner, s.LedgerPruneSchedule, s.LedgerRetention, logger)
		if err != nil {
			return fail(err)
		}

		if err := launchPruner.Start(ctx); err != nil {
			return fail(err)
		}

		closers = append(closers, func() { launchPruner.Stop(context.WithoutCancel(ctx)) })
	}

	eventBus, err := cmd.NewEventBus(s.EventBus, s.KafkaBrokers, logger)
	if err != nil {
		return fail(err)
	}

	closers = append(closers, func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	})

	tracer, err := newTracer(ctx, s.Tracing, logger, &closers)
	if err != nil {
		return fail(err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.InitMetrics(registry)

	launcher := services.NewLauncher(services.LauncherConfig{
		Engine:      eng,
		Persistence: ledger,
		EventBus:    eventBus,
		URLs:        urls,
		Metrics:     m,
		Tracer:      tracer,
		Logger:      logger,
		Timeout:     s.UpstreamTimeout,
	})

	resolver := services.NewResolver(services.ResolverConfig{
		Engine:      eng,
		Progress:    progress.New(steps),
		Artifacts:   services.NewArtifactResolver(store, m, logger, s.UpstreamTimeout),
		Persistence: ledger,
		GraceWindow: s.GraceWindow,
		Timeout:     s.UpstreamTimeout,
		Metrics:     m,
		Tracer:      tracer,
		Logger:      logger,
	})

	logger.InfoContext(ctx, "hl7autoct API configured",
		"engine", s.Engine,
		"artifact_store", s.ArtifactStore,
		"event_bus", s.EventBus,
		"catalog_version", steps.Version(),
		"catalog_steps", steps.Len())

	return NewAPI(logger, launcher, resolver, m), closeAll, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load step catalog: %w", err)
	}

	return c, nil
}

// nolint:ireturn // Returning interface is intentional for OpenTelemetry tracing
func newTracer(ctx context.Context, enabled bool, logger *slog.Logger, closers *[]func()) (trace.Tracer, error) {
	if !enabled {
		return otelhelper.NoopTracer(), nil
	}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	*closers = append(*closers, func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		}
	})

	return tracer, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/hl7autoct/pkg/metrics"
	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/objectstore"
)

// ArtifactResolver builds the final summary of a successful run from its
// output record. Locations are minted again on every call; the store keeps
// them stable between calls.
type ArtifactResolver struct {
	store   objectstore.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	timeout time.Duration
}

func NewArtifactResolver(store objectstore.Store, m *metrics.Metrics, logger *slog.Logger, timeout time.Duration) *ArtifactResolver {
	return &ArtifactResolver{
		store:   store,
		metrics: m,
		logger:  logger.With("module", "artifact_resolver"),
		timeout: timeout,
	}
}

// Summarize returns counters and one descriptor per artifact the run produced.
func (a *ArtifactResolver) Summarize(ctx context.Context, handle models.ExecutionHandle, output json.RawMessage) (*models.FinalSummary, error) {
	record, err := parseOutputRecord(output)
	if err != nil {
		a.logger.ErrorContext(ctx, "Unreadable output record", "execution_arn", handle, "error", err)

		return nil, newError("Summarize", CodeInvalidOutputRecord, "the pipeline output could not be read", err)
	}

	summary := &models.FinalSummary{
		TotalSegments: int64(record.FinalStatus.TotalSegments),
		TotalRows:     int64(record.FinalStatus.TotalRows),
	}

	ctx, cancel := withUpstreamTimeout(ctx, a.timeout)
	defer cancel()

	for _, artifactType := range models.ArtifactTypes() {
		raw := record.reference(artifactType)
		if raw == "" {
			continue
		}

		descriptor, err := a.describe(ctx, artifactType, raw)
		if err != nil {
			a.logger.ErrorContext(ctx, "Failed to resolve artifact",
				"execution_arn", handle, "type", artifactType, "error", err)

			if errors.Is(err, objectstore.ErrInvalidReference) {
				return nil, newError("Summarize", CodeInvalidOutputRecord, "the pipeline output could not be read",
					fmt.Errorf("%w: %w", ErrInvalidOutputRecord, err))
			}

			return nil, newError("Summarize", CodeUpstreamUnavailable, "artifact storage is unavailable",
				fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err))
		}

		summary.Artifacts = append(summary.Artifacts, descriptor)
	}

	return summary, nil
}

func (a *ArtifactResolver) describe(ctx context.Context, artifactType models.ArtifactType, raw string) (models.ArtifactDescriptor, error) {
	ref, err := objectstore.ParseReference(raw)
	if err != nil {
		return models.ArtifactDescriptor{}, err
	}

	if ref.Kind == objectstore.KindURL {
		return models.ArtifactDescriptor{Type: artifactType, Location: ref.URL}, nil
	}

	started := time.Now()
	minted, err := a.store.MintURL(ctx, ref, artifactType)
	a.metrics.ObserveUpstream(metrics.DependencyObjectStore, "mint_url", time.Since(started), err)

	if err != nil {
		return models.ArtifactDescriptor{}, err
	}

	return models.ArtifactDescriptor{Type: artifactType, Location: minted.URL, ExpiresAt: minted.ExpiresAt}, nil
}

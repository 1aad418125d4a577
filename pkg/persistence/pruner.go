package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrInvalidSchedule = errors.New("invalid prune schedule")

// LaunchPruner deletes ledger records older than the retention on a cron
// schedule.
type LaunchPruner struct {
	pruner    Pruner
	schedule  string
	retention time.Duration
	now       func() time.Time
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewLaunchPruner(pruner Pruner, schedule string, retention time.Duration, logger *slog.Logger) (*LaunchPruner, error) {
	if schedule == "" {
		return nil, fmt.Errorf("%w: schedule is required", ErrInvalidSchedule)
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	if retention <= 0 {
		return nil, fmt.Errorf("%w: retention must be positive", ErrInvalidSchedule)
	}

	return &LaunchPruner{
		pruner:    pruner,
		schedule:  schedule,
		retention: retention,
		now:       time.Now,
		logger:    logger.With("module", "launch_pruner", "cron", schedule),
	}, nil
}

func (p *LaunchPruner) Start(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Starting launch pruner")

	p.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := p.cron.AddFunc(p.schedule, func() {
		_, _ = p.Prune(context.WithoutCancel(ctx))
	})
	if err != nil {
		return fmt.Errorf("failed to add prune job: %w", err)
	}

	p.cron.Start()

	return nil
}

// Prune runs one pass immediately.
func (p *LaunchPruner) Prune(ctx context.Context) (int64, error) {
	before := p.now().Add(-p.retention)

	deleted, err := p.pruner.PruneLaunches(ctx, before)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to prune launches", "error", err)

		return 0, err
	}

	p.logger.DebugContext(ctx, "Pruned launches", "deleted", deleted, "before", before)

	return deleted, nil
}

func (p *LaunchPruner) Stop(ctx context.Context) {
	p.logger.InfoContext(ctx, "Stopping launch pruner")

	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
}

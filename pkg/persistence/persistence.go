// Package persistence keeps the launch ledger: the handles this service issued
// and when. Backends live in sub packages.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
)

type Persistence interface {
	SaveLaunch(ctx context.Context, launch *models.Launch) error
	// LaunchByHandle returns ErrLaunchNotFound for handles never recorded or
	// already expired.
	LaunchByHandle(ctx context.Context, handle models.ExecutionHandle) (*models.Launch, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// Pruner is implemented by backends that do not expire records on their own.
type Pruner interface {
	PruneLaunches(ctx context.Context, before time.Time) (int64, error)
}

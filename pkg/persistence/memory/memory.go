// Package memory provides an in-process launch ledger for single instance
// deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/persistence"
)

type Persistence struct {
	mu       sync.RWMutex
	launches map[models.ExecutionHandle]models.Launch
}

func NewPersistence() *Persistence {
	return &Persistence{launches: make(map[models.ExecutionHandle]models.Launch)}
}

func (p *Persistence) SaveLaunch(_ context.Context, launch *models.Launch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.launches[launch.Handle] = *launch

	return nil
}

func (p *Persistence) LaunchByHandle(_ context.Context, handle models.ExecutionHandle) (*models.Launch, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	launch, ok := p.launches[handle]
	if !ok {
		return nil, persistence.NewLaunchError("LaunchByHandle", handle.String(), persistence.ErrLaunchNotFound)
	}

	return &launch, nil
}

func (p *Persistence) PruneLaunches(_ context.Context, before time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var deleted int64

	for handle, launch := range p.launches {
		if launch.LaunchedAt.Before(before) {
			delete(p.launches, handle)
			deleted++
		}
	}

	return deleted, nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

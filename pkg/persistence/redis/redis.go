// Package redis provides a launch ledger shared by every API instance. Keys
// expire on their own after the retention period.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hl7autoct:launch:"

type Persistence struct {
	client    redis.UniversalClient
	retention time.Duration
	logger    *slog.Logger
}

// NewPersistence connects to a redis:// or rediss:// url.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string, retention time.Duration) (*Persistence, error) {
	opts, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	p := NewPersistenceFromClient(redis.NewClient(opts), logger, retention)

	err = p.HealthCheck(ctx)
	if err != nil {
		_ = p.Close(ctx)

		return nil, err
	}

	return p, nil
}

func NewPersistenceFromClient(client redis.UniversalClient, logger *slog.Logger, retention time.Duration) *Persistence {
	return &Persistence{client: client, retention: retention, logger: logger}
}

func key(handle models.ExecutionHandle) string {
	return keyPrefix + handle.String()
}

func (p *Persistence) SaveLaunch(ctx context.Context, launch *models.Launch) error {
	data, err := json.Marshal(launch)
	if err != nil {
		return fmt.Errorf("failed to marshal launch %s: %w", launch.Handle, err)
	}

	err = p.client.Set(ctx, key(launch.Handle), data, p.retention).Err()
	if err != nil {
		return persistence.NewLaunchError("SaveLaunch", launch.Handle.String(), err)
	}

	return nil
}

func (p *Persistence) LaunchByHandle(ctx context.Context, handle models.ExecutionHandle) (*models.Launch, error) {
	raw, err := p.client.Get(ctx, key(handle)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewLaunchError("LaunchByHandle", handle.String(), persistence.ErrLaunchNotFound)
	}

	if err != nil {
		return nil, persistence.NewLaunchError("LaunchByHandle", handle.String(), err)
	}

	var launch models.Launch

	err = json.Unmarshal(raw, &launch)
	if err != nil {
		p.logger.WarnContext(ctx, "Discarding unreadable launch record", "execution_arn", handle, "error", err)

		return nil, persistence.NewLaunchError("LaunchByHandle", handle.String(), persistence.ErrLaunchNotFound)
	}

	return &launch, nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

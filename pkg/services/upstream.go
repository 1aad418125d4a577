package services

import (
	"context"
	"time"
)

// DefaultUpstreamTimeout bounds a dependency call when no timeout is configured.
const DefaultUpstreamTimeout = 2 * time.Second

func withUpstreamTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

// Package eventbus publishes pipeline events to a message broker.
package eventbus

import (
	"context"

	"github.com/dukex/hl7autoct/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	// Publish sends the event keyed by key, which brokers use for partitioning.
	Publish(ctx context.Context, key string, event Event) error
}

type EventBus interface {
	EventPublisher
	Close() error
}

// NoopEventBus drops every event.
type NoopEventBus struct{}

func (NoopEventBus) Publish(context.Context, string, Event) error { return nil }

func (NoopEventBus) Close() error { return nil }

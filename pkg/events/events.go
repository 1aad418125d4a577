// Package events defines the notifications published about pipeline runs.
package events

import (
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every pipeline event.
const Topic = "hl7autoct.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionLaunchedEvent EventType = "pipeline.execution.launched"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// ExecutionLaunched is published once the engine accepted a new run.
type ExecutionLaunched struct {
	BaseEvent

	ExecutionArn models.ExecutionHandle `json:"execution_arn"`
	RequestID    string                 `json:"request_id"`
	MessageBytes int                    `json:"message_bytes"`
}

func NewExecutionLaunched(launch *models.Launch, messageBytes int) *ExecutionLaunched {
	return &ExecutionLaunched{
		BaseEvent:    NewBaseEvent(ExecutionLaunchedEvent),
		ExecutionArn: launch.Handle,
		RequestID:    launch.RequestID,
		MessageBytes: messageBytes,
	}
}

func (e ExecutionLaunched) GetType() EventType {
	return ExecutionLaunchedEvent
}

// Package engine defines the boundary to the external workflow engine that
// runs the transformation pipeline.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
)

var (
	// ErrExecutionNotFound is returned when the engine has no run for the handle,
	// including runs that belong to another state machine.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrInvalidHandle is returned when the engine rejects the handle format.
	ErrInvalidHandle = errors.New("invalid execution handle")

	// ErrUnavailable covers transport failures, throttling and timeouts.
	ErrUnavailable = errors.New("workflow engine unavailable")
)

// Engine starts pipeline runs and reports on them.
type Engine interface {
	Start(ctx context.Context, input StartInput) (models.ExecutionHandle, error)
	Describe(ctx context.Context, handle models.ExecutionHandle) (*Description, error)
}

// StartInput is handed to the pipeline as its execution input.
type StartInput struct {
	// Name must be unique per run when set; engines may derive one otherwise.
	Name    string
	Payload json.RawMessage
}

// Description is a single snapshot of a run.
type Description struct {
	Handle models.ExecutionHandle
	Status models.ExecutionStatus

	// CurrentStep is the step the run is executing, if known.
	CurrentStep models.StepRef

	// ReachedSteps lists every step the run has entered or left. Engines derive
	// it from append-only history so that it never shrinks between polls.
	ReachedSteps []models.StepRef

	// Output is the final output record, only set once the run succeeded.
	Output json.RawMessage

	StartedAt time.Time
	StoppedAt *time.Time
}

// IsNotFound checks if an error indicates the engine has no such run.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsInvalidHandle checks if an error indicates a malformed handle.
func IsInvalidHandle(err error) bool {
	return errors.Is(err, ErrInvalidHandle)
}

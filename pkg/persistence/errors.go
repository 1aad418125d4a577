package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrLaunchNotFound indicates no launch was recorded for the handle.
	ErrLaunchNotFound = errors.New("launch not found")

	// ErrInvalidHandle indicates the handle cannot be used as a storage key.
	ErrInvalidHandle = errors.New("invalid handle for persistence")
)

// LaunchError wraps ledger errors with the operation and handle involved.
type LaunchError struct {
	Op     string // Operation being performed (e.g., "SaveLaunch")
	Handle string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s operation failed for execution %s: %v", e.Op, e.Handle, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func (e *LaunchError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewLaunchError(op, handle string, err error) *LaunchError {
	return &LaunchError{Op: op, Handle: handle, Err: err}
}

// IsLaunchNotFound checks if an error indicates the handle was never recorded.
func IsLaunchNotFound(err error) bool {
	return errors.Is(err, ErrLaunchNotFound)
}

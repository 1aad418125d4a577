// Package services implements launching pipeline runs and resolving their
// status and artifacts.
package services

import (
	"errors"
	"fmt"
)

// Client errors (4xx responses).
var (
	ErrValidation          = errors.New("invalid transformation request")
	ErrInvalidHandle       = errors.New("invalid execution arn")
	ErrExecutionNotFound   = errors.New("execution not found")
	ErrInvalidArtifactType = errors.New("invalid artifact type")

	// ErrArtifactNotFound means the run succeeded without producing the
	// requested artifact, as runs of older pipeline versions do for xmljs.
	ErrArtifactNotFound = errors.New("artifact not found")
)

// Dependency errors (5xx responses).
var (
	// ErrUpstreamUnavailable covers unreachable or slow dependencies. Callers
	// may retry with backoff.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrInvalidOutputRecord means a successful run produced an output record
	// this service cannot read.
	ErrInvalidOutputRecord = errors.New("invalid pipeline output record")
)

// Error codes used as problem types in API responses.
const (
	CodeValidation          = "validation_error"
	CodeInvalidHandle       = "invalid_handle"
	CodeExecutionNotFound   = "execution_not_found"
	CodeInvalidArtifactType = "invalid_artifact_type"
	CodeArtifactNotFound    = "artifact_not_found"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeInvalidOutputRecord = "invalid_output_record"
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message, safe to return to callers
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if an error should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidHandle) ||
		errors.Is(err, ErrInvalidArtifactType)
}

// IsNotFound checks if an error should return HTTP 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound) || errors.Is(err, ErrArtifactNotFound)
}

// IsUpstreamError checks if an error was caused by a dependency.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrInvalidOutputRecord)
}

// ErrorCode returns the code of the outermost ServiceError in the chain.
func ErrorCode(err error) string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code
	}

	return ""
}

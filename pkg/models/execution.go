// Package models defines the domain types shared by the execution launcher,
// the status resolver and the HTTP layer.
package models

import "strings"

// ExecutionHandle identifies one pipeline run on the workflow engine. It is an
// opaque token: the service compares handles for equality and presence only.
type ExecutionHandle string

// MaxHandleLength bounds the size of a handle accepted from callers.
const MaxHandleLength = 2048

func (h ExecutionHandle) String() string {
	return string(h)
}

// WellFormed reports whether the handle is a non-empty token without
// whitespace or control characters.
func (h ExecutionHandle) WellFormed() bool {
	if h == "" || len(h) > MaxHandleLength {
		return false
	}

	return !strings.ContainsFunc(string(h), func(r rune) bool {
		return r <= ' ' || r == 0x7f
	})
}

type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "PENDING"
	StatusRunning   ExecutionStatus = "RUNNING"
	StatusSucceeded ExecutionStatus = "SUCCEEDED"
	StatusFailed    ExecutionStatus = "FAILED"
	StatusTimedOut  ExecutionStatus = "TIMED_OUT"
	StatusAborted   ExecutionStatus = "ABORTED"
)

// IsTerminal reports whether no further progress will happen for the run.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut, StatusAborted:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the run ended without producing artifacts.
func (s ExecutionStatus) IsFailure() bool {
	return s == StatusFailed || s == StatusTimedOut || s == StatusAborted
}

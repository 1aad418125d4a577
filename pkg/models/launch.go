package models

import "time"

// Launch records that this service started a run. It is only consulted to
// tell a run the engine does not list yet apart from an unknown handle.
type Launch struct {
	Handle     ExecutionHandle `json:"execution_arn"`
	RequestID  string          `json:"request_id"`
	LaunchedAt time.Time       `json:"launched_at"`
}

// WithinGrace reports whether now is less than grace after the launch.
func (l *Launch) WithinGrace(now time.Time, grace time.Duration) bool {
	if l == nil {
		return false
	}

	return now.Sub(l.LaunchedAt) < grace
}

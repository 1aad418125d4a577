// Package web provides HTTP request and response types for the transformation API.
package web

import "time"

// LaunchTransformationRequest is the body of POST /transformations.
type LaunchTransformationRequest struct {
	HL7Message string `json:"hl7_message" validate:"required"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Checkers  map[string]string `json:"checkers"`
	Timestamp time.Time         `json:"timestamp"`
}

package ccc

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or malformed required parameter
	// (empty conversation id, missing skill).
	ErrValidation = errors.New("validation failed")

	// ErrNotConfigured is returned when no integration is configured
	// for the deployment.
	ErrNotConfigured = errors.New("no integration configured")

	// ErrPrecondition marks interpreter misuse: an extraction called
	// without a prior positive predicate check.
	ErrPrecondition = errors.New("precondition failed")

	// ErrNotFound marks an absent element where one was requested.
	// Absence discovered through a predicate is a boolean, never an error.
	ErrNotFound = errors.New("not found")

	// ErrTransport marks a downstream HTTP call that failed after the
	// shared retry policy was exhausted.
	ErrTransport = errors.New("transport failed")
)

// UpstreamError is a non-2xx response from a downstream platform,
// surfaced with its status and body so handlers can pass the message on.
type UpstreamError struct {
	Platform string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Platform, e.Status, e.Message)
}

// TransportErr wraps err so callers can match it with errors.Is(err, ErrTransport).
func TransportErr(platform string, err error) error {
	return fmt.Errorf("%s: %w: %w", platform, ErrTransport, err)
}

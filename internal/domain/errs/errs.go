// Package errs holds domain errors that handlers map to HTTP responses.
package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUpstream marks a failed language model call.
	ErrUpstream = errors.New("upstream provider failure")
	// ErrNotConfigured marks a feature whose backing service has no credentials or backend.
	ErrNotConfigured = errors.New("not configured")
)

// ValidationError is malformed or insufficient input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(field, format string, a ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, a...)}
}

// RateLimitError reports a rejected request and when the oldest slot frees up.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Second))
}

// UpstreamError wraps a provider failure with its HTTP status when known.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("upstream: %v", e.Err)
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

// Package apierr classifies client errors so callers can pick retry and
// redirect policy without string-matching: network failures and 5xx are
// recoverable, most 4xx are not, and malformed response bodies are
// validation failures that must never reach the entity store.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Category determines how an error should be handled by retry logic.
type Category int

const (
	// Recoverable errors may be retried with backoff: 5xx, timeouts,
	// connection failures.
	Recoverable Category = iota

	// Irrecoverable errors fail immediately: 401, 403, 404, 400 and other
	// client errors (except 408/429).
	Irrecoverable
)

func (c Category) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps an error with categorization metadata.
type ClassifiedError struct {
	Category   Category
	StatusCode int    // HTTP status (0 for non-HTTP errors)
	Body       string // response body snippet for debugging
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// ValidationError reports a response body that did not match the expected
// entity shape. Never retried; the payload is discarded before import.
type ValidationError struct {
	Resource string
	Cause    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Resource, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// IsIrrecoverable reports whether err should not be retried.
func IsIrrecoverable(err error) bool {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Category == Irrecoverable
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}
	return 0
}

// IsUnauthorized reports an HTTP 401.
func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }

// IsForbidden reports an HTTP 403.
func IsForbidden(err error) bool { return StatusCode(err) == http.StatusForbidden }

// IsNotFound reports an HTTP 404.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsValidation reports a malformed-payload failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

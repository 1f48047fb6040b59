package apierr

import "fmt"

// categoryFor maps HTTP status codes to categories. 408 and 429 are the two
// 4xx codes worth retrying; everything else client-side is final.
func categoryFor(statusCode int) Category {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return Recoverable
		default:
			return Irrecoverable
		}
	default:
		// 5xx and anything unexpected: be conservative and allow retry.
		return Recoverable
	}
}

// NewHTTPError builds a classified error for a non-2xx response.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	return &ClassifiedError{
		Category:   categoryFor(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: fmt.Errorf("%s failed: HTTP %d", operation, statusCode),
	}
}

// NewNetworkError builds a classified error for a request that failed before
// any response arrived. Always recoverable: the condition may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}

// NewValidationError wraps a decode or shape failure for resource.
func NewValidationError(resource string, cause error) *ValidationError {
	return &ValidationError{Resource: resource, Cause: cause}
}

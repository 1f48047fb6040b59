package client

import "github.com/fedikit/fedicache/internal/apierr"

// Error classification re-exports so SDK consumers compare against a single
// package instead of importing internals. The query layer derives its
// IsUnauthorized/IsForbidden state flags from these.

// IsUnauthorized reports an HTTP 401 — the caller should redirect to login.
func IsUnauthorized(err error) bool { return apierr.IsUnauthorized(err) }

// IsForbidden reports an HTTP 403 — the caller should show a permission
// message.
func IsForbidden(err error) bool { return apierr.IsForbidden(err) }

// IsNotFound reports an HTTP 404.
func IsNotFound(err error) bool { return apierr.IsNotFound(err) }

// IsValidation reports a response body that did not match the expected
// entity shape. Such payloads are never written into the entity store.
func IsValidation(err error) bool { return apierr.IsValidation(err) }

// IsRetryable reports whether the failure is worth retrying: network errors,
// 5xx, 408 and 429.
func IsRetryable(err error) bool { return !apierr.IsIrrecoverable(err) }

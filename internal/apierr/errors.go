// Package apierr classifies transcription backend failures into two
// sentinel classes and provides the retry ladder used on the retryable one.
//
// Provider-specific error types are mapped to these sentinels once, at the
// client boundary, with fmt.Errorf("%s: %w", msg, sentinel). Callers check
// with errors.Is(err, apierr.ErrUnavailable) etc.
package apierr

import "errors"

// Sentinel errors for backend interaction failures.
var (
	// ErrRejected indicates the backend refused the request (4xx class:
	// bad request, payload too large, auth). Not retryable.
	ErrRejected = errors.New("backend rejected request")

	// ErrUnavailable indicates a transient failure (5xx class, network
	// error, timeout, rate limit). Eligible for retry by the caller.
	ErrUnavailable = errors.New("backend unavailable")
)

package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Classify maps a backend client error onto ErrRejected or ErrUnavailable.
// Errors already carrying one of the sentinels pass through unchanged.
// Context cancellation also passes through so callers can tell an aborted
// run from a backend failure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRejected) || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ErrUnavailable)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}

	// Transport-level failures (DNS, connection reset, TLS) surface as
	// plain errors from the HTTP client. Treat them as transient.
	return fmt.Errorf("%s: %w", err.Error(), ErrUnavailable)
}

// classifyStatus maps an HTTP status code to a sentinel.
func classifyStatus(status int, msg string) error {
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= http.StatusInternalServerError:
		return fmt.Errorf("HTTP %d: %s: %w", status, msg, ErrUnavailable)
	case status >= http.StatusBadRequest:
		return fmt.Errorf("HTTP %d: %s: %w", status, msg, ErrRejected)
	default:
		return fmt.Errorf("HTTP %d: %s: %w", status, msg, ErrUnavailable)
	}
}

// IsRetryable reports whether err is worth retrying with backoff.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrUnavailable)
}

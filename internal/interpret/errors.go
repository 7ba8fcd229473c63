package interpret

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when an API key is required but missing.
	ErrNoAPIKey = errors.New("interpret: API key required")

	// ErrNoGestures is returned when a request carries nothing to interpret.
	ErrNoGestures = errors.New("interpret: no gestures to interpret")

	// ErrEmptyTimeline is returned for a timeline request with no moments.
	ErrEmptyTimeline = errors.New("interpret: empty timeline")
)

// APIError represents an error response from the interpretation API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Code is the error code (if provided).
	Code string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("interpret: API error %d (%s): %s",
			e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("interpret: API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsQuotaExhausted returns true when the account is out of credit.
// These are reported as 429 but never recover on retry, so callers
// should stop issuing requests for the rest of the run.
func (e *APIError) IsQuotaExhausted() bool {
	return e.StatusCode == 429 && e.Code == "insufficient_quota"
}

// IsRetryable returns true if the request should be retried.
func (e *APIError) IsRetryable() bool {
	if e.IsQuotaExhausted() {
		return false
	}
	return e.IsRateLimited() || e.IsServerError()
}

// ClientError wraps a transport-level error.
type ClientError struct {
	Err error
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	return fmt.Sprintf("interpret: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ClientError) Unwrap() error {
	return e.Err
}

// wrapErr wraps a non-API error with package context.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return &ClientError{Err: err}
}

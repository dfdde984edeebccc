package models

import (
	"fmt"
	"strings"
)

// NotAuthenticatedError means no way to obtain credentials exists: no cached
// token, no stored token, and no credentials configured.
type NotAuthenticatedError struct{}

func (NotAuthenticatedError) Error() string {
	return "not authenticated: use the coros_login tool or set COROS_EMAIL/COROS_PASSWORD env vars"
}

// HTTPError means the transport succeeded but the HTTP status signals failure.
type HTTPError struct {
	Status     int
	StatusText string
	Path       string
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("HTTP %d %s at %s", e.Status, e.StatusText, e.Path)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// APIError means the HTTP call returned 2xx but the envelope signals an
// application-level failure.
type APIError struct {
	Path    string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error at %s: %s (code: %s)", e.Path, e.Message, e.Code)
}

// NetworkError means the transport itself failed: DNS, connection refused,
// timeout, or a malformed response body.
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed at %s: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError means the caller's input was rejected before any network
// call was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NonNumericIDsError builds the ValidationError for deletion IDs that are
// not pure digit strings. Every offending ID is enumerated.
func NonNumericIDsError(ids []string) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("invalid program IDs (must be numeric): %s", strings.Join(ids, ", ")),
	}
}

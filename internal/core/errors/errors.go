// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Circuit breaker errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Lookup errors.
var (
	// ErrFeedbackNotFound indicates the feedback item does not exist or belongs to another organization.
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrAnalysisNotFound indicates the feedback item has no analysis yet.
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// Provider errors.
var (
	// ErrProviderNotConfigured indicates no usable AI provider was configured.
	ErrProviderNotConfigured = errors.New("ai provider not configured")

	// ErrProviderAuth indicates the AI provider rejected the credentials.
	ErrProviderAuth = errors.New("ai provider authentication failed")

	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedJudgment indicates the AI output could not be decoded into a judgment.
	ErrMalformedJudgment = errors.New("malformed judgment")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidID indicates an invalid identifier.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidReview indicates a review submission carried an invalid override.
	ErrInvalidReview = errors.New("invalid review")
)

// Auth errors.
var (
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// Rate limiting errors.
var (
	// ErrRateLimited indicates rate limiting was triggered.
	ErrRateLimited = errors.New("rate limited")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

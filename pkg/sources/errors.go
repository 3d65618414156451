package sources

import (
	"fmt"
	"time"
)

// SourceError represents a general source lookup error.
// It includes the source name, HTTP status code, and underlying error.
type SourceError struct {
	// Source is the name of the source that returned the error
	Source string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("source %q error (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("source %q error: %s", e.Source, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure: a missing API key on a
// source that requires one, or an HTTP 401/403 from the source.
type AuthError struct {
	// Source is the name of the source that rejected authentication
	Source string

	// Message is the error message
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("source %q authentication failed: %s", e.Source, e.Message)
}

// RateLimitError represents a rate limit exceeded error, either local
// (the source's token bucket is empty) or remote (HTTP 429).
type RateLimitError struct {
	// Source is the name of the rate limited source
	Source string

	// RetryAfter is the duration until the lookup could succeed
	RetryAfter time.Duration

	// Message is the error message
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("source %q rate limit exceeded (retry after %s): %s",
			e.Source, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("source %q rate limit exceeded: %s", e.Source, e.Message)
}

// TimeoutError represents a lookup that exceeded its per-source timeout.
type TimeoutError struct {
	// Source is the name of the source where the timeout occurred
	Source string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("source %q lookup timeout after %s", e.Source, e.Timeout)
}

// ParseError represents a malformed response from a source.
type ParseError struct {
	// Source is the name of the source that returned the malformed response
	Source string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("source %q response parse error: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid source configuration.
type ConfigError struct {
	// Source is the name of the misconfigured source
	Source string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("source %q configuration error for field %q: %s",
		e.Source, e.Field, e.Message)
}

// UnknownSourceError reports an operation against a source name the
// registry does not hold.
type UnknownSourceError struct {
	// Source is the unrecognized source name
	Source string
}

// Error implements the error interface.
func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source %q", e.Source)
}

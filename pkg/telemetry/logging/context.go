package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// ValidationIDKey is the context key for validation run IDs.
	ValidationIDKey contextKey = "validation_id"

	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"

	// SourceKey is the context key for source names.
	SourceKey contextKey = "source"
)

// WithValidationID adds a validation run ID to the context.
func WithValidationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ValidationIDKey, id)
}

// GetValidationID retrieves the validation run ID from the context.
func GetValidationID(ctx context.Context) string {
	if id, ok := ctx.Value(ValidationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds an HTTP request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID retrieves the HTTP request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithSource adds a source name to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the source name from the context.
func GetSource(ctx context.Context) string {
	if source, ok := ctx.Value(SourceKey).(string); ok {
		return source
	}
	return ""
}

// ContextAttrs extracts the known context fields as slog attributes,
// skipping any that are unset.
func ContextAttrs(ctx context.Context) []any {
	var attrs []any
	if id := GetValidationID(ctx); id != "" {
		attrs = append(attrs, slog.String(string(ValidationIDKey), id))
	}
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, slog.String(string(RequestIDKey), id))
	}
	if source := GetSource(ctx); source != "" {
		attrs = append(attrs, slog.String(string(SourceKey), source))
	}
	return attrs
}

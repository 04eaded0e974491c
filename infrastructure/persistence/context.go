// Package persistence holds cross-store persistence helpers.
package persistence

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// ContextWithRequestID attaches the request ID so downstream layers
// (repositories, the gorm logger) can correlate their logs.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID, or "" when none is attached.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

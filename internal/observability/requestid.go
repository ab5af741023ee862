package observability

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// requestIDContextKey is a custom type to avoid context key collisions
type requestIDContextKey string

const requestIDKey requestIDContextKey = "request_id"

// WithRequestID stores a request ID on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Checks our context key first, then chi's.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		return requestID
	}
	return chimw.GetReqID(ctx)
}

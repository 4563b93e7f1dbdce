package middleware

import (
	"context"

	"go-blog-app/internal/session"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey = contextKey("admin_session")

// GetSession retrieves the resolved admin session from the request context,
// or nil for an anonymous request.
func GetSession(ctx context.Context) *session.Record {
	if record, ok := ctx.Value(sessionContextKey).(*session.Record); ok {
		return record
	}
	return nil
}

// WithSession adds the resolved admin session to the request context.
func WithSession(ctx context.Context, record *session.Record) context.Context {
	return context.WithValue(ctx, sessionContextKey, record)
}

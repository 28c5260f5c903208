package auth

import (
	"context"
)

// contextKey is a private type for context values set by this package.
type contextKey struct{}

// userIDKey holds the authenticated user's identifier.
var userIDKey = contextKey{}

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID extracts the authenticated user's ID from the context.
// ok is false for requests that did not pass the middleware.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

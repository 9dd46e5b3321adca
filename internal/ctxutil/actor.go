// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the acting user's platform id.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// WithActorID returns a context with the acting user id embedded.
func WithActorID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ActorKey{}, userID)
}

// ActorFromContext returns the acting user id from context, or 0 if not set.
func ActorFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(ActorKey{}).(int64); ok {
		return v
	}
	return 0
}

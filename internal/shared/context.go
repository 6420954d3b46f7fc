package shared

import "context"

type contextKey string

const actorContextKey contextKey = "dukaan.actor"

// ContextWithActor stores the acting user id in the context.
func ContextWithActor(ctx context.Context, actorID int64) context.Context {
	return context.WithValue(ctx, actorContextKey, actorID)
}

// ActorFromContext returns the acting user id, or 0 when anonymous.
func ActorFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(actorContextKey).(int64); ok {
		return id
	}
	return 0
}

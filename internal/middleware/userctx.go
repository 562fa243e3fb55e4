package middleware

import (
	"context"

	"github.com/baharkarakas/hbnb-api/internal/policy"
)

type actorKey struct{}

func WithActor(ctx context.Context, a policy.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the zero (anonymous) Actor when none was set.
func ActorFrom(ctx context.Context) policy.Actor {
	if v := ctx.Value(actorKey{}); v != nil {
		if a, ok := v.(policy.Actor); ok {
			return a
		}
	}
	return policy.Actor{}
}

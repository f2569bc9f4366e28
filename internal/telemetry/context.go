package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type turnIDKey struct{}

// WithTurnID returns a child context that carries the provided turn ID.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey{}, id)
}

// NewTurn attaches a fresh random turn ID to ctx.
func NewTurn(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithTurnID(ctx, id), id
}

// TurnIDFromContext returns the turn ID from ctx, if present.
// Returns "", false if the value is missing or empty.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(turnIDKey{}).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

package apiclient

import (
	"context"

	"github.com/google/uuid"
)

type idempotencyKey struct{}

// NewIdempotencyKey returns a fresh key in the UUID form the backend validates
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// WithIdempotencyKey marks every unsafe request made with ctx as a retry of
// the same logical write
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func IdempotencyKeyFrom(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}

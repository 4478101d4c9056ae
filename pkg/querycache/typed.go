package querycache

import (
	"context"
	"fmt"
	"time"
)

// Value is a typed Result
type Value[T any] struct {
	Data      T
	Err       error
	Stale     bool
	FetchedAt time.Time
}

// Load is Fetch with the type assertion done once here instead of at every
// call site
func Load[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, fetch func(context.Context) (T, error)) (Value[T], error) {
	res, err := c.Fetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return Value[T]{Err: err}, err
	}

	data, ok := res.Data.(T)
	if !ok && res.Data != nil {
		err := fmt.Errorf("querycache: %s holds %T", key.String(), res.Data)
		return Value[T]{Err: err}, err
	}

	return Value[T]{
		Data:      data,
		Err:       res.Err,
		Stale:     res.Stale,
		FetchedAt: res.FetchedAt,
	}, nil
}

package paramstore

import (
	"context"
)

type params interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

type cache interface {
	Get(key string) (string, bool)
	Add(key, value string) bool
	Remove(key string) bool
}

// Cached serves repeated reads from memory. Writes go through to the store.
type Cached struct {
	params params
	cache  cache
}

func NewCached(params params, cache cache) *Cached {
	return &Cached{
		params: params,
		cache:  cache,
	}
}

func (c *Cached) Get(ctx context.Context, key string) (string, error) {
	if value, ok := c.cache.Get(key); ok {
		return value, nil
	}

	value, err := c.params.Get(ctx, key)
	if err != nil {
		return "", err
	}

	c.cache.Add(key, value)

	return value, nil
}

func (c *Cached) Put(ctx context.Context, key, value string) error {
	if err := c.params.Put(ctx, key, value); err != nil {
		c.cache.Remove(key)
		return err
	}

	c.cache.Add(key, value)

	return nil
}

package cache_impl

import (
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type CacheI[K comparable, V any] interface {
	Get(key K) (value V, ok bool)
	Add(key K, value V) (evicted bool)
	Remove(key K) (present bool)
}

type Cache[K comparable, V any] struct {
	cache CacheI[K, V]
	log   *slog.Logger
}

func NewCache[K comparable, V any](cache CacheI[K, V], log *slog.Logger) *Cache[K, V] {
	return &Cache[K, V]{
		cache: cache,
		log:   log,
	}
}

// NewExpirable builds a Cache on top of an expirable LRU.
func NewExpirable[K comparable, V any](log *slog.Logger, size int, ttl time.Duration) *Cache[K, V] {
	return NewCache[K, V](expirable.NewLRU[K, V](size, nil, ttl), log)
}

func (c *Cache[K, V]) Add(key K, value V) (evicted bool) {
	evicted = c.cache.Add(key, value)
	if evicted {
		c.log.Debug("cache eviction", slog.Any("key", key))
	}

	return evicted
}

func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	return c.cache.Get(key)
}

func (c *Cache[K, V]) Remove(key K) bool {
	return c.cache.Remove(key)
}

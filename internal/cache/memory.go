package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process Cache used when no Redis URL is configured.
// Entries are lost on restart and are not shared between replicas.
type MemoryCache struct {
	mu    sync.Mutex
	store *gocache.Cache
}

func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	c.store.Set(key, buf, ttl)
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := c.store.Get(key)
	if !found {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// IncrWithExpiry starts a counter at 1 with the given expiry. Later increments
// keep the original expiry, matching the Redis implementation.
func (c *MemoryCache) IncrWithExpiry(_ context.Context, key string, expiry time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.store.IncrementInt64(key, 1)
	if err == nil {
		return n, nil
	}
	c.store.Set(key, int64(1), expiry)
	return 1, nil
}

var _ Cache = (*MemoryCache)(nil)

package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"doitnow/internal/core/port"
)

// MemoryCache keeps entries in process. Used when no Redis is configured.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}

	m.store.Set(key, value, ttl)

	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	value, found := m.store.Get(key)
	if !found {
		return nil, port.ErrCacheMiss
	}

	data, ok := value.([]byte)
	if !ok {
		return nil, port.ErrCacheMiss
	}

	return data, nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

func (m *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	for key := range m.store.Items() {
		if strings.HasPrefix(key, prefix) {
			m.store.Delete(key)
		}
	}

	return nil
}

func (m *MemoryCache) Close() error {
	m.store.Flush()
	return nil
}

func (m *MemoryCache) ItemCount() int {
	return m.store.ItemCount()
}

package storage

import (
	"context"
	"sync"
)

// MemoryCache is a process-local Cache. Namespaces let several sessions share
// one instance without seeing each other's keys.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[key]
	return v, ok
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.values)
}

// Namespaced prefixes every key of an underlying cache.
type Namespaced struct {
	Cache  Cache
	Prefix string
}

// ForUser scopes cache to username.
func ForUser(cache Cache, username string) Cache {
	return &Namespaced{Cache: cache, Prefix: username + ":"}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, bool) {
	return n.Cache.Get(ctx, n.Prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.Cache.Set(ctx, n.Prefix+key, value)
}

// MemoryAdapter keeps blobs in memory. It backs the CLI dry runs and tests.
type MemoryAdapter struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryAdapter creates an empty in-memory Adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{blobs: make(map[string][]byte)}
}

func (m *MemoryAdapter) Name() string { return "memory" }

func (m *MemoryAdapter) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryAdapter) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = cp
	return nil
}

package cache

import (
	"context"
	"sync"
	"time"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

type memoryEntry struct {
	completion *models.Completion
	createdAt  time.Time
}

// MemoryCache is the process-local completion cache. Entries expire after ttl
// and the oldest-created entry is evicted once more than maxEntries exist.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*models.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}

	if c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		return nil, nil
	}

	completion := *entry.completion
	return &completion, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, completion *models.Completion) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *completion
	c.entries[key] = memoryEntry{completion: &stored, createdAt: c.now()}

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictOldest()
	}

	return nil
}

// evictOldest removes the oldest-created entry. Caller holds mu.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.createdAt.Before(oldest) {
			oldestKey = key
			oldest = entry.createdAt
		}
	}
	delete(c.entries, oldestKey)
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Len(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries), nil
}

func (c *MemoryCache) Close() error {
	return nil
}

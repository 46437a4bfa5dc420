package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

const defaultCleanupInterval = 10 * time.Minute

// entry is a JSON-encoded value with its expiry
type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Stats is a point-in-time view of cache usage
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// MemoryCache is a thread-safe in-memory cache with TTL support.
// Values are stored JSON-encoded, so a Get returns the decoded generic form
// (strings, float64, []any, map[string]any) rather than the original type.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time

	hits   atomic.Uint64
	misses atomic.Uint64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache creates a cache whose janitor goroutine evicts expired
// entries every cleanupInterval. Close stops the janitor.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	c := &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.janitor(cleanupInterval)
	return c
}

// Get retrieves a value, or domain.ErrCacheMiss when absent or expired
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiresAt) {
		c.misses.Add(1)
		return nil, domain.ErrCacheMiss
	}

	var value interface{}
	if err := json.Unmarshal(e.payload, &value); err != nil {
		return nil, err
	}
	c.hits.Add(1)
	return value, nil
}

// Set stores value for ttl
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{payload: payload, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return ok && !c.now().After(e.expiresAt), nil
}

// Size returns the number of stored entries, expired ones included until evicted
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports entry count and hit/miss counters
func (c *MemoryCache) Stats() Stats {
	return Stats{Entries: c.Size(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Close stops the janitor and waits for it to exit. It is safe to call twice.
func (c *MemoryCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}

func (c *MemoryCache) janitor(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *MemoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

package cache

import (
	"context"
	"sync"
	"time"
)

// item represents a cached value with expiration
type item struct {
	value      string
	expiration int64
}

// expired checks if the cache item has expired at now (unix nanos)
func (i item) expired(now int64) bool {
	return i.expiration > 0 && now > i.expiration
}

// Memory is a thread-safe in-memory cache with expiration
type Memory struct {
	items    map[string]item
	mu       sync.RWMutex
	maxItems int
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewMemory creates an in-memory cache holding at most maxItems entries.
// Expired entries are swept every cleanupInterval when it is positive.
func NewMemory(maxItems int, cleanupInterval time.Duration) *Memory {
	c := &Memory{
		items:    make(map[string]item),
		maxItems: maxItems,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.startCleanupTimer(cleanupInterval)
	}

	return c
}

// Set adds a value to the cache. A non-positive ttl never expires.
func (c *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = c.now().Add(ttl).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	c.items[key] = item{value: value, expiration: exp}
	return nil
}

// Get retrieves a value from the cache
func (c *Memory) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || it.expired(c.now().UnixNano()) {
		return "", false, nil
	}
	return it.value, true, nil
}

// Delete removes a value from the cache
func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Count returns the number of items in the cache (including expired items)
func (c *Memory) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Close stops the cleanup goroutine
func (c *Memory) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *Memory) startCleanupTimer(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Memory) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for k, v := range c.items {
		if v.expired(now) {
			delete(c.items, k)
		}
	}
}

// evictOldest removes the entry closest to expiry; entries without expiry go last
func (c *Memory) evictOldest() {
	var oldestKey string
	var oldest int64
	first := true

	for k, v := range c.items {
		exp := v.expiration
		if exp == 0 {
			exp = 1<<63 - 1
		}
		if first || exp < oldest {
			oldestKey, oldest, first = k, exp, false
		}
	}

	if !first {
		delete(c.items, oldestKey)
	}
}

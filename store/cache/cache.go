// Package cache provides a small in-process LRU used by the store to front
// hot, immutable entries. It is not the generation cache itself; the durable
// generation cache lives in the database.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config configures a Cache.
type Config struct {
	// Capacity is the maximum number of entries (default: 1000).
	Capacity int
	// DefaultTTL is the expiration applied when Set is called with ttl <= 0
	// (default: 5 minutes).
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept (default: 1 minute).
	CleanupInterval time.Duration
}

// Cache is an LRU cache with TTL support, safe for concurrent use.
type Cache struct {
	capacity   int
	defaultTTL time.Duration

	mu    sync.Mutex
	items map[string]*entry
	order *list.List

	done chan struct{}
	wg   sync.WaitGroup
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	element   *list.Element
}

// New creates a new Cache and starts its background sweep.
func New(cfg Config) *Cache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1000
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	c := &Cache{
		capacity:   cfg.Capacity,
		defaultTTL: cfg.DefaultTTL,
		items:      make(map[string]*entry),
		order:      list.New(),
		done:       make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweepLoop(cfg.CleanupInterval)

	return c
}

// Close stops the background sweep.
func (c *Cache) Close() {
	close(c.done)
	c.wg.Wait()
}

// Get retrieves a value, refreshing its recency.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.remove(e)
		return nil, false
	}

	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores a value, evicting the least recently used entries at capacity.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.items) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest.Value.(*entry))
	}

	e := &entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	e.element = c.order.PushFront(e)
	c.items[key] = e
}

// Delete removes a key. Deleting an absent key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.remove(e)
	}
}

// Size returns the number of live entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) remove(e *entry) {
	c.order.Remove(e.element)
	delete(c.items, e.key)
}

func (c *Cache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.items {
		if now.After(e.expiresAt) {
			c.remove(e)
		}
	}
}

// Package cache provides the in-memory LRU response cache with a time-to-live.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultTTL is how long a stored payload is served.
	DefaultTTL = 5 * time.Minute
	// DefaultCapacity bounds the number of entries.
	DefaultCapacity = 256
)

// Entry is a cached payload and when it was stored.
type Entry struct {
	Key      string
	Payload  []byte
	StoredAt time.Time
}

// ResponseCache is an LRU cache whose entries expire once now - StoredAt > TTL.
// Concurrent writers to the same key are last-writer-wins.
type ResponseCache struct {
	capacity int
	ttl      time.Duration
	clock    clockwork.Clock

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
}

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResponseCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCapacity sets the maximum number of entries.
func WithCapacity(n int) Option {
	return func(c *ResponseCache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock sets the clock used for StoredAt and expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(c *ResponseCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New returns an empty cache.
func New(opts ...Option) *ResponseCache {
	c := &ResponseCache{
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		clock:    clockwork.NewRealClock(),
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured lifetime.
func (c *ResponseCache) TTL() time.Duration { return c.ttl }

// Get returns the payload for key if present and not expired. Expired entries are dropped.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := elem.Value.(*Entry)
	if c.clock.Since(e.StoredAt) > c.ttl {
		c.removeElement(elem)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return e.Payload, true
}

// Set stores payload under key, evicting the least recently used entry when full.
func (c *ResponseCache) Set(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*Entry)
		e.Payload = payload
		e.StoredAt = now
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(&Entry{Key: key, Payload: payload, StoredAt: now})
	c.entries[key] = elem
	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// DeleteMatching removes every key containing substr and returns how many were removed.
// An empty substr clears the cache.
func (c *ResponseCache) DeleteMatching(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if substr == "" {
		n := c.lru.Len()
		c.entries = make(map[string]*list.Element)
		c.lru.Init()
		return n
	}
	removed := 0
	for key, elem := range c.entries {
		if strings.Contains(key, substr) {
			c.removeElement(elem)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *ResponseCache) Clear() {
	c.DeleteMatching("")
}

// Len returns the number of stored entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Keys returns the stored keys, most recently used first.
func (c *ResponseCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.lru.Len())
	for e := c.lru.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*Entry).Key)
	}
	return keys
}

func (c *ResponseCache) removeElement(elem *list.Element) {
	c.lru.Remove(elem)
	delete(c.entries, elem.Value.(*Entry).Key)
}

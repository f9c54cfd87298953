package data

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"geyser-scheduler/internal/schedule"
)

// CacheEntry is a stored schedule result.
type CacheEntry struct {
	Result    *schedule.Result
	ExpiresAt time.Time
}

// ResultCache keeps schedule results in memory so their timelines can be
// fetched after the schedule response was returned. Entries expire after ttl.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewResultCache starts a cache whose cleanup runs every sweep. Call Close to stop it.
func NewResultCache(ttl, sweep time.Duration) *ResultCache {
	c := &ResultCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go c.cleanup(sweep)
	return c
}

// Put stores res and returns its new ID.
func (c *ResultCache) Put(res *schedule.Result) string {
	id := uuid.NewString()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[id] = &CacheEntry{
		Result:    res,
		ExpiresAt: c.now().Add(c.ttl),
	}
	return id
}

// Get retrieves a result if available and not expired
func (c *ResultCache) Get(id string) (*schedule.Result, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[id]
	if !exists || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Result, true
}

// Len counts stored entries, expired ones included until the next sweep.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries from the cache
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*CacheEntry)
}

func (c *ResultCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries
func (c *ResultCache) cleanup(sweep time.Duration) {
	ticker := time.NewTicker(sweep)
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

func (c *ResultCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for id, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, id)
		}
	}
}

// Package core holds the in-process session cache and the clock abstraction it is tested with.
package core

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

// Session cache defaults.
const (
	DefaultSessionCacheTTL     = 5 * time.Minute
	DefaultSessionCacheMaxSize = 1000
)

// SessionCacheConfig holds tunables for SessionCache.
type SessionCacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// DefaultSessionCacheConfig returns a SessionCacheConfig with the standard defaults.
func DefaultSessionCacheConfig() SessionCacheConfig {
	return SessionCacheConfig{
		TTL:     DefaultSessionCacheTTL,
		MaxSize: DefaultSessionCacheMaxSize,
	}
}

// CacheEntry is an immutable session snapshot plus the time it was cached.
type CacheEntry struct {
	Record   domainauth.SessionRecord
	CachedAt time.Time
}

// SessionCacheStats is a point-in-time view of cache counters.
type SessionCacheStats struct {
	Size      int
	Hits      uint64
	Misses    uint64
	Stale     uint64
	Evictions uint64
	Swept     uint64
}

type cacheSlot struct {
	entry CacheEntry
	elem  *list.Element
}

// SessionCache is a size- and time-bounded in-process map from session id to a
// known-good session snapshot. It is safe for concurrent use.
//
// Eviction on overflow removes the first-inserted key. Refreshing an existing key
// replaces its entry but keeps its original position, so a frequently refreshed
// old session is evicted ahead of a newer idle one. This is insertion order, not LRU.
type SessionCache struct {
	ttl     time.Duration
	maxSize int

	mu    sync.RWMutex
	slots map[string]*cacheSlot
	order *list.List // session ids, front = first inserted
	// gen increments on every Invalidate and InvalidateUser, present key or not.
	gen uint64

	hits      atomic.Uint64
	misses    atomic.Uint64
	stale     atomic.Uint64
	evictions atomic.Uint64
	swept     atomic.Uint64
}

// NewSessionCache creates an empty SessionCache. Non-positive values fall back to defaults.
func NewSessionCache(cfg SessionCacheConfig) *SessionCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionCacheTTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultSessionCacheMaxSize
	}
	return &SessionCache{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		slots:   make(map[string]*cacheSlot, cfg.MaxSize),
		order:   list.New(),
	}
}

// TTL returns the staleness bound.
func (c *SessionCache) TTL() time.Duration { return c.ttl }

// MaxSize returns the entry bound.
func (c *SessionCache) MaxSize() int { return c.maxSize }

// Get returns the entry for sessionID whether or not it is stale. Reads never delete.
func (c *SessionCache) Get(sessionID string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	slot, ok := c.slots[sessionID]
	if !ok {
		return CacheEntry{}, false
	}
	return slot.entry, true
}

// Usable reports whether entry is younger than the TTL at now.
func (c *SessionCache) Usable(entry CacheEntry, now time.Time) bool {
	return now.Sub(entry.CachedAt) < c.ttl
}

// Lookup returns the entry only when it is present and usable at now.
// A stale entry is reported as absent but left in place for the sweeper.
func (c *SessionCache) Lookup(sessionID string, now time.Time) (CacheEntry, bool) {
	entry, ok := c.Get(sessionID)
	switch {
	case !ok:
		c.misses.Add(1)
		return CacheEntry{}, false
	case !c.Usable(entry, now):
		c.stale.Add(1)
		return CacheEntry{}, false
	default:
		c.hits.Add(1)
		return entry, true
	}
}

// Put stores a snapshot for sessionID. When the cache is full and sessionID is new,
// exactly one entry, the first inserted, is evicted first.
func (c *SessionCache) Put(sessionID string, rec domainauth.SessionRecord, cachedAt time.Time) {
	rec.User.Roles = rec.User.Roles.Clone()
	entry := CacheEntry{Record: rec, CachedAt: cachedAt}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(sessionID, entry)
}

func (c *SessionCache) putLocked(sessionID string, entry CacheEntry) {
	if slot, ok := c.slots[sessionID]; ok {
		c.slots[sessionID] = &cacheSlot{entry: entry, elem: slot.elem}
		return
	}

	if len(c.slots) >= c.maxSize {
		if front := c.order.Front(); front != nil {
			c.removeLocked(front.Value.(string))
			c.evictions.Add(1)
		}
	}

	elem := c.order.PushBack(sessionID)
	c.slots[sessionID] = &cacheSlot{entry: entry, elem: elem}
}

// Generation returns the invalidation counter. Capture it before reading the store and
// pass it to PutIfGeneration.
func (c *SessionCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// PutIfGeneration stores the snapshot only if no invalidation happened since gen was read.
// A store read that raced a revoke or disable therefore never lands in the cache.
func (c *SessionCache) PutIfGeneration(
	sessionID string,
	rec domainauth.SessionRecord,
	cachedAt time.Time,
	gen uint64,
) bool {
	rec.User.Roles = rec.User.Roles.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.putLocked(sessionID, CacheEntry{Record: rec, CachedAt: cachedAt})
	return true
}

// Invalidate removes sessionID unconditionally. It reports whether an entry was present.
func (c *SessionCache) Invalidate(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.removeLocked(sessionID)
}

// InvalidateUser removes every cached session belonging to userID and returns how many were removed.
func (c *SessionCache) InvalidateUser(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++

	removed := 0
	for id, slot := range c.slots {
		if slot.entry.Record.UserID == userID {
			c.removeLocked(id)
			removed++
		}
	}
	return removed
}

// Sweep removes every entry whose age at now is at least the TTL and returns the count removed.
func (c *SessionCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for e := c.order.Front(); e != nil; {
		next := e.Next()
		id := e.Value.(string)
		if slot := c.slots[id]; !c.Usable(slot.entry, now) {
			c.removeLocked(id)
			removed++
		}
		e = next
	}
	c.swept.Add(uint64(removed))
	return removed
}

// Len returns the number of cached entries, stale ones included.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}

// Stats returns a snapshot of the cache counters.
func (c *SessionCache) Stats() SessionCacheStats {
	return SessionCacheStats{
		Size:      c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Stale:     c.stale.Load(),
		Evictions: c.evictions.Load(),
		Swept:     c.swept.Load(),
	}
}

func (c *SessionCache) removeLocked(sessionID string) bool {
	slot, ok := c.slots[sessionID]
	if !ok {
		return false
	}
	c.order.Remove(slot.elem)
	delete(c.slots, sessionID)
	return true
}

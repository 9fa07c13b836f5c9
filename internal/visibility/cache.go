package visibility

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/KeckObservatory/planning-tool/internal/dome"
)

// CacheKey identifies one computed semester summary.
type CacheKey struct {
	TargetID string
	Dome     dome.Dome
	Semester string
}

type cacheEntry struct {
	summary  SemesterSummary
	computed time.Time
}

// Cache holds semester summaries keyed by target, dome and semester.
// Entries are replaced wholesale on Put, never patched.
type Cache struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	entries map[CacheKey]cacheEntry

	// Currently focused key for refresh logic
	focus CacheKey
}

// NewCache creates an empty cache using clock for entry timestamps.
func NewCache(clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		clock:   clock,
		entries: make(map[CacheKey]cacheEntry),
	}
}

// Get returns the cached summary for key.
func (c *Cache) Get(key CacheKey) (SemesterSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e.summary, ok
}

// Put stores summary under key, discarding any previous entry.
func (c *Cache) Put(key CacheKey, summary SemesterSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{summary: summary, computed: c.clock.Now()}
}

// ComputedAt returns when key was last stored.
func (c *Cache) ComputedAt(key CacheKey) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e.computed, ok
}

// Invalidate drops every entry for targetID, e.g. after its coordinates change.
func (c *Cache) Invalidate(targetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if k.TargetID == targetID {
			delete(c.entries, k)
		}
	}
}

// SetFocus updates the focused key and reports whether it changed.
func (c *Cache) SetFocus(key CacheKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := c.focus != key
	c.focus = key
	return changed
}

// Focus returns the currently focused key.
func (c *Cache) Focus() CacheKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.focus
}

// Len returns the number of cached summaries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

package pipeline

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
)

// Cache memoizes reconciled results keyed by lookback window. Entries stay
// valid for a fixed staleness interval; a Put replaces the entry wholesale.
// The clock is injected so staleness is testable without wall-clock coupling.
type Cache struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[int]cacheEntry
}

type cacheEntry struct {
	incidents  []domain.Incident
	computedAt time.Time
}

// NewCache creates a result cache with the given staleness interval. A nil
// clock means real time.
func NewCache(ttl time.Duration, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[int]cacheEntry),
	}
}

// Get returns the cached result for a lookback window. ok reports whether an
// entry exists at all; fresh reports whether it is within the staleness
// interval. A stale entry is still returned so callers can serve it as
// last-known-good when recomputation fails.
func (c *Cache) Get(days int) (incidents []domain.Incident, fresh, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[days]
	if !ok {
		return nil, false, false
	}
	return e.incidents, c.clock.Since(e.computedAt) < c.ttl, true
}

// Put stores a freshly computed result for a lookback window.
func (c *Cache) Put(days int, incidents []domain.Incident) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[days] = cacheEntry{incidents: incidents, computedAt: c.clock.Now()}
}

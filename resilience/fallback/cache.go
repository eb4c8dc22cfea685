package fallback

import (
	"errors"
	"time"

	"github.com/LerianStudio/lib-resilience/resilience/log"
	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrCacheMiss indicates a fallback was requested but nothing was cached
// for the key.
var ErrCacheMiss = errors.New("fallback: cache miss")

// DefaultCapacity bounds the cache when the caller does not size it.
const DefaultCapacity = 512

// Entry is a cached last-known-good value together with the instant it was
// stored. The cache never judges staleness; callers decide whether the age
// is acceptable.
type Entry struct {
	Key      string
	Value    any
	CachedAt time.Time
}

// Cache is a bounded last-known-good store with least-recently-used
// eviction and no self-expiry. It is written on every successful
// pass-through call and read only on the failure path.
type Cache struct {
	entries *lru.Cache[string, Entry]
	clock   clock.Clock
	logger  log.Logger
}

// NewCache creates a Cache bounded to capacity entries. Non-positive
// capacities fall back to DefaultCapacity; a nil logger falls back to the
// no-op logger.
func NewCache(capacity int, logger log.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if logger == nil {
		logger = &log.NoneLogger{}
	}

	entries, err := lru.New[string, Entry](capacity)
	if err != nil {
		// lru.New only fails on non-positive capacity, excluded above.
		panic(err)
	}

	return &Cache{
		entries: entries,
		clock:   clock.New(),
		logger:  logger,
	}
}

// WithClock overrides the time source used to stamp CachedAt.
func (c *Cache) WithClock(clk clock.Clock) *Cache {
	c.clock = clk

	return c
}

// Put stores the latest successful value for key, overwriting any previous
// entry and refreshing its recency.
func (c *Cache) Put(key string, value any) {
	c.entries.Add(key, Entry{
		Key:      key,
		Value:    value,
		CachedAt: c.clock.Now(),
	})
}

// Get returns the last-known-good entry for key, marking it recently used.
// Misses return ErrCacheMiss; they are an expected outcome, not a fault.
func (c *Cache) Get(key string) (Entry, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return Entry{}, ErrCacheMiss
	}

	c.logger.Debugf("serving degraded response for %q cached at %s",
		key, entry.CachedAt.Format(time.RFC3339))

	return entry, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return c.entries.Len() }

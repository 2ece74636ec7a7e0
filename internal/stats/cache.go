package stats

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a computed snapshot is served without recomputing.
const DefaultCacheTTL = 10 * time.Second

// Counters are the platform-wide headline figures.
type Counters struct {
	Students     int
	Jobs         int
	Applications int
	Offers       int
}

// PlaceholderCounters are served when no snapshot was ever computed and the
// store cannot be read.
var PlaceholderCounters = Counters{Students: 3000, Jobs: 150, Applications: 470, Offers: 300}

// Loader computes fresh counters.
type Loader func(ctx context.Context) (Counters, error)

// Result is a snapshot served by the cache.
type Result struct {
	Data       Counters
	ComputedAt time.Time
	Cached     bool
	Fallback   bool
	// Placeholder marks PlaceholderCounters served after a failed load.
	Placeholder bool
	Err         error
}

// Cache keeps the latest counters for a fixed TTL. It is safe for
// concurrent use.
type Cache struct {
	load Loader
	now  func() time.Time
	ttl  time.Duration

	mu         sync.Mutex
	snapshot   Counters
	computedAt time.Time
	hasData    bool
}

// NewCache constructs a cache over load.
func NewCache(load Loader, now func() time.Time, ttl time.Duration) *Cache {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{load: load, now: now, ttl: ttl}
}

// Get serves the snapshot while it is fresh and recomputes it otherwise.
func (c *Cache) Get(ctx context.Context) Result {
	c.mu.Lock()
	if c.hasData && c.now().Sub(c.computedAt) < c.ttl {
		res := Result{Data: c.snapshot, ComputedAt: c.computedAt, Cached: true}
		c.mu.Unlock()
		return res
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh recomputes unconditionally. Failures degrade to the last snapshot
// or to PlaceholderCounters.
func (c *Cache) Refresh(ctx context.Context) Result {
	var (
		counters Counters
		err      error
	)
	if c.load == nil {
		err = errLoaderMissing
	} else {
		counters, err = c.load(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if c.hasData {
			return Result{Data: c.snapshot, ComputedAt: c.computedAt, Cached: true, Fallback: true, Err: err}
		}
		return Result{Data: PlaceholderCounters, Placeholder: true, Err: err}
	}

	c.snapshot = counters
	c.computedAt = c.now()
	c.hasData = true
	return Result{Data: counters, ComputedAt: c.computedAt}
}

// Peek returns the current snapshot without recomputing.
func (c *Cache) Peek() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasData {
		return Result{}, false
	}
	return Result{Data: c.snapshot, ComputedAt: c.computedAt, Cached: true}, true
}

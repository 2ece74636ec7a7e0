package testfixtures

import (
	"fmt"
	"sync"
	"time"
)

// Clock is a manually driven time source.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the clock time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc returns Now for injection, or time.Now on a nil clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// IDGenerator yields "<prefix>-<n>" identifiers with one counter per prefix.
type IDGenerator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewIDGenerator returns a generator with every counter at zero.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{counters: make(map[string]int)}
}

// Next returns the next identifier for prefix.
func (g *IDGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[prefix]++
	return fmt.Sprintf("%s-%d", prefix, g.counters[prefix])
}

// For returns a generator function bound to prefix.
func (g *IDGenerator) For(prefix string) func() string {
	return func() string { return g.Next(prefix) }
}

// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether one more request under key fits the window.
// Implementations return true alongside any error so callers fail open.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// MemoryLimiter is a process local fixed window limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count     int
	windowEnd time.Time
}

// NewMemoryLimiter returns an empty limiter. A nil now selects time.Now.
func NewMemoryLimiter(now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{buckets: make(map[string]*bucket), now: now}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if key == "" || limit <= 0 || window <= 0 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.windowEnd) {
		l.sweepLocked(now)
		l.buckets[key] = &bucket{count: 1, windowEnd: now.Add(window)}
		return true, nil
	}
	if b.count >= limit {
		return false, nil
	}
	b.count++
	return true, nil
}

// sweepLocked drops expired buckets so idle keys do not accumulate.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		if !now.Before(b.windowEnd) {
			delete(l.buckets, key)
		}
	}
}

package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPushInterval is how often live subscribers receive counters.
const DefaultPushInterval = 2 * time.Second

const subscriberBuffer = 4

// Update is a message delivered to live subscribers.
type Update struct {
	Result    Result
	Timestamp time.Time
}

// Broadcaster fans cache refreshes out to live subscribers. Its ticker runs
// only while at least one subscriber is registered: it starts when the
// count goes from 0 to 1 and stops when it returns to 0.
type Broadcaster struct {
	cache    *Cache
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu          sync.Mutex
	subscribers map[uint64]chan Update
	nextID      uint64
	stop        chan struct{}
	done        chan struct{}
	starts      int
}

// NewBroadcaster constructs a broadcaster refreshing cache every interval.
func NewBroadcaster(cache *Cache, interval time.Duration, now func() time.Time, logger *slog.Logger) *Broadcaster {
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		cache:       cache,
		interval:    interval,
		now:         now,
		logger:      logger,
		subscribers: make(map[uint64]chan Update),
	}
}

// Subscribe registers a subscriber and queues the current snapshot for it.
// The returned cancel function unregisters it and closes the channel; it is
// safe to call more than once.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[id] = ch
	if len(b.subscribers) == 1 {
		b.startLocked()
	}
	b.mu.Unlock()

	initial, ok := b.cache.Peek()
	if !ok {
		initial = b.cache.Get(ctx)
	}
	b.deliver(id, Update{Result: initial, Timestamp: b.now()})

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

// Subscribers returns the number of registered subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Running reports whether the push ticker is active.
func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stop != nil
}

func (b *Broadcaster) unsubscribe(id uint64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.subscribers, id)
	close(ch)

	var done chan struct{}
	if len(b.subscribers) == 0 && b.stop != nil {
		close(b.stop)
		done = b.done
		b.stop = nil
		b.done = nil
	}
	b.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (b *Broadcaster) startLocked() {
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	b.starts++
	go b.run(b.stop, b.done)
}

func (b *Broadcaster) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			result := b.cache.Refresh(ctx)
			if result.Err != nil {
				b.logger.WarnContext(ctx, "live stats refresh degraded", "error", result.Err, "fallback", result.Fallback, "placeholder", result.Placeholder)
			}
			b.broadcast(Update{Result: result, Timestamp: b.now()})
		}
	}
}

func (b *Broadcaster) broadcast(update Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
}

func (b *Broadcaster) deliver(id uint64, update Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subscribers[id]
	if !ok {
		return
	}
	select {
	case ch <- update:
	default:
	}
}

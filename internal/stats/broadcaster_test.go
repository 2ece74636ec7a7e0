package stats

import (
	"context"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case update, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		return update
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for update")
	}
	return Update{}
}

func TestBroadcaster_TickerFollowsSubscriberCount(t *testing.T) {
	loader := &scriptedLoader{data: Counters{Jobs: 5}}
	cache := NewCache(loader.Load, nil, time.Hour)
	b := NewBroadcaster(cache, 10*time.Millisecond, nil, nil)

	if b.Running() {
		t.Fatalf("expected ticker to be idle before any subscriber")
	}

	first, cancelFirst := b.Subscribe(context.Background())
	if got := receive(t, first); got.Result.Data.Jobs != 5 {
		t.Fatalf("expected initial snapshot, got %+v", got)
	}
	if !b.Running() {
		t.Fatalf("expected ticker to start with first subscriber")
	}

	second, cancelSecond := b.Subscribe(context.Background())
	receive(t, second)
	if b.Subscribers() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", b.Subscribers())
	}

	loader.set(Counters{Jobs: 6}, nil)
	deadline := time.After(2 * time.Second)
	for {
		update := receive(t, first)
		if update.Result.Data.Jobs == 6 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected refreshed counters to be pushed")
		default:
		}
	}

	cancelFirst()
	if !b.Running() {
		t.Fatalf("expected ticker to keep running while a subscriber remains")
	}

	cancelSecond()
	cancelSecond()
	if b.Running() {
		t.Fatalf("expected ticker to stop after last subscriber leaves")
	}
	if b.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", b.Subscribers())
	}

	for range second {
	}

	third, cancelThird := b.Subscribe(context.Background())
	defer cancelThird()
	receive(t, third)
	b.mu.Lock()
	starts := b.starts
	b.mu.Unlock()
	if starts != 2 {
		t.Fatalf("expected ticker to restart for a new subscriber, got %d starts", starts)
	}
}

func TestBroadcaster_InitialSnapshotUsesCache(t *testing.T) {
	loader := &scriptedLoader{data: Counters{Offers: 9}}
	cache := NewCache(loader.Load, nil, time.Hour)
	cache.Get(context.Background())

	b := NewBroadcaster(cache, time.Hour, nil, nil)
	ch, cancel := b.Subscribe(context.Background())
	defer cancel()

	update := receive(t, ch)
	if !update.Result.Cached || update.Result.Data.Offers != 9 {
		t.Fatalf("expected cached snapshot, got %+v", update.Result)
	}
	if loader.callCount() != 1 {
		t.Fatalf("expected subscribe to reuse the snapshot, got %d loads", loader.callCount())
	}
}

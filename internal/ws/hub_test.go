package ws

import (
	"testing"
	"time"

	"coin-portfolio/internal/db"
	"github.com/shopspring/decimal"
)

func TestHubPublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	_, first := hub.Subscribe()
	_, second := hub.Subscribe()

	stat := db.CoinStat{
		CoinID:       1,
		CurrentPrice: decimal.RequireFromString("50000"),
		RecordedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	hub.PublishStat(stat)

	for _, ch := range []<-chan StatUpdate{first, second} {
		select {
		case update := <-ch:
			if update.CoinID != 1 {
				t.Fatalf("unexpected coin id: %d", update.CoinID)
			}
			if !update.CurrentPrice.Equal(stat.CurrentPrice) {
				t.Fatalf("unexpected price: %s", update.CurrentPrice)
			}
			if update.RecordedAt != "2025-06-01T12:00:00Z" {
				t.Fatalf("unexpected timestamp format: %q", update.RecordedAt)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the update")
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	id, ch := hub.Subscribe()
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	hub.Unsubscribe(id)
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.SubscriberCount())
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}

	// Unsubscribing twice is harmless.
	hub.Unsubscribe(id)
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	hub.Subscribe()

	stat := db.CoinStat{CoinID: 1, CurrentPrice: decimal.New(1, 0), RecordedAt: time.Now()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer+10; i++ {
			hub.PublishStat(stat)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

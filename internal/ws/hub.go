// Package ws streams refreshed coin stats to connected clients. The
// refresh tick publishes into the hub; each subscriber drains its own
// buffered channel, and a subscriber that cannot keep up loses updates
// rather than blocking the tick.
package ws

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"coin-portfolio/internal/db"
	"github.com/shopspring/decimal"
)

const subscriberBuffer = 16

type StatUpdate struct {
	CoinID       int64               `json:"coin_id"`
	CurrentPrice decimal.Decimal     `json:"current_price"`
	MarketCap    decimal.NullDecimal `json:"market_cap"`
	Volume24h    decimal.NullDecimal `json:"volume_24h"`
	RecordedAt   string              `json:"recorded_at"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan StatUpdate
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]chan StatUpdate)}
}

// Subscribe registers a new session and returns its id and update channel.
func (h *Hub) Subscribe() (string, <-chan StatUpdate) {
	id := newSessionID()
	ch := make(chan StatUpdate, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	return id, ch
}

func (h *Hub) Unsubscribe(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[sessionID]; ok {
		delete(h.subscribers, sessionID)
		close(ch)
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// PublishStat fans a refreshed stat out to every subscriber without
// blocking; full channels drop the update.
func (h *Hub) PublishStat(stat db.CoinStat) {
	update := StatUpdate{
		CoinID:       stat.CoinID,
		CurrentPrice: stat.CurrentPrice,
		MarketCap:    stat.MarketCap,
		Volume24h:    stat.Volume24h,
		RecordedAt:   stat.RecordedAt.UTC().Format(time.RFC3339),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
}

func newSessionID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

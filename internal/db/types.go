package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type Coin struct {
	ID     int64
	Ticker string
	Name   string
}

// CoinStat is one timestamped price snapshot for a coin. At most one row
// exists per (CoinID, RecordedAt); the unique index backs the upsert.
type CoinStat struct {
	ID           int64
	CoinID       int64
	CurrentPrice decimal.Decimal
	MarketCap    decimal.NullDecimal
	Volume24h    decimal.NullDecimal
	RecordedAt   time.Time
}

// PortfolioEntry is the persisted part of a holding. Valuation figures are
// computed per request and never stored.
type PortfolioEntry struct {
	ID         int64
	UserID     int64
	CoinID     int64
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	EntryDate  time.Time
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

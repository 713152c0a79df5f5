// Package portfolio joins a user's holdings against the latest coin stats
// to produce valuated entries and a portfolio-level summary.
package portfolio

import (
	"context"
	"fmt"

	"coin-portfolio/internal/db"
	"coin-portfolio/internal/errs"
	"coin-portfolio/internal/valuation"
	"github.com/shopspring/decimal"
)

type CoinStore interface {
	GetCoinByID(ctx context.Context, id int64) (*db.Coin, error)
	ListCoinsByIDs(ctx context.Context, ids []int64) ([]db.Coin, error)
}

type StatsStore interface {
	LatestStatByCoin(ctx context.Context, coinID int64) (*db.CoinStat, error)
	LatestStatsForCoins(ctx context.Context, coinIDs []int64) (map[int64]db.CoinStat, error)
}

type EntryStore interface {
	ListEntriesByUser(ctx context.Context, userID int64) ([]db.PortfolioEntry, error)
	GetEntryForUser(ctx context.Context, id, userID int64) (*db.PortfolioEntry, error)
	InsertEntry(ctx context.Context, entry db.PortfolioEntry) (db.PortfolioEntry, error)
	UpdateEntryForUser(ctx context.Context, id, userID int64, entry db.PortfolioEntry) (bool, error)
	DeleteEntryForUser(ctx context.Context, id, userID int64) (bool, error)
}

// Entry is a persisted holding plus its derived figures. The split keeps
// the computed part structurally separate from what is stored.
type Entry struct {
	db.PortfolioEntry
	CoinTicker   string
	CoinName     string
	CurrentPrice decimal.Decimal
	Valuation    valuation.Valuation
}

type Summary struct {
	TotalInvestment           decimal.Decimal
	TotalCurrentValue         decimal.Decimal
	TotalProfitLoss           decimal.Decimal
	TotalProfitLossPercentage decimal.Decimal
	Entries                   []Entry
}

type Service struct {
	coins   CoinStore
	stats   StatsStore
	entries EntryStore
}

func NewService(coins CoinStore, stats StatsStore, entries EntryStore) *Service {
	return &Service{coins: coins, stats: stats, entries: entries}
}

// ListEntries valuates every holding of the user against the latest known
// stats. Stats and coin rows are fetched in one batch each, so the query
// count stays flat no matter how many entries the user has.
func (s *Service) ListEntries(ctx context.Context, userID int64) ([]Entry, error) {
	rows, err := s.entries.ListEntriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	coinIDs := distinctCoinIDs(rows)

	statsByCoin, err := s.stats.LatestStatsForCoins(ctx, coinIDs)
	if err != nil {
		return nil, err
	}
	coinsByID, err := s.coinMap(ctx, coinIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, buildEntry(row, coinsByID[row.CoinID], statsByCoin, row.CoinID))
	}
	return entries, nil
}

// GetEntry is scoped to the owning user. A missing row and a row owned by
// another user are both ErrNotFound; callers cannot distinguish them.
func (s *Service) GetEntry(ctx context.Context, id, userID int64) (Entry, error) {
	row, err := s.entries.GetEntryForUser(ctx, id, userID)
	if err != nil {
		return Entry{}, err
	}
	if row == nil {
		return Entry{}, fmt.Errorf("portfolio entry %d: %w", id, errs.ErrNotFound)
	}

	coin, err := s.coins.GetCoinByID(ctx, row.CoinID)
	if err != nil {
		return Entry{}, err
	}
	if coin == nil {
		return Entry{}, fmt.Errorf("coin %d: %w", row.CoinID, errs.ErrNotFound)
	}

	stat, err := s.stats.LatestStatByCoin(ctx, row.CoinID)
	if err != nil {
		return Entry{}, err
	}

	return valuatedEntry(*row, *coin, stat), nil
}

// CreateEntry rejects an unknown coin, then inserts and returns the entry
// valuated against current data when any exists.
func (s *Service) CreateEntry(ctx context.Context, entry db.PortfolioEntry) (Entry, error) {
	coin, err := s.coins.GetCoinByID(ctx, entry.CoinID)
	if err != nil {
		return Entry{}, err
	}
	if coin == nil {
		return Entry{}, fmt.Errorf("coin %d: %w", entry.CoinID, errs.ErrNotFound)
	}

	inserted, err := s.entries.InsertEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}

	stat, err := s.stats.LatestStatByCoin(ctx, inserted.CoinID)
	if err != nil {
		return Entry{}, err
	}
	return valuatedEntry(inserted, *coin, stat), nil
}

func (s *Service) UpdateEntry(ctx context.Context, id, userID int64, entry db.PortfolioEntry) error {
	coin, err := s.coins.GetCoinByID(ctx, entry.CoinID)
	if err != nil {
		return err
	}
	if coin == nil {
		return fmt.Errorf("coin %d: %w", entry.CoinID, errs.ErrNotFound)
	}

	updated, err := s.entries.UpdateEntryForUser(ctx, id, userID, entry)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("portfolio entry %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (s *Service) DeleteEntry(ctx context.Context, id, userID int64) error {
	deleted, err := s.entries.DeleteEntryForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("portfolio entry %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// Summary reduces the valuated entries into portfolio totals. A user with
// no entries gets all-zero totals and an empty entries list.
func (s *Service) Summary(ctx context.Context, userID int64) (Summary, error) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	totalInvestment := decimal.Zero
	totalCurrentValue := decimal.Zero
	for _, entry := range entries {
		totalInvestment = totalInvestment.Add(entry.EntryPrice.Mul(entry.Quantity))
		totalCurrentValue = totalCurrentValue.Add(entry.Valuation.CurrentValue)
	}

	totalProfitLoss := totalCurrentValue.Sub(totalInvestment)
	totalPercentage := decimal.Zero
	if totalInvestment.IsPositive() {
		totalPercentage = totalProfitLoss.Div(totalInvestment).Mul(hundred).Round(4)
	}

	return Summary{
		TotalInvestment:           totalInvestment,
		TotalCurrentValue:         totalCurrentValue,
		TotalProfitLoss:           totalProfitLoss,
		TotalProfitLossPercentage: totalPercentage,
		Entries:                   entries,
	}, nil
}

func distinctCoinIDs(rows []db.PortfolioEntry) []int64 {
	seen := make(map[int64]struct{}, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.CoinID]; ok {
			continue
		}
		seen[row.CoinID] = struct{}{}
		ids = append(ids, row.CoinID)
	}
	return ids
}

func (s *Service) coinMap(ctx context.Context, ids []int64) (map[int64]db.Coin, error) {
	coins, err := s.coins.ListCoinsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]db.Coin, len(coins))
	for _, coin := range coins {
		byID[coin.ID] = coin
	}
	return byID, nil
}

func buildEntry(row db.PortfolioEntry, coin db.Coin, statsByCoin map[int64]db.CoinStat, coinID int64) Entry {
	var stat *db.CoinStat
	if s, ok := statsByCoin[coinID]; ok {
		stat = &s
	}
	return valuatedEntry(row, coin, stat)
}

// valuatedEntry treats a missing stat as a zero current price; a holding
// with no price data reads as a full loss rather than an error.
func valuatedEntry(row db.PortfolioEntry, coin db.Coin, stat *db.CoinStat) Entry {
	currentPrice := decimal.Zero
	if stat != nil {
		currentPrice = stat.CurrentPrice
	}
	return Entry{
		PortfolioEntry: row,
		CoinTicker:     coin.Ticker,
		CoinName:       coin.Name,
		CurrentPrice:   currentPrice,
		Valuation:      valuation.Valuate(row.Quantity, row.EntryPrice, currentPrice),
	}
}

// Package refresh keeps coin statistics current: a scheduler drives a tick
// service that polls the external feeds for every coin in the catalog and
// upserts the results.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coin-portfolio/internal/db"
	"coin-portfolio/internal/market"
	"coin-portfolio/internal/telemetry"
)

type CoinCatalog interface {
	ListCoins(ctx context.Context) ([]db.Coin, error)
}

type StatsWriter interface {
	UpsertStat(ctx context.Context, stat db.CoinStat) (db.CoinStat, error)
	DeleteStatsOlderThan(ctx context.Context, days int) (int64, error)
}

// Publisher receives every successfully written stat; the websocket hub
// implements it. A nil publisher disables broadcasting.
type Publisher interface {
	PublishStat(stat db.CoinStat)
}

type Service struct {
	coins         CoinCatalog
	stats         StatsWriter
	source        market.Source
	publisher     Publisher
	retentionDays int
}

func NewService(coins CoinCatalog, stats StatsWriter, source market.Source, publisher Publisher, retentionDays int) *Service {
	return &Service{
		coins:         coins,
		stats:         stats,
		source:        source,
		publisher:     publisher,
		retentionDays: retentionDays,
	}
}

// RunOnce executes one tick: fetch the catalog, poll the feed per coin,
// upsert each result. A coin whose fetch or write fails is logged and
// skipped; only a catalog read failure makes the whole tick error, and the
// scheduler treats even that as a no-op tick rather than a reason to stop.
func (s *Service) RunOnce(ctx context.Context) error {
	telemetry.RecordRefreshTick()

	coins, err := s.coins.ListCoins(ctx)
	if err != nil {
		telemetry.RecordRefreshTickError()
		return fmt.Errorf("load coin catalog: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)

	for _, coin := range coins {
		quote, err := s.source.Fetch(ctx, coin.Ticker)
		if err != nil {
			telemetry.RecordRefreshCoinSkipped()
			slog.Warn("skipping coin refresh", "ticker", coin.Ticker, "error", err)
			continue
		}

		stat, err := s.stats.UpsertStat(ctx, db.CoinStat{
			CoinID:       coin.ID,
			CurrentPrice: quote.Price,
			MarketCap:    quote.MarketCap,
			Volume24h:    quote.Volume24h,
			RecordedAt:   now,
		})
		if err != nil {
			telemetry.RecordRefreshCoinSkipped()
			slog.Error("failed to write coin stat", "ticker", coin.Ticker, "error", err)
			continue
		}

		telemetry.RecordRefreshCoinUpdated()
		if s.publisher != nil {
			s.publisher.PublishStat(stat)
		}
	}

	s.prune(ctx)
	return nil
}

func (s *Service) prune(ctx context.Context) {
	if s.retentionDays <= 0 {
		return
	}
	deleted, err := s.stats.DeleteStatsOlderThan(ctx, s.retentionDays)
	if err != nil {
		slog.Error("failed to prune old stats", "error", err)
		return
	}
	if deleted > 0 {
		telemetry.RecordRefreshStatsPruned(deleted)
		slog.Info("pruned old stats", "deleted", deleted, "retention_days", s.retentionDays)
	}
}

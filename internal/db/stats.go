package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coin-portfolio/internal/errs"
	"github.com/jackc/pgx/v5"
)

const statColumns = "id, coin_id, current_price, market_cap, volume_24h, recorded_at"

func scanStat(row pgx.Row) (CoinStat, error) {
	var stat CoinStat
	err := row.Scan(&stat.ID, &stat.CoinID, &stat.CurrentPrice, &stat.MarketCap, &stat.Volume24h, &stat.RecordedAt)
	return stat, err
}

// LatestStatByCoin returns the most recent snapshot for the coin, or nil
// when the coin has no stats at all.
func (d *DB) LatestStatByCoin(ctx context.Context, coinID int64) (*CoinStat, error) {
	stat, err := scanStat(d.pool.QueryRow(ctx, `
		select `+statColumns+`
		from coin_stats
		where coin_id = $1
		order by recorded_at desc
		limit 1
	`, coinID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &stat, nil
}

func (d *DB) StatByCoinAndTime(ctx context.Context, coinID int64, at time.Time) (*CoinStat, error) {
	stat, err := scanStat(d.pool.QueryRow(ctx, `
		select `+statColumns+`
		from coin_stats
		where coin_id = $1 and recorded_at = $2
	`, coinID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &stat, nil
}

// StatsByCoinInRange returns snapshots ascending by timestamp, bounds
// inclusive. An inverted range is rejected rather than silently empty.
func (d *DB) StatsByCoinInRange(ctx context.Context, coinID int64, from, to time.Time) ([]CoinStat, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s before start %s: %w", to.Format(time.RFC3339), from.Format(time.RFC3339), errs.ErrInvalidInput)
	}

	rows, err := d.pool.Query(ctx, `
		select `+statColumns+`
		from coin_stats
		where coin_id = $1 and recorded_at >= $2 and recorded_at <= $3
		order by recorded_at asc
	`, coinID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []CoinStat{}
	for rows.Next() {
		stat, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// LatestStats returns the most recent snapshot for every coin that has one.
// Coins without stats are simply absent from the map.
func (d *DB) LatestStats(ctx context.Context) (map[int64]CoinStat, error) {
	rows, err := d.pool.Query(ctx, `
		select distinct on (coin_id) `+statColumns+`
		from coin_stats
		order by coin_id, recorded_at desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStatMap(rows)
}

// LatestStatsForCoins is the batched form used by the portfolio read path:
// one query regardless of how many distinct coins a user holds.
func (d *DB) LatestStatsForCoins(ctx context.Context, coinIDs []int64) (map[int64]CoinStat, error) {
	if len(coinIDs) == 0 {
		return map[int64]CoinStat{}, nil
	}

	rows, err := d.pool.Query(ctx, `
		select distinct on (coin_id) `+statColumns+`
		from coin_stats
		where coin_id = any($1::bigint[])
		order by coin_id, recorded_at desc
	`, coinIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStatMap(rows)
}

func (d *DB) StatsAtTime(ctx context.Context, at time.Time) (map[int64]CoinStat, error) {
	rows, err := d.pool.Query(ctx, `
		select `+statColumns+`
		from coin_stats
		where recorded_at = $1
	`, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStatMap(rows)
}

func collectStatMap(rows pgx.Rows) (map[int64]CoinStat, error) {
	stats := make(map[int64]CoinStat)
	for rows.Next() {
		stat, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		stats[stat.CoinID] = stat
	}
	return stats, rows.Err()
}

// UpsertStat writes one snapshot. When a row already exists for the
// (coin_id, recorded_at) key, only the price fields are overwritten; the
// timestamp is the key and is never rewritten. The conflict clause makes the
// write atomic with respect to the uniqueness constraint, so two concurrent
// upserts for the same key can never both insert.
func (d *DB) UpsertStat(ctx context.Context, stat CoinStat) (CoinStat, error) {
	row := d.pool.QueryRow(ctx, `
		insert into coin_stats (coin_id, current_price, market_cap, volume_24h, recorded_at)
		values ($1, $2, $3, $4, $5)
		on conflict (coin_id, recorded_at)
		do update set current_price = excluded.current_price,
		              market_cap = excluded.market_cap,
		              volume_24h = excluded.volume_24h
		returning `+statColumns+`
	`, stat.CoinID, stat.CurrentPrice, stat.MarketCap, stat.Volume24h, stat.RecordedAt)

	out, err := scanStat(row)
	if err != nil {
		return CoinStat{}, translateConstraint(err)
	}
	return out, nil
}

// DeleteStatsOlderThan prunes snapshots older than now minus the given
// number of days and reports how many rows went away.
func (d *DB) DeleteStatsOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := d.pool.Exec(ctx, `
		delete from coin_stats
		where recorded_at < now() - make_interval(days => $1)
	`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

func (d *DB) ListCoins(ctx context.Context) ([]Coin, error) {
	rows, err := d.pool.Query(ctx, `
		select id, ticker, name
		from coins
		order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coins []Coin
	for rows.Next() {
		var coin Coin
		if err := rows.Scan(&coin.ID, &coin.Ticker, &coin.Name); err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}
	return coins, rows.Err()
}

func (d *DB) ListCoinsByIDs(ctx context.Context, ids []int64) ([]Coin, error) {
	if len(ids) == 0 {
		return []Coin{}, nil
	}

	rows, err := d.pool.Query(ctx, `
		select id, ticker, name
		from coins
		where id = any($1::bigint[])
		order by id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coins []Coin
	for rows.Next() {
		var coin Coin
		if err := rows.Scan(&coin.ID, &coin.Ticker, &coin.Name); err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}
	return coins, rows.Err()
}

func (d *DB) GetCoinByID(ctx context.Context, id int64) (*Coin, error) {
	row := d.pool.QueryRow(ctx, `
		select id, ticker, name
		from coins
		where id = $1
	`, id)

	var coin Coin
	if err := row.Scan(&coin.ID, &coin.Ticker, &coin.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &coin, nil
}

// GetCoinByTicker is case-insensitive; tickers are stored uppercase.
func (d *DB) GetCoinByTicker(ctx context.Context, ticker string) (*Coin, error) {
	row := d.pool.QueryRow(ctx, `
		select id, ticker, name
		from coins
		where ticker = $1
	`, strings.ToUpper(strings.TrimSpace(ticker)))

	var coin Coin
	if err := row.Scan(&coin.ID, &coin.Ticker, &coin.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &coin, nil
}

// CreateCoin inserts a coin, or updates the display name in place when the
// ticker already exists. The conflict clause keeps the create-or-update
// policy atomic under concurrent callers.
func (d *DB) CreateCoin(ctx context.Context, coin Coin) (Coin, error) {
	row := d.pool.QueryRow(ctx, `
		insert into coins (ticker, name)
		values ($1, $2)
		on conflict (ticker)
		do update set name = excluded.name
		returning id, ticker, name
	`, strings.ToUpper(strings.TrimSpace(coin.Ticker)), coin.Name)

	var out Coin
	if err := row.Scan(&out.ID, &out.Ticker, &out.Name); err != nil {
		return Coin{}, translateConstraint(err)
	}
	return out, nil
}

func (d *DB) UpdateCoin(ctx context.Context, id int64, coin Coin) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		update coins
		set ticker = $1, name = $2
		where id = $3
	`, strings.ToUpper(strings.TrimSpace(coin.Ticker)), coin.Name, id)
	if err != nil {
		return false, translateConstraint(err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteCoin fails with ErrConflict while stats or portfolio entries still
// reference the coin; the foreign keys are declared restrict.
func (d *DB) DeleteCoin(ctx context.Context, id int64) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		delete from coins
		where id = $1
	`, id)
	if err != nil {
		return false, translateConstraint(err)
	}
	return tag.RowsAffected() > 0, nil
}

package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const entryColumns = "id, user_id, coin_id, quantity, entry_price, entry_date, coalesce(notes, ''), created_at, updated_at"

func scanEntry(row pgx.Row) (PortfolioEntry, error) {
	var e PortfolioEntry
	err := row.Scan(&e.ID, &e.UserID, &e.CoinID, &e.Quantity, &e.EntryPrice, &e.EntryDate, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (d *DB) ListEntriesByUser(ctx context.Context, userID int64) ([]PortfolioEntry, error) {
	rows, err := d.pool.Query(ctx, `
		select `+entryColumns+`
		from portfolio_entries
		where user_id = $1
		order by entry_date desc, id desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PortfolioEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetEntryForUser scopes the lookup to the owning user. A row that exists
// but belongs to someone else reads exactly like a missing row.
func (d *DB) GetEntryForUser(ctx context.Context, id, userID int64) (*PortfolioEntry, error) {
	entry, err := scanEntry(d.pool.QueryRow(ctx, `
		select `+entryColumns+`
		from portfolio_entries
		where id = $1 and user_id = $2
	`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (d *DB) InsertEntry(ctx context.Context, entry PortfolioEntry) (PortfolioEntry, error) {
	row := d.pool.QueryRow(ctx, `
		insert into portfolio_entries (user_id, coin_id, quantity, entry_price, entry_date, notes)
		values ($1, $2, $3, $4, $5, nullif($6, ''))
		returning `+entryColumns+`
	`, entry.UserID, entry.CoinID, entry.Quantity, entry.EntryPrice, entry.EntryDate, entry.Notes)

	out, err := scanEntry(row)
	if err != nil {
		return PortfolioEntry{}, translateConstraint(err)
	}
	return out, nil
}

// UpdateEntryForUser bumps updated_at and reports whether a row matched
// both id and user; the WHERE predicate is the ownership check.
func (d *DB) UpdateEntryForUser(ctx context.Context, id, userID int64, entry PortfolioEntry) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		update portfolio_entries
		set coin_id = $1, quantity = $2, entry_price = $3, entry_date = $4,
		    notes = nullif($5, ''), updated_at = now()
		where id = $6 and user_id = $7
	`, entry.CoinID, entry.Quantity, entry.EntryPrice, entry.EntryDate, entry.Notes, id, userID)
	if err != nil {
		return false, translateConstraint(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (d *DB) DeleteEntryForUser(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		delete from portfolio_entries
		where id = $1 and user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

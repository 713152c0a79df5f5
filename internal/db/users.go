package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const userColumns = "id, username, email, password_hash, created_at, updated_at"

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// InsertUser fails with ErrConflict when the username or email is taken.
func (d *DB) InsertUser(ctx context.Context, user User) (User, error) {
	row := d.pool.QueryRow(ctx, `
		insert into users (username, email, password_hash)
		values ($1, $2, $3)
		returning `+userColumns+`
	`, user.Username, user.Email, user.PasswordHash)

	out, err := scanUser(row)
	if err != nil {
		return User{}, translateConstraint(err)
	}
	return out, nil
}

func (d *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user, err := scanUser(d.pool.QueryRow(ctx, `
		select `+userColumns+`
		from users
		where username = $1
	`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user, err := scanUser(d.pool.QueryRow(ctx, `
		select `+userColumns+`
		from users
		where id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

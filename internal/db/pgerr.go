package db

import (
	"errors"
	"fmt"

	"coin-portfolio/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateConstraint maps Postgres constraint violations onto the shared
// sentinels so callers never have to inspect pgconn errors themselves.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", errs.ErrConflict, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", errs.ErrConflict, pgErr.ConstraintName)
	default:
		return err
	}
}

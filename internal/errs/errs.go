// Package errs holds the sentinel errors shared across stores and services.
package errs

import "errors"

var (
	// ErrNotFound covers both a genuinely absent row and a row owned by
	// another user; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrInvalidInput = errors.New("invalid input")

	ErrConflict = errors.New("already exists")
)

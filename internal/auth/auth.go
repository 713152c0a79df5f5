// Package auth issues and verifies the bearer tokens that carry a user's
// identity into the API, and hashes passwords for the register/login flow.
package auth

import "context"

type Claims struct {
	UserID   int64
	Username string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

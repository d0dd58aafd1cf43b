// Package service defines domain service interfaces implemented by the
// infrastructure layer.
package service

import (
	"errors"
	"time"

	"peppers/internal/domain/entity"
)

// ErrTokenInvalid is returned by Verify for every failure mode: bad
// signature, malformed encoding, wrong algorithm or an over-age token.
// Callers get no partial trust and no distinction beyond "invalid".
var ErrTokenInvalid = errors.New("token invalid")

// Claims is the logical payload of a verified bearer token.
type Claims struct {
	UserID   int64
	Role     entity.Role
	IssuedAt time.Time
}

// TokenService issues and verifies stateless, tamper-evident bearer tokens.
// Tokens carry no server-side state; revocation happens indirectly through
// user deactivation, which the auth middleware checks per request.
type TokenService interface {
	// Issue creates a signed token for the given subject and role.
	Issue(userID int64, role entity.Role) (string, error)

	// Verify validates the signature and the token age against maxAge.
	// A token whose age is exactly maxAge is already invalid.
	Verify(token string, maxAge time.Duration) (*Claims, error)
}

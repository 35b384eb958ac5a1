// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// BlacklistedToken keeps a revoked jti until the token would have expired
// on its own.
type BlacklistedToken struct {
	JTI       string    `db:"jti"`
	UserID    string    `db:"user_id"`
	TokenType string    `db:"token_type"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (t *BlacklistedToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

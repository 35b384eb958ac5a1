// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

type BlacklistRepository interface {
	// Add reports false when the jti was already blacklisted.
	Add(ctx context.Context, token *BlacklistedToken) (bool, error)
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type blacklistRepository struct {
	db  core.DBTX
	now func() time.Time
}

func NewBlacklistRepository(db core.DBTX) BlacklistRepository {
	return &blacklistRepository{db: db, now: time.Now}
}

func (r *blacklistRepository) Add(
	ctx context.Context,
	token *BlacklistedToken,
) (bool, error) {
	query := `
		INSERT INTO blacklisted_tokens (jti, user_id, token_type, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING
		RETURNING jti`

	var jti string
	err := r.db.GetContext(ctx, &jti, query,
		token.JTI,
		token.UserID,
		token.TokenType,
		token.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("blacklist token: %w", err)
	}

	return true, nil
}

// IsBlacklisted deletes the entry instead of reporting it when it has
// already passed its expiry.
func (r *blacklistRepository) IsBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	query := `
		SELECT jti, user_id, token_type, expires_at, created_at
		FROM blacklisted_tokens
		WHERE jti = $1`

	var token BlacklistedToken
	err := r.db.GetContext(ctx, &token, query, jti)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	if !token.IsExpired(r.now()) {
		return true, nil
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM blacklisted_tokens WHERE jti = $1`, jti,
	); err != nil {
		core.Logger(ctx).WarnContext(ctx, "purge expired blacklist entry failed",
			"jti", jti,
			"error", err,
		)
	}

	return false, nil
}

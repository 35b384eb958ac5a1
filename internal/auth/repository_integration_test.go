// AngelaMos | 2026
// repository_integration_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/commerce-backend/internal/testdb"
)

func TestBlacklistPurgesExpiredEntries(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	repo := NewBlacklistRepository(db).(*blacklistRepository)
	now := time.Now().UTC().Truncate(time.Second)
	repo.now = func() time.Time { return now }

	live := &BlacklistedToken{
		JTI:       uuid.New().String(),
		UserID:    uuid.New().String(),
		TokenType: TokenTypeAccess,
		ExpiresAt: now.Add(time.Minute),
	}
	stale := &BlacklistedToken{
		JTI:       uuid.New().String(),
		UserID:    live.UserID,
		TokenType: TokenTypeRefresh,
		ExpiresAt: now.Add(-time.Minute),
	}
	added, err := repo.Add(ctx, live)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, live)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = repo.Add(ctx, stale)
	require.NoError(t, err)

	revoked, err := repo.IsBlacklisted(ctx, live.JTI)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsBlacklisted(ctx, stale.JTI)
	require.NoError(t, err)
	assert.False(t, revoked)

	var remaining int
	require.NoError(t, db.GetContext(ctx, &remaining,
		`SELECT COUNT(*) FROM blacklisted_tokens WHERE jti = $1`, stale.JTI))
	assert.Zero(t, remaining)

	revoked, err = repo.IsBlacklisted(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.False(t, revoked)
}

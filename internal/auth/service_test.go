// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carterperez-dev/templates/commerce-backend/internal/config"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/internal/middleware"
)

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]*UserInfo
	phone map[string]*string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		byID:  map[string]*UserInfo{},
		phone: map[string]*string{},
	}
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) Create(_ context.Context, nu NewUser) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, nu.Email) {
			return nil, core.ErrDuplicateKey
		}
	}
	u := &UserInfo{
		ID:           uuid.New().String(),
		Email:        nu.Email,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		IsActive:     true,
	}
	m.byID[u.ID] = u
	m.phone[u.ID] = nu.Phone
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memoryUsers) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

type memoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]BlacklistedToken
	failing error
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{entries: map[string]BlacklistedToken{}}
}

func (b *memoryBlacklist) Add(_ context.Context, t *BlacklistedToken) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing != nil {
		return false, b.failing
	}
	if _, ok := b.entries[t.JTI]; ok {
		return false, nil
	}
	b.entries[t.JTI] = *t
	return true, nil
}

func (b *memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing != nil {
		return false, b.failing
	}
	t, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if t.IsExpired(time.Now()) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:     "access-secret-access-secret-access-secret",
		RefreshSecret:    "refresh-secret-refresh-secret-refresh-sec",
		AccessExpiresIn:  "15m",
		RefreshExpiresIn: "7d",
		Issuer:           "commerce-backend",
		Audience:         "commerce-api",
	}
}

type fixture struct {
	svc       *Service
	jwt       *JWTManager
	users     *memoryUsers
	blacklist *memoryBlacklist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	jwtManager, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)

	hasher, err := core.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	users := newMemoryUsers()
	blacklist := newMemoryBlacklist()

	return &fixture{
		svc:       NewService(jwtManager, blacklist, users, hasher),
		jwt:       jwtManager,
		users:     users,
		blacklist: blacklist,
	}
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		Email:     "a@b.com",
		Password:  "Passw0rd!",
		FirstName: "A",
		LastName:  "B",
	}
}

func requireAppStatus(t *testing.T, err error, status int) {
	t.Helper()
	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode)
}

func TestRegisterIssuesCustomerTokens(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Register(context.Background(), registerRequest(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 900, resp.ExpiresIn)
	assert.Equal(t, 7*24*3600, resp.RefreshExpiresIn)
	assert.Equal(t, middleware.RoleCustomer, resp.User.Role)
	assert.Equal(t, "a@b.com", resp.User.Email)

	stored, err := f.users.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", stored.PasswordHash)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), registerRequest(), nil)
	require.NoError(t, err)

	req := registerRequest()
	req.Email = "A@B.com"
	_, err = f.svc.Register(context.Background(), req, nil)
	requireAppStatus(t, err, http.StatusConflict)
}

func TestRegisterAdminElevation(t *testing.T) {
	f := newFixture(t)
	req := registerRequest()
	req.Role = middleware.RoleAdmin

	_, err := f.svc.Register(context.Background(), req, nil)
	requireAppStatus(t, err, http.StatusForbidden)

	customer := &middleware.AccessTokenClaims{UserID: "c", Role: middleware.RoleCustomer}
	_, err = f.svc.Register(context.Background(), req, customer)
	requireAppStatus(t, err, http.StatusForbidden)

	admin := &middleware.AccessTokenClaims{UserID: "root", Role: middleware.RoleAdmin}
	resp, err := f.svc.Register(context.Background(), req, admin)
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleAdmin, resp.User.Role)
}

func TestValidateUserReturnsNilOnMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	user, err := f.svc.ValidateUser(ctx, "a@b.com", "wrong-password")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = f.svc.ValidateUser(ctx, "nobody@b.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = f.svc.ValidateUser(ctx, "A@B.COM", "Passw0rd!")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestValidateUserUpgradesOutdatedHash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost+1)
	require.NoError(t, err)
	created, err := f.users.Create(ctx, NewUser{
		Email:        "old@b.com",
		PasswordHash: string(old),
		Role:         middleware.RoleCustomer,
	})
	require.NoError(t, err)

	user, err := f.svc.ValidateUser(ctx, "old@b.com", "Passw0rd!")
	require.NoError(t, err)
	require.NotNil(t, user)

	stored, err := f.users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	user, err = f.svc.ValidateUser(ctx, "old@b.com", "Passw0rd!")
	require.NoError(t, err)
	assert.NotNil(t, user)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "nope-nope"})
	requireAppStatus(t, err, http.StatusUnauthorized)

	resp, err := f.svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshRotatesAndRevokesOldToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	requireAppStatus(t, err, http.StatusUnauthorized)
}

func TestConcurrentRefreshRotatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Refresh(ctx, first.RefreshToken); err == nil {
				succeeded.Add(1)
			} else {
				var appErr *core.AppError
				if errors.As(err, &appErr) && appErr.StatusCode == http.StatusUnauthorized {
					rejected.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), rejected.Load())
}

func TestRefreshFailuresCollapseToOneSignal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"access token": resp.AccessToken,
	}

	var messages []string
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Refresh(ctx, token)
			requireAppStatus(t, err, http.StatusUnauthorized)
			var appErr *core.AppError
			require.ErrorAs(t, err, &appErr)
			messages = append(messages, appErr.Message)
		})
	}

	f.users.remove(resp.User.ID)
	_, err = f.svc.Refresh(ctx, resp.RefreshToken)
	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	messages = append(messages, appErr.Message)

	for _, m := range messages {
		assert.Equal(t, "invalid refresh token", m)
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	f.jwt.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	_, err = f.svc.Refresh(ctx, resp.RefreshToken)
	requireAppStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutRevokesAccessAndRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	claims, err := f.svc.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)

	require.NoError(t, f.svc.Logout(ctx, claims, resp.RefreshToken))

	_, err = f.svc.VerifyAccessToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = f.svc.Refresh(ctx, resp.RefreshToken)
	requireAppStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutIgnoresForeignRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	other := registerRequest()
	other.Email = "c@d.com"
	theirs, err := f.svc.Register(ctx, other, nil)
	require.NoError(t, err)

	claims, err := f.svc.VerifyAccessToken(ctx, mine.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims, theirs.RefreshToken))

	_, err = f.svc.Refresh(ctx, theirs.RefreshToken)
	require.NoError(t, err)
}

func TestVerifyAccessTokenRejectsRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	_, err = f.svc.VerifyAccessToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	f.jwt.now = func() time.Time { return time.Now().Add(time.Hour) }

	_, err = f.svc.VerifyAccessToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyAccessTokenBlacklistFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	f.blacklist.failing = errors.New("db down")

	_, err = f.svc.VerifyAccessToken(ctx, resp.AccessToken)
	requireAppStatus(t, err, http.StatusInternalServerError)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest(), nil)
	require.NoError(t, err)

	profile, err := f.svc.Profile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", profile.FirstName)

	_, err = f.svc.Profile(ctx, "missing")
	requireAppStatus(t, err, http.StatusNotFound)
}

func TestBlacklistedTokenExpiry(t *testing.T) {
	now := time.Now()
	token := BlacklistedToken{ExpiresAt: now}
	assert.True(t, token.IsExpired(now))
	assert.False(t, token.IsExpired(now.Add(-time.Second)))
}

func TestNewJWTManagerRejectsBadExpiry(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiresIn = "soon"
	_, err := NewJWTManager(cfg)
	require.Error(t, err)
}

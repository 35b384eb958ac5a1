// AngelaMos | 2026
// jwt.go

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/commerce-backend/internal/config"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

// TokenClaims is the verified content of either token type.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      string
	JTI       string
	Type      string
	ExpiresAt time.Time
}

type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// JWTManager signs access and refresh tokens with HS256 using independent
// secrets so a leaked refresh secret cannot mint access tokens.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	audience      string
	now           func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	accessTTL, err := config.ParseExpiry(cfg.AccessExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("access token expiry: %w", err)
	}

	refreshTTL, err := config.ParseExpiry(cfg.RefreshExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("refresh token expiry: %w", err)
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt secrets must be set")
	}

	return &JWTManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		now:           time.Now,
	}, nil
}

func (m *JWTManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *JWTManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

func (m *JWTManager) CreateAccessToken(user *UserInfo) (*IssuedToken, error) {
	return m.create(user, TokenTypeAccess, m.accessSecret, m.accessTTL)
}

func (m *JWTManager) CreateRefreshToken(user *UserInfo) (*IssuedToken, error) {
	return m.create(user, TokenTypeRefresh, m.refreshSecret, m.refreshTTL)
}

func (m *JWTManager) create(
	user *UserInfo,
	tokenType string,
	secret []byte,
	ttl time.Duration,
) (*IssuedToken, error) {
	now := m.now()
	jti := uuid.New().String()
	expiresAt := now.Add(ttl)

	builder := jwt.NewBuilder().
		JwtID(jti).
		Subject(user.ID).
		IssuedAt(now).
		Expiration(expiresAt).
		NotBefore(now).
		Claim("email", user.Email).
		Claim("role", user.Role).
		Claim("type", tokenType)
	if m.issuer != "" {
		builder = builder.Issuer(m.issuer)
	}
	if m.audience != "" {
		builder = builder.Audience([]string{m.audience})
	}

	token, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build %s token: %w", tokenType, err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), secret))
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", tokenType, err)
	}

	return &IssuedToken{
		Token:     string(signed),
		JTI:       jti,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *JWTManager) VerifyAccessToken(tokenString string) (*TokenClaims, error) {
	return m.verify(tokenString, TokenTypeAccess, m.accessSecret)
}

func (m *JWTManager) VerifyRefreshToken(tokenString string) (*TokenClaims, error) {
	return m.verify(tokenString, TokenTypeRefresh, m.refreshSecret)
}

func (m *JWTManager) verify(
	tokenString, wantType string,
	secret []byte,
) (*TokenClaims, error) {
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256(), secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil || tokenType != wantType {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	jti, ok := token.JwtID()
	if !ok || jti == "" {
		return nil, fmt.Errorf(
			"verify token: missing jti: %w",
			core.ErrTokenInvalid,
		)
	}

	expiresAt, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf(
			"verify token: missing exp: %w",
			core.ErrTokenInvalid,
		)
	}

	var email, role string
	if err := token.Get("email", &email); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing email claim: %w",
			core.ErrTokenInvalid,
		)
	}
	if err := token.Get("role", &role); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	return &TokenClaims{
		UserID:    subject,
		Email:     email,
		Role:      role,
		JTI:       jti,
		Type:      tokenType,
		ExpiresAt: expiresAt,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/internal/middleware"
)

const bearerTokenType = "Bearer"

type UserInfo struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	IsActive     bool
}

type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Role         string
}

// UserProvider is implemented by the user package so auth never touches
// the users table directly.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	jwt       *JWTManager
	blacklist BlacklistRepository
	users     UserProvider
	hasher    *core.PasswordHasher
}

func NewService(
	jwt *JWTManager,
	blacklist BlacklistRepository,
	users UserProvider,
	hasher *core.PasswordHasher,
) *Service {
	return &Service{
		jwt:       jwt,
		blacklist: blacklist,
		users:     users,
		hasher:    hasher,
	}
}

// Register creates a customer account. An admin account is only created
// when actor is an authenticated admin.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	actor *middleware.AccessTokenClaims,
) (*AuthResponse, error) {
	role := middleware.RoleCustomer
	if req.Role == middleware.RoleAdmin {
		if actor == nil || actor.Role != middleware.RoleAdmin {
			return nil, core.ForbiddenError("only admins can create admin accounts")
		}
		role = middleware.RoleAdmin
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	return s.issueTokens(user)
}

// ValidateUser returns nil without an error when the email is unknown, the
// account is inactive or the password does not match.
func (s *Service) ValidateUser(
	ctx context.Context,
	email, password string,
) (*UserInfo, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.hasher.VerifyTimingSafe(password, nil)
			return nil, nil
		}
		return nil, fmt.Errorf("validate user: %w", err)
	}

	if !s.hasher.VerifyTimingSafe(password, &user.PasswordHash) {
		return nil, nil
	}

	if !user.IsActive {
		return nil, nil
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, password)
	}

	return user, nil
}

// upgradeHash rewrites a hash made with an outdated cost. Failures only log.
func (s *Service) upgradeHash(ctx context.Context, userID, password string) {
	newHash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, userID, newHash)
	}
	if err != nil {
		core.Logger(ctx).WarnContext(ctx, "password rehash failed",
			"user_id", userID,
			"error", err,
		)
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.ValidateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, core.UnauthorizedError("invalid email or password")
	}

	return s.issueTokens(user)
}

// Refresh rotates a token pair. Every rejection reason produces the same
// unauthorized error; only infrastructure failures surface differently.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (*AuthResponse, error) {
	claims, err := s.jwt.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, errInvalidRefresh()
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.JTI)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if revoked {
		return nil, errInvalidRefresh()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, errInvalidRefresh()
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !user.IsActive {
		return nil, errInvalidRefresh()
	}

	// The insert decides which of two concurrent refreshes wins.
	first, err := s.blacklist.Add(ctx, &BlacklistedToken{
		JTI:       claims.JTI,
		UserID:    claims.UserID,
		TokenType: TokenTypeRefresh,
		ExpiresAt: claims.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !first {
		return nil, errInvalidRefresh()
	}

	return s.issueTokens(user)
}

// Logout revokes the presented access token and, when supplied, the
// caller's refresh token. A refresh token that fails verification or
// belongs to someone else is ignored.
func (s *Service) Logout(
	ctx context.Context,
	access *middleware.AccessTokenClaims,
	refreshToken string,
) error {
	if access == nil {
		return core.UnauthorizedError("")
	}

	if _, err := s.blacklist.Add(ctx, &BlacklistedToken{
		JTI:       access.JTI,
		UserID:    access.UserID,
		TokenType: TokenTypeAccess,
		ExpiresAt: access.ExpiresAt,
	}); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if refreshToken == "" {
		return nil
	}

	claims, err := s.jwt.VerifyRefreshToken(refreshToken)
	if err != nil || claims.UserID != access.UserID {
		core.Logger(ctx).WarnContext(ctx, "logout ignored refresh token",
			"user_id", access.UserID,
		)
		return nil
	}

	if _, err := s.blacklist.Add(ctx, &BlacklistedToken{
		JTI:       claims.JTI,
		UserID:    claims.UserID,
		TokenType: TokenTypeRefresh,
		ExpiresAt: claims.ExpiresAt,
	}); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("user")
		}
		return nil, fmt.Errorf("profile: %w", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// VerifyAccessToken checks signature, expiry, token type and the blacklist.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.JTI)
	if err != nil {
		return nil, core.InternalError(fmt.Errorf("verify access token: %w", err))
	}
	if revoked {
		return nil, fmt.Errorf("verify access token: %w", core.ErrTokenRevoked)
	}

	return &middleware.AccessTokenClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		JTI:       claims.JTI,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *Service) issueTokens(user *UserInfo) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		TokenType:        bearerTokenType,
		ExpiresIn:        int(s.jwt.AccessTTL() / time.Second),
		RefreshExpiresIn: int(s.jwt.RefreshTTL() / time.Second),
		User:             toUserResponse(user),
	}, nil
}

func errInvalidRefresh() error {
	return core.UnauthorizedError("invalid refresh token")
}

var _ middleware.TokenVerifier = (*Service)(nil)

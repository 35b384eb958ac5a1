// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/commerce-backend/internal/auth"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[string]*User{}}
}

func (m *memoryRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.DeletedAt == nil && strings.EqualFold(existing.Email, u.Email) {
			return core.ErrDuplicateKey
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsDeleted() {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if !u.IsDeleted() && strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memoryRepo) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsDeleted() {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memoryRepo) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsDeleted() {
		return core.ErrNotFound
	}
	now := u.UpdatedAt
	u.DeletedAt = &now
	return nil
}

func (m *memoryRepo) List(_ context.Context, p ListUsersParams) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.users {
		if u.IsDeleted() || (p.Role != "" && u.Role != p.Role) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	total := len(out)
	start := min(p.Offset(), total)
	end := min(start+p.Limit, total)
	return out[start:end], total, nil
}

func seed(t *testing.T, svc *Service, email, role string) *auth.UserInfo {
	t.Helper()
	info, err := svc.Create(context.Background(), auth.NewUser{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "Last",
		Role:         role,
	})
	require.NoError(t, err)
	return info
}

func TestCreateDefaultsToActiveCustomer(t *testing.T) {
	svc := NewService(newMemoryRepo())

	info := seed(t, svc, "Mixed@Case.com", "")
	assert.Equal(t, RoleCustomer, info.Role)
	assert.True(t, info.IsActive)
	assert.Equal(t, "mixed@case.com", info.Email)

	got, err := svc.GetByEmail(context.Background(), "MIXED@case.com")
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)
}

func TestUpdateProfileIsPartial(t *testing.T) {
	svc := NewService(newMemoryRepo())
	info := seed(t, svc, "a@b.com", RoleCustomer)

	phone := "+15550100"
	updated, err := svc.UpdateProfile(context.Background(), info.ID, UpdateProfileRequest{
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "First", updated.FirstName)
	assert.Equal(t, "Last", updated.LastName)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)

	_, err = svc.UpdateProfile(context.Background(), "", UpdateProfileRequest{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestUpdateUserRole(t *testing.T) {
	svc := NewService(newMemoryRepo())
	info := seed(t, svc, "a@b.com", RoleCustomer)

	u, err := svc.UpdateUserRole(context.Background(), info.ID, RoleAdmin)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	_, err = svc.UpdateUserRole(context.Background(), info.ID, "owner")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.UpdateUserRole(context.Background(), "missing", RoleAdmin)
	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestDeleteUserProtectsOtherAdmins(t *testing.T) {
	svc := NewService(newMemoryRepo())
	admin := seed(t, svc, "admin@b.com", RoleAdmin)
	other := seed(t, svc, "other@b.com", RoleAdmin)
	customer := seed(t, svc, "c@b.com", RoleCustomer)
	ctx := context.Background()

	err := svc.DeleteUser(ctx, admin.ID, other.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, customer.ID))

	_, err = svc.GetUser(ctx, customer.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = svc.DeleteUser(ctx, admin.ID, customer.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListUsersPaginates(t *testing.T) {
	svc := NewService(newMemoryRepo())
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		seed(t, svc, email, RoleCustomer)
	}
	seed(t, svc, "z@x.com", RoleAdmin)

	page, err := svc.ListUsers(context.Background(), ListUsersParams{
		Page:  2,
		Limit: 2,
		Role:  RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "c@x.com", page.Data[0].Email)
}

func TestListUsersParamsNormalize(t *testing.T) {
	p := ListUsersParams{Page: 0, Limit: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, maxPageSize, p.Limit)

	p = ListUsersParams{Page: 3, Limit: 0}
	p.Normalize()
	assert.Equal(t, defaultPageSize, p.Limit)
	assert.Equal(t, 40, p.Offset())
}

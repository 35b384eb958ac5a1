// AngelaMos | 2026
// handler_test.go

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/commerce-backend/internal/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (*chi.Mux, *fixture) {
	t.Helper()
	f := newFixture(t)

	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(
		r,
		middleware.Authenticator(f.svc),
		middleware.OptionalAuth(f.svc),
	)
	return r, f
}

func do(
	t *testing.T,
	h http.Handler,
	method, path string,
	body any,
	token string,
) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestRegisterEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	body := map[string]string{
		"email":     "a@b.com",
		"password":  "Passw0rd!",
		"firstName": "A",
		"lastName":  "B",
	}

	rec, env := do(t, r, http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "customer", resp.User.Role)

	rec, env = do(t, r, http.MethodPost, "/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, env := do(t, r, http.MethodPost, "/auth/register",
		map[string]string{"email": "not-an-email", "password": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestProfileAndLogoutEndpoints(t *testing.T) {
	r, f := newTestRouter(t)

	resp, err := f.svc.Register(t.Context(), registerRequest(), nil)
	require.NoError(t, err)

	rec, _ := do(t, r, http.MethodGet, "/auth/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := do(t, r, http.MethodGet, "/auth/profile", nil, resp.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "a@b.com", profile.Email)

	rec, _ = do(t, r, http.MethodPost, "/auth/logout", nil, resp.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, r, http.MethodGet, "/auth/profile", nil, resp.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "TOKEN_REVOKED", env.Error.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r, f := newTestRouter(t)

	_, err := f.svc.Register(t.Context(), registerRequest(), nil)
	require.NoError(t, err)

	rec, env := do(t, r, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@b.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, _ = do(t, r, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@b.com", "password": "Passw0rd!"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

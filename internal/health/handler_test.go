// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type readyEnvelope struct {
	Success bool              `json:"success"`
	Data    ReadinessResponse `json:"data"`
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadinessAllHealthy(t *testing.T) {
	h := NewHandler(map[string]Checker{
		"redis":    pinger{},
		"database": pinger{},
	})

	rec := serve(h, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var env readyEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "ok", env.Data.Status)
	require.Len(t, env.Data.Checks, 2)
	assert.Equal(t, "database", env.Data.Checks[0].Name)
	assert.Equal(t, "redis", env.Data.Checks[1].Name)
}

func TestReadinessDegraded(t *testing.T) {
	h := NewHandler(map[string]Checker{
		"database": pinger{err: errors.New("down")},
		"redis":    pinger{},
	})

	rec := serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var env readyEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "degraded", env.Data.Status)
	assert.False(t, env.Data.Checks[0].Healthy)
}

func TestShutdownFailsProbes(t *testing.T) {
	h := NewHandler(nil)
	assert.Equal(t, http.StatusOK, serve(h, "/livez").Code)

	h.SetShutdown(true)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/livez").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/readyz").Code)
}

// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/commerce-backend/internal/config"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

type healthFlag struct{ down bool }

func (f *healthFlag) SetShutdown(v bool) { f.down = v }

func newTestServer(h ShutdownNotifier) *Server {
	return New(Config{
		ServerConfig: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		HealthHandler: h,
	})
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var env core.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.False(t, env.Success)
	assert.Equal(t, core.CodeNotFound, env.Error.Code)
	assert.Equal(t, http.StatusNotFound, env.Meta.StatusCode)
}

func TestMethodNotAllowedUsesEnvelope(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router().Get("/things", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/things", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var env core.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, core.CodeMethodNotAllowed, env.Error.Code)
}

func TestShutdownMarksHealthDown(t *testing.T) {
	f := &healthFlag{}
	srv := newTestServer(f)

	require.NoError(t, srv.Shutdown(context.Background(), 0))
	assert.True(t, f.down)
}

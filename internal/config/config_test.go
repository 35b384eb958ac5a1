// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/commerce")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"1h", time.Hour},
		{"30s", 30 * time.Second},
		{"3600", time.Hour},
		{" 10m ", 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiry(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpiryRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "m", "abc", "-5m", "0", "1.5h", "10y"} {
		_, err := ParseExpiry(in)
		assert.Error(t, err, in)
	}
}

func TestLoadDefaultsWithEnv(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "15m", cfg.JWT.AccessExpiresIn)
	assert.Equal(t, "7d", cfg.JWT.RefreshExpiresIn)
	assert.Equal(t, 12, cfg.Auth.BcryptRounds)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.InDelta(t, 0.2, cfg.Search.TrigramThreshold, 1e-9)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte("server:\n  port: 7070\nauth:\n  bcrypt_rounds: 10\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Auth.BcryptRounds)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"same secrets", map[string]string{"JWT_REFRESH_SECRET": "access-secret"}},
		{"bad expiry", map[string]string{"JWT_EXPIRES_IN": "soon"}},
		{"bcrypt too low", map[string]string{"BCRYPT_ROUNDS": "3"}},
		{"kafka without brokers", map[string]string{"KAFKA_ENABLED": "true"}},
		{"short production secret", map[string]string{"ENVIRONMENT": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadSkipsMissingFile(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadDatabaseNeedsOnlyDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/commerce")
	t.Setenv("DATABASE_AUTO_MIGRATE", "true")

	db, err := LoadDatabase("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/commerce", db.URL)
	assert.True(t, db.AutoMigrate)

	t.Setenv("DATABASE_URL", "")
	_, err = LoadDatabase("")
	assert.Error(t, err)
}

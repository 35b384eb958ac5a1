// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	minProductionSecretLen = 32
	minBcryptRounds        = 4
	maxBcryptRounds        = 31
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Cache     CacheConfig     `koanf:"cache"`
	Search    SearchConfig    `koanf:"search"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	DrainDelay      time.Duration `koanf:"drain_delay"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	ConnectRetry    time.Duration `koanf:"connect_retry"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	ConnectRetry time.Duration `koanf:"connect_retry"`
}

// JWTConfig keeps expirations as strings such as "15m" or "7d" so the
// same value can be echoed back to clients in seconds.
type JWTConfig struct {
	AccessSecret     string `koanf:"access_secret"`
	RefreshSecret    string `koanf:"refresh_secret"`
	AccessExpiresIn  string `koanf:"access_expires_in"`
	RefreshExpiresIn string `koanf:"refresh_expires_in"`
	Issuer           string `koanf:"issuer"`
	Audience         string `koanf:"audience"`
}

type AuthConfig struct {
	BcryptRounds int `koanf:"bcrypt_rounds"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	ExposedHeaders   []string `koanf:"exposed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type KafkaConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Brokers  []string      `koanf:"brokers"`
	Topic    string        `koanf:"topic"`
	ClientID string        `koanf:"client_id"`
	Timeout  time.Duration `koanf:"timeout"`
}

type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	ListingTTL time.Duration `koanf:"listing_ttl"`
}

type SearchConfig struct {
	TrigramThreshold float64 `koanf:"trigram_threshold"`
}

// Load merges defaults, an optional YAML file and mapped environment
// variables, in that order, and validates the result. A config path that
// does not exist is skipped.
func Load(configPath string) (*Config, error) {
	cfg, err := load(configPath)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase resolves only the database section. Tools that never serve
// traffic use it so they do not need JWT or Redis settings.
func LoadDatabase(configPath string) (DatabaseConfig, error) {
	cfg, err := load(configPath)
	if err != nil {
		return DatabaseConfig{}, err
	}

	if cfg.Database.URL == "" {
		return DatabaseConfig{}, errors.New("DATABASE_URL is required")
	}

	return cfg.Database, nil
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Commerce Backend",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",
		"server.drain_delay":      "0s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.connect_retry":      "30s",
		"database.auto_migrate":       false,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,
		"redis.connect_retry":  "30s",

		"jwt.access_expires_in":  "15m",
		"jwt.refresh_expires_in": "7d",
		"jwt.issuer":             "commerce-backend",
		"jwt.audience":           "commerce-backend-api",

		"auth.bcrypt_rounds": 12,

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Correlation-ID",
			"X-Request-ID",
		},
		"cors.exposed_headers":   []string{"X-Correlation-ID"},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "commerce-backend",

		"kafka.enabled":   false,
		"kafka.topic":     "catalog-events",
		"kafka.client_id": "commerce-backend",
		"kafka.timeout":   "5s",

		"cache.enabled":     true,
		"cache.listing_ttl": "2m",

		"search.trigram_threshold": 0.2,
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"APP_VERSION":                 "app.version",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_SECRET":                  "jwt.access_secret",
	"JWT_REFRESH_SECRET":          "jwt.refresh_secret",
	"JWT_EXPIRES_IN":              "jwt.access_expires_in",
	"JWT_REFRESH_EXPIRES_IN":      "jwt.refresh_expires_in",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"BCRYPT_ROUNDS":               "auth.bcrypt_rounds",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"KAFKA_ENABLED":               "kafka.enabled",
	"KAFKA_BROKERS":               "kafka.brokers",
	"KAFKA_TOPIC":                 "kafka.topic",
	"CACHE_ENABLED":               "cache.enabled",
	"CACHE_LISTING_TTL":           "cache.listing_ttl",
	"SEARCH_TRIGRAM_THRESHOLD":    "search.trigram_threshold",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return errors.New("REDIS_URL is required")
	}

	if err := validateJWT(c.JWT, c.IsProduction()); err != nil {
		return err
	}

	if c.Auth.BcryptRounds < minBcryptRounds ||
		c.Auth.BcryptRounds > maxBcryptRounds {
		return fmt.Errorf(
			"auth.bcrypt_rounds must be between %d and %d",
			minBcryptRounds, maxBcryptRounds,
		)
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return errors.New(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure {
		return errors.New("OTEL_INSECURE must be false in production")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when kafka is enabled")
	}

	if c.Search.TrigramThreshold <= 0 || c.Search.TrigramThreshold >= 1 {
		return errors.New("search.trigram_threshold must be in (0,1)")
	}

	if c.Server.ReadTimeout <= 0 {
		return errors.New("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return errors.New("server.write_timeout must be positive")
	}

	return nil
}

func validateJWT(j JWTConfig, production bool) error {
	if j.AccessSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if j.RefreshSecret == "" {
		return errors.New("JWT_REFRESH_SECRET is required")
	}
	if j.AccessSecret == j.RefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if production &&
		(len(j.AccessSecret) < minProductionSecretLen ||
			len(j.RefreshSecret) < minProductionSecretLen) {
		return fmt.Errorf(
			"JWT secrets must be at least %d characters in production",
			minProductionSecretLen,
		)
	}
	if _, err := ParseExpiry(j.AccessExpiresIn); err != nil {
		return fmt.Errorf("jwt.access_expires_in: %w", err)
	}
	if _, err := ParseExpiry(j.RefreshExpiresIn); err != nil {
		return fmt.Errorf("jwt.refresh_expires_in: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

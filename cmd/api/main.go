// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carterperez-dev/templates/commerce-backend/internal/analytics"
	"github.com/carterperez-dev/templates/commerce-backend/internal/auth"
	"github.com/carterperez-dev/templates/commerce-backend/internal/category"
	"github.com/carterperez-dev/templates/commerce-backend/internal/config"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/internal/events"
	"github.com/carterperez-dev/templates/commerce-backend/internal/health"
	"github.com/carterperez-dev/templates/commerce-backend/internal/middleware"
	"github.com/carterperez-dev/templates/commerce-backend/internal/product"
	"github.com/carterperez-dev/templates/commerce-backend/internal/server"
	"github.com/carterperez-dev/templates/commerce-backend/internal/user"
	"github.com/carterperez-dev/templates/commerce-backend/migrations"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	startedAt := time.Now()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log, cfg.IsDevelopment())
	slog.SetDefault(logger)
	core.SetAPIVersion(cfg.App.Version)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db.DB.DB); err != nil {
			return err
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp, kafkaErr := events.NewKafkaPublisher(cfg.Kafka)
		if kafkaErr != nil {
			return kafkaErr
		}
		publisher = kp
		logger.Info("catalog events enabled",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
	}

	var listingCache *core.JSONCache
	if cfg.Cache.Enabled {
		listingCache = core.NewJSONCache(redis.Client, cfg.Cache.ListingTTL)
	}

	hasher, err := core.NewPasswordHasher(cfg.Auth.BcryptRounds)
	if err != nil {
		return err
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "HS256",
		"access_ttl", jwtManager.AccessTTL(),
		"refresh_ttl", jwtManager.RefreshTTL(),
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	blacklist := auth.NewBlacklistRepository(db.DB)
	authSvc := auth.NewService(jwtManager, blacklist, userSvc, hasher)
	authHandler := auth.NewHandler(authSvc)

	categoryRepo := category.NewRepository(db.DB)
	categorySvc := category.NewService(categoryRepo, publisher, listingCache)
	categoryHandler := category.NewHandler(categorySvc)

	productRepo := product.NewRepository(db.DB, cfg.Search.TrigramThreshold)
	productSvc := product.NewService(productRepo, categorySvc, publisher, listingCache)
	productHandler := product.NewHandler(productSvc)

	analyticsHandler := analytics.NewHandler(analytics.HandlerConfig{
		Benchmarker: analytics.NewBenchmarker(productSvc, categorySvc),
		App:         cfg.App,
		Cache:       cfg.Cache,
		StartedAt:   startedAt,
		DBStats:     db.Stats,
		RedisStats:  redis.PoolStats,
		DBPing:      db.Ping,
		RedisPing:   redis.Ping,
	})

	healthHandler := health.NewHandler(map[string]health.Checker{
		"database": db,
		"redis":    redis,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	limiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:      middleware.LimitFromConfig(cfg.RateLimit),
		BypassFunc: middleware.BypassHealthChecks,
	})

	router := srv.Router()

	router.Use(middleware.CorrelationID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(limiter.Handler)

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)
	adminOnly := middleware.RequireAdmin

	authHandler.RegisterRoutes(router, authenticator, optionalAuth)
	userHandler.RegisterRoutes(router, authenticator)
	userHandler.RegisterAdminRoutes(router, authenticator, adminOnly)
	categoryHandler.RegisterRoutes(router, authenticator, adminOnly)
	productHandler.RegisterRoutes(router, authenticator, optionalAuth, adminOnly)
	analyticsHandler.RegisterRoutes(router, authenticator, adminOnly)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	productSvc.Wait()

	if err := publisher.Close(shutdownCtx); err != nil {
		logger.Error("event publisher close error", "error", err)
	}

	limiter.Close()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig, addSource bool) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: addSource}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

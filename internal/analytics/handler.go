// AngelaMos | 2026
// handler.go

package analytics

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/commerce-backend/internal/config"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

type Handler struct {
	bench      *Benchmarker
	app        config.AppConfig
	cache      config.CacheConfig
	startedAt  time.Time
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	dbPing     func(ctx context.Context) error
	redisPing  func(ctx context.Context) error
}

type HandlerConfig struct {
	Benchmarker *Benchmarker
	App         config.AppConfig
	Cache       config.CacheConfig
	StartedAt   time.Time
	DBStats     func() sql.DBStats
	RedisStats  func() *redis.PoolStats
	DBPing      func(ctx context.Context) error
	RedisPing   func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	startedAt := cfg.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	return &Handler{
		bench:      cfg.Benchmarker,
		app:        cfg.App,
		cache:      cfg.Cache,
		startedAt:  startedAt,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		dbPing:     cfg.DBPing,
		redisPing:  cfg.RedisPing,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)
		r.Get("/optimization-results", h.OptimizationResults)
		r.Get("/benchmark/{name}", h.Benchmark)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(adminOnly)

			r.Get("/system-info", h.SystemInfo)
		})
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(thresholds))
	for name := range thresholds {
		names = append(names, name)
	}
	sort.Strings(names)

	targets := make([]TargetInfo, 0, len(names))
	for _, name := range names {
		t := thresholds[name]
		targets = append(targets, TargetInfo{
			Benchmark:   name,
			ExcellentMs: t.Excellent.Milliseconds(),
			GoodMs:      t.Good.Milliseconds(),
		})
	}

	core.OK(w, r, DashboardResponse{
		Service: h.app.Name,
		Version: h.app.Version,
		Capabilities: []string{
			"full-text product search with relevance ranking",
			"trigram matching for one and two character terms",
			"price, rating, stock and category filters",
			"deterministic paging with a stable id tiebreaker",
			"concurrent page and count queries",
		},
		Indexes: []IndexInfo{
			{Name: "products_fulltext_idx", Kind: "GIN tsvector", Purpose: "name and description search"},
			{Name: "products_name_trgm_idx", Kind: "GIN pg_trgm", Purpose: "short term similarity"},
			{Name: "products_popularity_idx", Kind: "btree partial", Purpose: "popular listing"},
			{Name: "products_visible_created_idx", Kind: "btree partial", Purpose: "recent listing"},
			{Name: "products_price_idx", Kind: "btree partial", Purpose: "price range filter"},
			{Name: "product_categories_category_idx", Kind: "btree", Purpose: "category filter"},
		},
		Caching: CachingInfo{
			Enabled:    h.cache.Enabled,
			TTLSeconds: int64(h.cache.ListingTTL.Seconds()),
			Keys:       []string{core.ProductListingPrefix + "popular:<n>", core.ProductListingPrefix + "recent:<n>"},
		},
		Targets: targets,
	})
}

func (h *Handler) OptimizationResults(w http.ResponseWriter, r *http.Request) {
	core.OK(w, r, OptimizationResponse{
		Optimizations: []Optimization{
			{
				Area:        "search",
				Technique:   "shared predicate set",
				Description: "page and count queries bind the same filters; the count skips projection joins",
			},
			{
				Area:        "search",
				Technique:   "count fallback",
				Description: "a failed filtered count degrades to the visible product count instead of failing the page",
			},
			{
				Area:        "search",
				Technique:   "batched category load",
				Description: "categories for a whole page load in one query",
			},
			{
				Area:        "listings",
				Technique:   "redis cache",
				Description: "popular and recent listings are cached and cleared on every catalog write",
			},
			{
				Area:        "reads",
				Technique:   "background view counting",
				Description: "view counters update after the response without blocking it",
			},
		},
	})
}

func (h *Handler) Benchmark(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.bench.Run(r.Context(), chi.URLParam(r, "name"), BenchmarkInput{
		Search:     q.Get("search"),
		CategoryID: q.Get("categoryId"),
	})
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, result)
}

func (h *Handler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	core.OK(w, r, SystemInfoResponse{
		App: AppInfo{
			Name:        h.app.Name,
			Version:     h.app.Version,
			Environment: h.app.Environment,
		},
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
		Database: DatabaseStatus{
			Healthy: healthy(ctx, h.dbPing),
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: healthy(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime: runtimeStats(),
	})
}

func healthy(ctx context.Context, ping func(ctx context.Context) error) bool {
	if ping == nil {
		return false
	}
	return ping(ctx) == nil
}

func runtimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

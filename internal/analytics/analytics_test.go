// AngelaMos | 2026
// analytics_test.go

package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/commerce-backend/internal/category"
	"github.com/carterperez-dev/templates/commerce-backend/internal/config"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/internal/middleware"
	"github.com/carterperez-dev/templates/commerce-backend/internal/product"
)

type fakeCatalog struct {
	err          error
	lastSearch   product.SearchCriteria
	lastCategory string
}

func (f *fakeCatalog) SearchProducts(
	_ context.Context,
	c product.SearchCriteria,
) (core.PaginatedResult[product.Product], error) {
	f.lastSearch = c
	return core.NewPaginatedResult([]product.Product{{ID: "a"}, {ID: "b"}}, 2, 1, 20), f.err
}

func (f *fakeCatalog) GetPopularProducts(context.Context, int) ([]product.Product, error) {
	return []product.Product{{ID: "p"}}, f.err
}

func (f *fakeCatalog) GetRecentProducts(_ context.Context, limit int) ([]product.Product, error) {
	return make([]product.Product, limit), f.err
}

func (f *fakeCatalog) GetProductsByCategory(
	_ context.Context,
	categoryID string,
	page, limit int,
) (core.PaginatedResult[product.Product], error) {
	f.lastCategory = categoryID
	return core.NewPaginatedResult[product.Product](nil, 0, page, limit), f.err
}

type fakeCategories []category.Category

func (f fakeCategories) GetAllCategories(context.Context) ([]category.Category, error) {
	return f, nil
}

// steppingClock advances by step on every reading.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestClassifyBandsProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	names := []any{BenchSearch, BenchPopular, BenchRecent, BenchCategory}
	rank := map[string]int{RatingExcellent: 0, RatingGood: 1, RatingNeedsImprovement: 2}

	properties.Property("slower runs never rate better", prop.ForAll(
		func(name string, a, b int64) bool {
			if a > b {
				a, b = b, a
			}
			limits := thresholds[name]
			fast := limits.Classify(time.Duration(a) * time.Microsecond)
			slow := limits.Classify(time.Duration(b) * time.Microsecond)
			return rank[fast] <= rank[slow]
		},
		gen.OneConstOf(names...),
		gen.Int64Range(0, 500000),
		gen.Int64Range(0, 500000),
	))

	properties.TestingRun(t)
}

func TestClassifyBoundaries(t *testing.T) {
	search := thresholds[BenchSearch]
	assert.Equal(t, RatingExcellent, search.Classify(49*time.Millisecond))
	assert.Equal(t, RatingGood, search.Classify(50*time.Millisecond))
	assert.Equal(t, RatingGood, search.Classify(149*time.Millisecond))
	assert.Equal(t, RatingNeedsImprovement, search.Classify(150*time.Millisecond))

	recent := thresholds[BenchRecent]
	assert.Equal(t, RatingGood, recent.Classify(30*time.Millisecond))
	assert.Equal(t, RatingNeedsImprovement, recent.Classify(80*time.Millisecond))
}

func TestBenchmarkerRun(t *testing.T) {
	catalog := &fakeCatalog{}
	b := NewBenchmarker(catalog, fakeCategories{{ID: "cat-1"}})
	b.now = steppingClock(60 * time.Millisecond)
	ctx := context.Background()

	res, err := b.Run(ctx, BenchSearch, BenchmarkInput{})
	require.NoError(t, err)
	assert.Equal(t, "laptop", catalog.lastSearch.Search)
	assert.Equal(t, 2, res.ResultCount)
	assert.InDelta(t, 60.0, res.DurationMs, 0.001)
	assert.Equal(t, RatingGood, res.Performance)
	assert.Equal(t, int64(50), res.Thresholds.ExcellentMs)

	res, err = b.Run(ctx, BenchRecent, BenchmarkInput{})
	require.NoError(t, err)
	assert.Equal(t, benchListingLimit, res.ResultCount)
	assert.Equal(t, RatingGood, res.Performance)

	res, err = b.Run(ctx, BenchPopular, BenchmarkInput{})
	require.NoError(t, err)
	assert.Equal(t, RatingGood, res.Performance)

	_, err = b.Run(ctx, BenchCategory, BenchmarkInput{})
	require.NoError(t, err)
	assert.Equal(t, "cat-1", catalog.lastCategory)

	_, err = b.Run(ctx, BenchCategory, BenchmarkInput{CategoryID: "chosen"})
	require.NoError(t, err)
	assert.Equal(t, "chosen", catalog.lastCategory)

	_, err = b.Run(ctx, "checkout", BenchmarkInput{})
	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestBenchmarkerEmptyCatalogAndFailures(t *testing.T) {
	catalog := &fakeCatalog{}
	b := NewBenchmarker(catalog, fakeCategories{})

	res, err := b.Run(context.Background(), BenchCategory, BenchmarkInput{})
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.lastCategory)
	assert.Zero(t, res.ResultCount)

	catalog.err = errors.New("db down")
	_, err = b.Run(context.Background(), BenchPopular, BenchmarkInput{})
	require.Error(t, err)
}

type staticVerifier map[string]*middleware.AccessTokenClaims

func (v staticVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	if c, ok := v[token]; ok {
		return c, nil
	}
	return nil, core.ErrTokenInvalid
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := NewHandler(HandlerConfig{
		Benchmarker: NewBenchmarker(&fakeCatalog{}, fakeCategories{}),
		App:         config.AppConfig{Name: "commerce-backend", Version: "1.2.0", Environment: "test"},
		Cache:       config.CacheConfig{Enabled: true, ListingTTL: 5 * time.Minute},
		DBStats:     func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 2} },
		RedisStats:  client.PoolStats,
		DBPing:      func(context.Context) error { return nil },
		RedisPing:   func(ctx context.Context) error { return client.Ping(ctx).Err() },
	})

	verifier := staticVerifier{
		"admin":    {UserID: "u1", Role: middleware.RoleAdmin},
		"customer": {UserID: "u2", Role: middleware.RoleCustomer},
	}

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Authenticator(verifier), middleware.RequireAdmin)
	return r
}

func get(t *testing.T, h http.Handler, path, token string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestAnalyticsRoutes(t *testing.T) {
	r := newTestRouter(t)

	code, body := get(t, r, "/analytics/dashboard", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "commerce-backend", data["service"])
	assert.Len(t, data["targets"], 4)
	assert.Equal(t, float64(300), data["caching"].(map[string]any)["ttlSeconds"])

	code, _ = get(t, r, "/analytics/optimization-results", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = get(t, r, "/analytics/benchmark/search?search=desk", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "desk", body["data"].(map[string]any)["params"].(map[string]any)["search"])

	code, _ = get(t, r, "/analytics/benchmark/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSystemInfoIsAdminOnly(t *testing.T) {
	r := newTestRouter(t)

	code, _ := get(t, r, "/analytics/system-info", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = get(t, r, "/analytics/system-info", "customer")
	assert.Equal(t, http.StatusForbidden, code)

	code, body := get(t, r, "/analytics/system-info", "admin")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["database"].(map[string]any)["healthy"])
	assert.Equal(t, true, data["redis"].(map[string]any)["healthy"])
	assert.Equal(t, float64(25), data["database"].(map[string]any)["stats"].(map[string]any)["maxOpenConnections"])
	assert.NotEmpty(t, data["runtime"].(map[string]any)["goVersion"])
}

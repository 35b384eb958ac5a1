// AngelaMos | 2026
// benchmark.go

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/commerce-backend/internal/category"
	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/internal/product"
)

const (
	BenchSearch   = "search"
	BenchPopular  = "popular"
	BenchRecent   = "recent"
	BenchCategory = "category"
)

const (
	RatingExcellent        = "Excellent"
	RatingGood             = "Good"
	RatingNeedsImprovement = "Needs Improvement"
)

const (
	defaultBenchSearch = "laptop"
	benchListingLimit  = 10
)

// Thresholds bound the Excellent and Good bands. Anything slower needs
// improvement.
type Thresholds struct {
	Excellent time.Duration
	Good      time.Duration
}

var thresholds = map[string]Thresholds{
	BenchSearch:   {Excellent: 50 * time.Millisecond, Good: 150 * time.Millisecond},
	BenchPopular:  {Excellent: 30 * time.Millisecond, Good: 100 * time.Millisecond},
	BenchRecent:   {Excellent: 25 * time.Millisecond, Good: 75 * time.Millisecond},
	BenchCategory: {Excellent: 40 * time.Millisecond, Good: 120 * time.Millisecond},
}

func (t Thresholds) Classify(d time.Duration) string {
	switch {
	case d < t.Excellent:
		return RatingExcellent
	case d < t.Good:
		return RatingGood
	default:
		return RatingNeedsImprovement
	}
}

type Catalog interface {
	SearchProducts(ctx context.Context, c product.SearchCriteria) (core.PaginatedResult[product.Product], error)
	GetPopularProducts(ctx context.Context, limit int) ([]product.Product, error)
	GetRecentProducts(ctx context.Context, limit int) ([]product.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID string, page, limit int) (core.PaginatedResult[product.Product], error)
}

type Categories interface {
	GetAllCategories(ctx context.Context) ([]category.Category, error)
}

type BenchmarkInput struct {
	Search     string
	CategoryID string
}

// Benchmarker times one live catalog call per run.
type Benchmarker struct {
	catalog    Catalog
	categories Categories
	now        func() time.Time
}

func NewBenchmarker(catalog Catalog, categories Categories) *Benchmarker {
	return &Benchmarker{catalog: catalog, categories: categories, now: time.Now}
}

func (b *Benchmarker) Run(
	ctx context.Context,
	name string,
	in BenchmarkInput,
) (*BenchmarkResponse, error) {
	limits, ok := thresholds[name]
	if !ok {
		return nil, core.NotFoundError("benchmark")
	}

	params := map[string]string{}
	var call func(ctx context.Context) (int, error)

	switch name {
	case BenchSearch:
		search := in.Search
		if search == "" {
			search = defaultBenchSearch
		}
		params["search"] = search
		call = func(ctx context.Context) (int, error) {
			res, err := b.catalog.SearchProducts(ctx, product.SearchCriteria{Search: search})
			return len(res.Data), err
		}

	case BenchPopular, BenchRecent:
		params["limit"] = fmt.Sprint(benchListingLimit)
		list := b.catalog.GetPopularProducts
		if name == BenchRecent {
			list = b.catalog.GetRecentProducts
		}
		call = func(ctx context.Context) (int, error) {
			products, err := list(ctx, benchListingLimit)
			return len(products), err
		}

	case BenchCategory:
		categoryID, err := b.pickCategory(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		params["categoryId"] = categoryID
		call = func(ctx context.Context) (int, error) {
			res, err := b.catalog.GetProductsByCategory(ctx, categoryID, product.DefaultPage, product.DefaultLimit)
			return len(res.Data), err
		}
	}

	start := b.now()
	count, err := call(ctx)
	elapsed := b.now().Sub(start)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", name, err)
	}

	core.Logger(ctx).InfoContext(ctx, "benchmark run",
		"benchmark", name,
		"duration", elapsed,
		"results", count,
	)

	return &BenchmarkResponse{
		Endpoint:    name,
		DurationMs:  float64(elapsed.Microseconds()) / 1000,
		Performance: limits.Classify(elapsed),
		ResultCount: count,
		Thresholds: ThresholdResponse{
			ExcellentMs: limits.Excellent.Milliseconds(),
			GoodMs:      limits.Good.Milliseconds(),
		},
		Params: params,
	}, nil
}

// pickCategory prefers the caller's id, then the first active category,
// then a random id that matches nothing.
func (b *Benchmarker) pickCategory(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}

	categories, err := b.categories.GetAllCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("benchmark category lookup: %w", err)
	}
	if len(categories) > 0 {
		return categories[0].ID, nil
	}
	return uuid.New().String(), nil
}

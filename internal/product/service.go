// AngelaMos | 2026
// service.go

package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/internal/events"
)

const (
	MaxListingLimit  = 50
	MaxCategoryLimit = 100

	defaultListingLimit = 10
	viewCountTimeout    = 5 * time.Second
)

// CategoryValidator confirms that category ids name active categories.
type CategoryValidator interface {
	ValidateCategoryIDs(ctx context.Context, ids []string) error
}

type Service struct {
	repo       Repository
	categories CategoryValidator
	publisher  events.Publisher
	cache      *core.JSONCache

	views       sync.WaitGroup
	viewTimeout time.Duration
}

// NewService wires the product service. cache may be nil when listing
// caching is disabled.
func NewService(
	repo Repository,
	categories CategoryValidator,
	publisher events.Publisher,
	cache *core.JSONCache,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:        repo,
		categories:  categories,
		publisher:   publisher,
		cache:       cache,
		viewTimeout: viewCountTimeout,
	}
}

func (s *Service) CreateProduct(
	ctx context.Context,
	actorID string,
	req CreateProductRequest,
) (*Product, error) {
	slug := req.Slug
	if slug == "" {
		slug = core.Slugify(req.Name)
	}
	if slug == "" {
		return nil, core.BadRequestError("name must contain letters or digits")
	}

	if err := s.ensureSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}
	if err := s.categories.ValidateCategoryIDs(ctx, req.CategoryIDs); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	p := &Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Slug:        slug,
		Price:       req.Price,
		Stock:       req.Stock,
		SKU:         req.SKU,
		Images:      pq.StringArray(req.Images),
		Attributes:  core.JSONMap(req.Attributes),
		Rating:      nullDecimal(req.Rating),
		IsActive:    isActive,
	}
	if actorID != "" {
		p.CreatedBy = &actorID
	}

	if err := s.repo.Create(ctx, p, dedupe(req.CategoryIDs)); err != nil {
		return nil, slugConflict(err)
	}

	created, err := s.reload(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.ProductCreated, actorID, created)
	return created, nil
}

// UpdateProduct applies only the fields present in req. A present
// categoryIds list replaces every link, an empty list clears them.
func (s *Service) UpdateProduct(
	ctx context.Context,
	actorID, id string,
	req UpdateProductRequest,
) (*Product, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != p.Slug {
		if err := s.ensureSlugFree(ctx, *req.Slug, p.ID); err != nil {
			return nil, err
		}
		p.Slug = *req.Slug
	}

	var categoryIDs *[]string
	if req.CategoryIDs != nil {
		if err := s.categories.ValidateCategoryIDs(ctx, *req.CategoryIDs); err != nil {
			return nil, err
		}
		ids := dedupe(*req.CategoryIDs)
		categoryIDs = &ids
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.SKU != nil {
		p.SKU = req.SKU
	}
	if req.Images != nil {
		p.Images = pq.StringArray(*req.Images)
	}
	if req.Attributes != nil {
		p.Attributes = core.JSONMap(req.Attributes)
	}
	if req.Rating != nil {
		p.Rating = nullDecimal(req.Rating)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, p, categoryIDs); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("product")
		}
		return nil, slugConflict(err)
	}

	updated, err := s.reload(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.ProductUpdated, actorID, updated)
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, actorID, id string) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, p.ID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("product")
		}
		return err
	}

	s.afterWrite(ctx, events.ProductDeleted, actorID, p)
	return nil
}

// GetProductByID returns a visible product and counts the view in the
// background.
func (s *Service) GetProductByID(ctx context.Context, id string) (*Product, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.visible(ctx, p)
}

func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("product")
		}
		return nil, err
	}
	return s.visible(ctx, p)
}

func (s *Service) SearchProducts(
	ctx context.Context,
	c SearchCriteria,
) (core.PaginatedResult[Product], error) {
	if err := c.ValidatePriceRange(); err != nil {
		return core.PaginatedResult[Product]{}, err
	}
	c.Normalize()

	attrs := []attribute.KeyValue{
		attribute.String("search.text_mode", c.TextMode().String()),
		attribute.String("search.sort_by", c.SortBy),
		attribute.String("search.sort_order", c.SortOrder),
		attribute.Int("search.page", c.Page),
		attribute.Int("search.limit", c.Limit),
		attribute.Bool("search.in_stock", c.InStock),
	}
	if c.CategoryID != "" {
		attrs = append(attrs, attribute.String("search.category_id", c.CategoryID))
	}
	if c.MinPrice != nil {
		attrs = append(attrs, attribute.String("search.min_price", c.MinPrice.String()))
	}
	if c.MaxPrice != nil {
		attrs = append(attrs, attribute.String("search.max_price", c.MaxPrice.String()))
	}
	if c.MinRating != nil {
		attrs = append(attrs, attribute.String("search.min_rating", c.MinRating.String()))
	}

	ctx, span := core.StartSpan(ctx, "product.search", attrs...)
	defer span.End()

	result, err := s.repo.Search(ctx, c)
	if err != nil {
		core.FailSpan(span, err)
		return core.PaginatedResult[Product]{}, err
	}

	span.SetAttributes(attribute.Int("search.total", result.Total))
	return result, nil
}

func (s *Service) GetPopularProducts(ctx context.Context, limit int) ([]Product, error) {
	limit = core.ClampLimit(limit, defaultListingLimit, MaxListingLimit)
	key := fmt.Sprintf("%spopular:%d", core.ProductListingPrefix, limit)

	return core.GetOrSet(ctx, s.cache, key, func(ctx context.Context) ([]Product, error) {
		return s.repo.ListPopular(ctx, limit)
	})
}

func (s *Service) GetRecentProducts(ctx context.Context, limit int) ([]Product, error) {
	limit = core.ClampLimit(limit, defaultListingLimit, MaxListingLimit)
	key := fmt.Sprintf("%srecent:%d", core.ProductListingPrefix, limit)

	return core.GetOrSet(ctx, s.cache, key, func(ctx context.Context) ([]Product, error) {
		return s.repo.ListRecent(ctx, limit)
	})
}

func (s *Service) GetProductsByCategory(
	ctx context.Context,
	categoryID string,
	page, limit int,
) (core.PaginatedResult[Product], error) {
	if _, err := uuid.Parse(categoryID); err != nil {
		return core.PaginatedResult[Product]{}, core.NotFoundError("category")
	}

	return s.SearchProducts(ctx, SearchCriteria{
		CategoryID: categoryID,
		Page:       page,
		Limit:      core.ClampLimit(limit, DefaultLimit, MaxCategoryLimit),
	})
}

// Wait blocks until in-flight view count updates finish.
func (s *Service) Wait() {
	s.views.Wait()
}

func (s *Service) find(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, core.NotFoundError("product")
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("product")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) reload(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	return p, nil
}

func (s *Service) visible(ctx context.Context, p *Product) (*Product, error) {
	if !p.IsVisible() {
		return nil, core.NotFoundError("product")
	}
	s.trackView(ctx, p.ID)
	return p, nil
}

// trackView increments the counter after the response is gone. The work
// keeps the request's values but not its cancellation.
func (s *Service) trackView(ctx context.Context, id string) {
	detached := context.WithoutCancel(ctx)

	s.views.Add(1)
	go func() {
		defer s.views.Done()

		ctx, cancel := context.WithTimeout(detached, s.viewTimeout)
		defer cancel()

		if err := s.repo.IncrementViewCount(ctx, id); err != nil {
			core.Logger(ctx).WarnContext(ctx, "view count increment failed",
				"product_id", id,
				"error", err,
			)
		}
	}()
}

func (s *Service) ensureSlugFree(ctx context.Context, slug, excludeID string) error {
	exists, err := s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return core.ConflictError(fmt.Sprintf("product with slug %q already exists", slug))
	}
	return nil
}

func (s *Service) afterWrite(
	ctx context.Context,
	eventType events.Type,
	actorID string,
	p *Product,
) {
	if err := s.cache.DeletePrefix(ctx, core.ProductListingPrefix); err != nil {
		core.Logger(ctx).WarnContext(ctx, "product listing cache invalidation failed",
			"error", err,
		)
	}
	s.publisher.Publish(ctx, events.New(eventType, p.ID, actorID, ToProductResponse(*p, false)))
}

func slugConflict(err error) error {
	if errors.Is(err, core.ErrDuplicateKey) {
		return core.ConflictError("product slug already exists")
	}
	return err
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

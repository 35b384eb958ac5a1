// AngelaMos | 2026
// service.go

package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/internal/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	cache     *core.JSONCache
}

// NewService wires the category service. cache may be nil when listing
// caching is disabled.
func NewService(
	repo Repository,
	publisher events.Publisher,
	cache *core.JSONCache,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher, cache: cache}
}

func (s *Service) CreateCategory(
	ctx context.Context,
	actorID string,
	req CreateCategoryRequest,
) (*Category, error) {
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

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	c := &Category{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		Metadata:    core.JSONMap(req.Metadata),
		IsActive:    isActive,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, slugConflict(err)
	}

	s.afterWrite(ctx, events.CategoryCreated, actorID, c)
	return c, nil
}

// UpdateCategory applies only the fields present in req.
func (s *Service) UpdateCategory(
	ctx context.Context,
	actorID, id string,
	req UpdateCategoryRequest,
) (*Category, error) {
	c, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != c.Slug {
		if err := s.ensureSlugFree(ctx, *req.Slug, c.ID); err != nil {
			return nil, err
		}
		c.Slug = *req.Slug
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.Metadata != nil {
		c.Metadata = core.JSONMap(req.Metadata)
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("category")
		}
		return nil, slugConflict(err)
	}

	s.afterWrite(ctx, events.CategoryUpdated, actorID, c)
	return c, nil
}

// DeleteCategory refuses while any non-deleted product still links to the
// category.
func (s *Service) DeleteCategory(ctx context.Context, actorID, id string) error {
	c, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}

	linked, err := s.repo.CountLinkedProducts(ctx, c.ID)
	if err != nil {
		return err
	}
	if linked > 0 {
		return core.BadRequestError(fmt.Sprintf(
			"category has %d associated products and cannot be deleted",
			linked,
		))
	}

	if err := s.repo.SoftDelete(ctx, c.ID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("category")
		}
		return err
	}

	s.afterWrite(ctx, events.CategoryDeleted, actorID, c)
	return nil
}

func (s *Service) GetAllCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) GetCategoryByID(ctx context.Context, id string) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, core.NotFoundError("category")
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("category")
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("category")
		}
		return nil, err
	}
	return c, nil
}

// ValidateCategoryIDs fails with a bad request naming every id that is not
// an active, non-deleted category. Duplicates in ids count once.
func (s *Service) ValidateCategoryIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	var malformed []string
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := uuid.Parse(id); err != nil {
			malformed = append(malformed, id)
			continue
		}
		unique = append(unique, id)
	}

	found := map[string]struct{}{}
	if len(unique) > 0 {
		categories, err := s.repo.FindActiveByIDs(ctx, unique)
		if err != nil {
			return err
		}
		for _, c := range categories {
			found[c.ID] = struct{}{}
		}
	}

	missing := malformed
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		return core.BadRequestError(
			"categories not found or inactive: " + strings.Join(missing, ", "),
		).WithDetails(map[string][]string{"missingIds": missing})
	}
	return nil
}

func (s *Service) ensureSlugFree(ctx context.Context, slug, excludeID string) error {
	exists, err := s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return core.ConflictError(fmt.Sprintf("category with slug %q already exists", slug))
	}
	return nil
}

func (s *Service) afterWrite(
	ctx context.Context,
	eventType events.Type,
	actorID string,
	c *Category,
) {
	if err := s.cache.DeletePrefix(ctx, core.ProductListingPrefix); err != nil {
		core.Logger(ctx).WarnContext(ctx, "product listing cache invalidation failed",
			"error", err,
		)
	}
	s.publisher.Publish(ctx, events.New(eventType, c.ID, actorID, ToCategoryResponse(*c)))
}

func slugConflict(err error) error {
	if errors.Is(err, core.ErrDuplicateKey) {
		return core.ConflictError("category slug already exists")
	}
	return err
}

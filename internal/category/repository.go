// AngelaMos | 2026
// repository.go

package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	ListActive(ctx context.Context) ([]Category, error)
	FindActiveByIDs(ctx context.Context, ids []string) ([]Category, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CountLinkedProducts(ctx context.Context, id string) (int, error)
	Update(ctx context.Context, c *Category) error
	SoftDelete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const categoryColumns = `id, name, slug, description, sort_order, metadata,
		       is_active, created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, sort_order, metadata, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
		c.SortOrder,
		c.Metadata,
		c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create category: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND deleted_at IS NULL`

	return r.getOne(ctx, "get category", query, id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE slug = $1 AND deleted_at IS NULL`

	return r.getOne(ctx, "get category by slug", query, slug)
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	arg any,
) (*Category, error) {
	var c Category
	err := r.db.GetContext(ctx, &c, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE deleted_at IS NULL AND is_active = TRUE
		ORDER BY sort_order ASC, name ASC`

	categories := []Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *repository) FindActiveByIDs(
	ctx context.Context,
	ids []string,
) ([]Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL AND is_active = TRUE`

	categories := []Category{}
	if err := r.db.SelectContext(ctx, &categories, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	return categories, nil
}

func (r *repository) SlugExists(
	ctx context.Context,
	slug, excludeID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM categories
			WHERE slug = $1 AND deleted_at IS NULL
			  AND ($2 = '' OR id::text <> $2)
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug, excludeID); err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return exists, nil
}

func (r *repository) CountLinkedProducts(ctx context.Context, id string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM product_categories pc
		JOIN products p ON p.id = pc.product_id
		WHERE pc.category_id = $1 AND p.deleted_at IS NULL`

	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count category products: %w", err)
	}
	return count, nil
}

func (r *repository) Update(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, sort_order = $5,
		    metadata = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
		c.SortOrder,
		c.Metadata,
		c.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update category: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update category: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update category: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE categories
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete category: %w", core.ErrNotFound)
	}

	return nil
}

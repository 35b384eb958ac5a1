// AngelaMos | 2026
// repository.go

package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

var ErrSearchFailed = errors.New("product search failed")

type Repository interface {
	Search(ctx context.Context, c SearchCriteria) (core.PaginatedResult[Product], error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, p *Product, categoryIDs []string) error
	Update(ctx context.Context, p *Product, categoryIDs *[]string) error
	SoftDelete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
	ListPopular(ctx context.Context, limit int) ([]Product, error)
	ListRecent(ctx context.Context, limit int) ([]Product, error)
}

type repository struct {
	db         *sqlx.DB
	threshold  float64
	countQuery func(c SearchCriteria, threshold float64) core.Query
}

// NewRepository returns a Postgres repository. threshold is the minimum
// pg_trgm similarity for short search terms.
func NewRepository(db *sqlx.DB, threshold float64) Repository {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultTrigramThreshold
	}
	return &repository{
		db:         db,
		threshold:  threshold,
		countQuery: SearchCriteria.CountQuery,
	}
}

// Search runs the page query and the count query concurrently. A failed
// count degrades to the unfiltered visible-product count.
func (r *repository) Search(
	ctx context.Context,
	c SearchCriteria,
) (core.PaginatedResult[Product], error) {
	c.Normalize()

	var (
		products []Product
		total    int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		detail := c.DetailQuery(r.threshold)
		var rows []productRow
		if err := r.db.SelectContext(gctx, &rows, detail.SQL, detail.Args...); err != nil {
			return fmt.Errorf("select products: %w", err)
		}

		products = make([]Product, 0, len(rows))
		for _, row := range rows {
			products = append(products, row.toProduct())
		}

		return r.attachCategories(gctx, products)
	})

	g.Go(func() error {
		var err error
		total, err = r.count(gctx, c)
		return err
	})

	if err := g.Wait(); err != nil {
		core.Logger(ctx).ErrorContext(ctx, "product search failed",
			"error", err,
			"search", c.Search,
			"text_mode", c.TextMode().String(),
			"category_id", c.CategoryID,
			"sort_by", c.SortBy,
			"sort_order", c.SortOrder,
			"page", c.Page,
			"limit", c.Limit,
		)
		return core.PaginatedResult[Product]{}, fmt.Errorf("search products: %w", ErrSearchFailed)
	}

	return core.NewPaginatedResult(products, total, c.Page, c.Limit), nil
}

func (r *repository) count(ctx context.Context, c SearchCriteria) (int, error) {
	q := r.countQuery(c, r.threshold)

	var total int
	err := r.db.GetContext(ctx, &total, q.SQL, q.Args...)
	if err == nil {
		return total, nil
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	core.Logger(ctx).WarnContext(ctx, "filtered product count failed, using fallback count",
		"error", err,
	)

	fallback := fallbackCountQuery()
	if err := r.db.GetContext(ctx, &total, fallback.SQL, fallback.Args...); err != nil {
		return 0, fmt.Errorf("fallback count: %w", err)
	}
	return total, nil
}

// attachCategories loads the categories of every product in one query.
func (r *repository) attachCategories(
	ctx context.Context,
	products []Product,
) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	query := `
		SELECT pc.product_id, c.id, c.name, c.slug
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1::uuid[]) AND c.deleted_at IS NULL
		ORDER BY c.sort_order ASC, c.name ASC`

	var rows []CategorySummary
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load product categories: %w", err)
	}

	byProduct := make(map[string][]CategorySummary, len(products))
	for _, row := range rows {
		byProduct[row.ProductID] = append(byProduct[row.ProductID], row)
	}

	for i := range products {
		products[i].Categories = byProduct[products[i].ID]
		if products[i].Categories == nil {
			products[i].Categories = []CategorySummary{}
		}
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	return r.getOne(ctx, "get product", "p.id = $1", id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getOne(ctx, "get product by slug", "p.slug = $1", slug)
}

// getOne returns a non-deleted product whether or not it is active.
func (r *repository) getOne(
	ctx context.Context,
	op, predicate string,
	arg any,
) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s,
		%s
		FROM products p
		LEFT JOIN users u ON u.id = p.created_by
		WHERE %s AND p.deleted_at IS NULL`,
		productColumns, creatorColumns, predicate)

	var row productRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products := []Product{row.toProduct()}
	if err := r.attachCategories(ctx, products); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &products[0], nil
}

func (r *repository) SlugExists(
	ctx context.Context,
	slug, excludeID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM products
			WHERE slug = $1 AND deleted_at IS NULL
			  AND ($2 = '' OR id::text <> $2)
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug, excludeID); err != nil {
		return false, fmt.Errorf("check product slug: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(
	ctx context.Context,
	p *Product,
	categoryIDs []string,
) error {
	query := `
		INSERT INTO products (
			id, name, description, slug, price, stock, sku, images, attributes,
			rating, is_active, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, query,
			p.ID,
			p.Name,
			p.Description,
			p.Slug,
			p.Price,
			p.Stock,
			p.SKU,
			nonNilImages(p.Images),
			p.Attributes,
			p.Rating,
			p.IsActive,
			p.CreatedBy,
		).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}

		return linkCategories(ctx, tx, p.ID, categoryIDs)
	})
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

// Update writes every column of p. categoryIDs nil keeps the current links;
// a non-nil pointer replaces them.
func (r *repository) Update(
	ctx context.Context,
	p *Product,
	categoryIDs *[]string,
) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, slug = $4, price = $5, stock = $6,
		    sku = $7, images = $8, attributes = $9, rating = $10,
		    is_active = $11, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &p.UpdatedAt, query,
			p.ID,
			p.Name,
			p.Description,
			p.Slug,
			p.Price,
			p.Stock,
			p.SKU,
			nonNilImages(p.Images),
			p.Attributes,
			p.Rating,
			p.IsActive,
		); err != nil {
			return err
		}

		if categoryIDs == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_categories WHERE product_id = $1`, p.ID,
		); err != nil {
			return err
		}
		return linkCategories(ctx, tx, p.ID, *categoryIDs)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	case core.IsDuplicateKeyError(err):
		return fmt.Errorf("update product: %w", core.ErrDuplicateKey)
	default:
		return fmt.Errorf("update product: %w", err)
	}
}

func linkCategories(
	ctx context.Context,
	tx *sqlx.Tx,
	productID string,
	categoryIDs []string,
) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1::uuid, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`,
		productID, pq.Array(categoryIDs),
	)
	if core.IsForeignKeyError(err) {
		return core.BadRequestError("one or more categories do not exist")
	}
	if err != nil {
		return fmt.Errorf("link categories: %w", err)
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE products
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

func (r *repository) ListPopular(ctx context.Context, limit int) ([]Product, error) {
	return r.list(ctx, "list popular products",
		"p.order_count DESC, p.view_count DESC, p.id ASC", limit)
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]Product, error) {
	return r.list(ctx, "list recent products", "p.created_at DESC, p.id ASC", limit)
}

func (r *repository) list(
	ctx context.Context,
	op, orderBy string,
	limit int,
) ([]Product, error) {
	query := fmt.Sprintf(`SELECT %s,
		%s
		FROM products p
		LEFT JOIN users u ON u.id = p.created_by
		WHERE %s
		ORDER BY %s
		LIMIT $1`,
		productColumns, creatorColumns, baseProductPredicate, orderBy)

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toProduct())
	}

	if err := r.attachCategories(ctx, products); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// nonNilImages keeps a missing image list from binding as NULL.
func nonNilImages(images pq.StringArray) pq.StringArray {
	if images == nil {
		return pq.StringArray{}
	}
	return images
}

// AngelaMos | 2026
// criteria.go

package product

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	DefaultTrigramThreshold = 0.2

	fullTextMinRunes = 3
	lowStockLimit    = 10
)

const (
	SortName       = "name"
	SortPrice      = "price"
	SortCreatedAt  = "createdAt"
	SortRating     = "rating"
	SortPopularity = "popularity"
	SortViewCount  = "viewCount"

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

var sortColumns = map[string]string{
	SortName:      "p.name",
	SortPrice:     "p.price",
	SortCreatedAt: "p.created_at",
	SortRating:    "p.rating",
	SortViewCount: "p.view_count",
}

type TextMode int

const (
	TextNone TextMode = iota
	TextFullText
	TextTrigram
)

func (m TextMode) String() string {
	switch m {
	case TextFullText:
		return "fulltext"
	case TextTrigram:
		return "trigram"
	default:
		return "none"
	}
}

// SearchCriteria describes one product search. The same criteria always
// produce the same SQL and arguments, so a detail query and its count
// query share one predicate set.
type SearchCriteria struct {
	Search     string
	CategoryID string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    bool
	MinRating  *decimal.Decimal
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// Normalize clamps paging and replaces unknown sort options with the
// createdAt DESC default. Price ordering is not checked here.
func (c *SearchCriteria) Normalize() {
	c.Search = strings.TrimSpace(c.Search)

	c.Page = core.ClampPage(c.Page)
	c.Limit = core.ClampLimit(c.Limit, DefaultLimit, MaxLimit)

	if _, ok := sortColumns[c.SortBy]; !ok && c.SortBy != SortPopularity {
		c.SortBy = SortCreatedAt
	}

	c.SortOrder = strings.ToUpper(strings.TrimSpace(c.SortOrder))
	if c.SortOrder != SortAsc && c.SortOrder != SortDesc {
		c.SortOrder = SortDesc
	}
}

func (c SearchCriteria) TextMode() TextMode {
	n := utf8.RuneCountInString(c.Search)
	switch {
	case n == 0:
		return TextNone
	case n >= fullTextMinRunes:
		return TextFullText
	default:
		return TextTrigram
	}
}

func (c SearchCriteria) Skip() int {
	return core.Skip(c.Page, c.Limit)
}

// ValidatePriceRange rejects minPrice > maxPrice. The query builder assumes
// callers ran it first.
func (c SearchCriteria) ValidatePriceRange() error {
	if c.MinPrice != nil && c.MaxPrice != nil && c.MinPrice.GreaterThan(*c.MaxPrice) {
		return core.ValidationError([]core.FieldError{{
			Field:   "minPrice",
			Message: "must be less than or equal to maxPrice",
		}})
	}
	return nil
}

const productColumns = `p.id, p.name, p.description, p.slug, p.price, p.stock, p.sku,
		p.images, p.attributes, p.rating, p.review_count, p.view_count,
		p.order_count, p.is_active, p.created_by, p.created_at, p.updated_at,
		p.deleted_at`

const creatorColumns = `u.email AS creator_email, u.first_name AS creator_first_name,
		u.last_name AS creator_last_name`

const baseProductPredicate = "p.deleted_at IS NULL AND p.is_active = TRUE"

const fullTextDocument = `to_tsvector('english', p.name || ' ' || coalesce(p.description, ''))`

type predicateSet struct {
	join      string
	conds     []string
	args      []any
	searchArg string
	textMode  TextMode
}

func (ps *predicateSet) bind(v any) string {
	ps.args = append(ps.args, v)
	return fmt.Sprintf("$%d", len(ps.args))
}

func (ps *predicateSet) where() string {
	return strings.Join(ps.conds, " AND ")
}

func (c SearchCriteria) predicates(threshold float64) *predicateSet {
	ps := &predicateSet{
		conds:    []string{baseProductPredicate},
		textMode: c.TextMode(),
	}

	if c.CategoryID != "" {
		ps.join = fmt.Sprintf(
			"JOIN product_categories pc ON pc.product_id = p.id AND pc.category_id = %s",
			ps.bind(c.CategoryID),
		)
	}

	switch ps.textMode {
	case TextFullText:
		ps.searchArg = ps.bind(c.Search)
		ps.conds = append(ps.conds, fmt.Sprintf(
			"%s @@ plainto_tsquery('english', %s)",
			fullTextDocument, ps.searchArg,
		))
	case TextTrigram:
		ps.searchArg = ps.bind(c.Search)
		ps.conds = append(ps.conds, fmt.Sprintf(
			"(similarity(p.name, %s) > %s OR p.name ILIKE %s)",
			ps.searchArg,
			ps.bind(threshold),
			ps.bind("%"+core.EscapeLike(c.Search)+"%"),
		))
	}

	switch {
	case c.MinPrice != nil && c.MaxPrice != nil:
		ps.conds = append(ps.conds, fmt.Sprintf(
			"p.price BETWEEN %s AND %s",
			ps.bind(*c.MinPrice), ps.bind(*c.MaxPrice),
		))
	case c.MinPrice != nil:
		ps.conds = append(ps.conds, "p.price >= "+ps.bind(*c.MinPrice))
	case c.MaxPrice != nil:
		ps.conds = append(ps.conds, "p.price <= "+ps.bind(*c.MaxPrice))
	}

	if c.InStock {
		ps.conds = append(ps.conds, "p.stock > 0")
	}

	if c.MinRating != nil {
		ps.conds = append(ps.conds, fmt.Sprintf(
			"(p.rating >= %s OR p.rating IS NULL)",
			ps.bind(*c.MinRating),
		))
	}

	return ps
}

// orderBy ranks full-text matches first when the caller kept the default
// createdAt DESC sort. p.id always breaks ties.
func (c SearchCriteria) orderBy(ps *predicateSet) string {
	var parts []string

	if ps.textMode == TextFullText && c.SortBy == SortCreatedAt && c.SortOrder == SortDesc {
		parts = append(parts, fmt.Sprintf(
			"ts_rank(%s, plainto_tsquery('english', %s)) DESC",
			fullTextDocument, ps.searchArg,
		))
	}

	switch c.SortBy {
	case SortPopularity:
		parts = append(parts,
			"p.order_count "+c.SortOrder,
			"p.view_count "+c.SortOrder,
		)
	case SortRating:
		parts = append(parts, "p.rating "+c.SortOrder+" NULLS LAST")
	default:
		parts = append(parts, sortColumns[c.SortBy]+" "+c.SortOrder)
	}

	parts = append(parts, "p.id ASC")
	return strings.Join(parts, ", ")
}

// DetailQuery selects one page of products with creator projection.
func (c SearchCriteria) DetailQuery(threshold float64) core.Query {
	ps := c.predicates(threshold)
	order := c.orderBy(ps)
	limit := ps.bind(c.Limit)
	offset := ps.bind(c.Skip())

	sql := fmt.Sprintf(`SELECT %s,
		%s
		FROM products p
		%s
		LEFT JOIN users u ON u.id = p.created_by
		WHERE %s
		ORDER BY %s
		LIMIT %s OFFSET %s`,
		productColumns, creatorColumns, ps.join, ps.where(), order, limit, offset)

	return core.Query{SQL: sql, Args: ps.args}
}

// CountQuery applies the same filters without projection joins.
func (c SearchCriteria) CountQuery(threshold float64) core.Query {
	ps := c.predicates(threshold)

	sql := fmt.Sprintf(`SELECT COUNT(*)
		FROM products p
		%s
		WHERE %s`,
		ps.join, ps.where())

	return core.Query{SQL: sql, Args: ps.args}
}

// fallbackCountQuery counts every visible product and ignores filters.
func fallbackCountQuery() core.Query {
	return core.Query{
		SQL: "SELECT COUNT(*) FROM products p WHERE " + baseProductPredicate,
	}
}

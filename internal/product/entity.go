// AngelaMos | 2026
// entity.go

package product

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

type Product struct {
	ID          string              `db:"id"`
	Name        string              `db:"name"`
	Description *string             `db:"description"`
	Slug        string              `db:"slug"`
	Price       decimal.Decimal     `db:"price"`
	Stock       int                 `db:"stock"`
	SKU         *string             `db:"sku"`
	Images      pq.StringArray      `db:"images"`
	Attributes  core.JSONMap        `db:"attributes"`
	Rating      decimal.NullDecimal `db:"rating"`
	ReviewCount int                 `db:"review_count"`
	ViewCount   int                 `db:"view_count"`
	OrderCount  int                 `db:"order_count"`
	IsActive    bool                `db:"is_active"`
	CreatedBy   *string             `db:"created_by"`
	CreatedAt   time.Time           `db:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at"`
	DeletedAt   *time.Time          `db:"deleted_at"`

	Creator    *Creator          `db:"-"`
	Categories []CategorySummary `db:"-"`
}

func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsVisible reports whether public reads may return the product.
func (p *Product) IsVisible() bool {
	return p.IsActive && !p.IsDeleted()
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= lowStockLimit
}

func (p *Product) AverageRating() decimal.Decimal {
	if p.Rating.Valid {
		return p.Rating.Decimal
	}
	return decimal.Zero
}

type Creator struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

type CategorySummary struct {
	ProductID string `db:"product_id" json:"-"`
	ID        string `db:"id"         json:"id"`
	Name      string `db:"name"       json:"name"`
	Slug      string `db:"slug"       json:"slug"`
}

// productRow is a product joined with its creator's public fields.
type productRow struct {
	Product
	CreatorEmail     *string `db:"creator_email"`
	CreatorFirstName *string `db:"creator_first_name"`
	CreatorLastName  *string `db:"creator_last_name"`
}

func (r productRow) toProduct() Product {
	p := r.Product
	if p.CreatedBy != nil && r.CreatorEmail != nil {
		p.Creator = &Creator{
			ID:        *p.CreatedBy,
			Email:     *r.CreatorEmail,
			FirstName: deref(r.CreatorFirstName),
			LastName:  deref(r.CreatorLastName),
		}
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

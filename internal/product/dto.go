// AngelaMos | 2026
// dto.go

package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string           `json:"name"        validate:"required,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Slug        string           `json:"slug"        validate:"omitempty,max=255,slug"`
	Price       decimal.Decimal  `json:"price"       validate:"gte=0"`
	Stock       int              `json:"stock"       validate:"gte=0"`
	SKU         *string          `json:"sku"         validate:"omitempty,max=100"`
	Images      []string         `json:"images"      validate:"omitempty,max=20,dive,url"`
	Attributes  map[string]any   `json:"attributes"`
	Rating      *decimal.Decimal `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	IsActive    *bool            `json:"isActive"`
	CategoryIDs []string         `json:"categoryIds" validate:"omitempty,dive,uuid"`
}

// UpdateProductRequest uses pointers so omitted fields stay untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Slug        *string          `json:"slug"        validate:"omitempty,max=255,slug"`
	Price       *decimal.Decimal `json:"price"       validate:"omitempty,gte=0"`
	Stock       *int             `json:"stock"       validate:"omitempty,gte=0"`
	SKU         *string          `json:"sku"         validate:"omitempty,max=100"`
	Images      *[]string        `json:"images"      validate:"omitempty,max=20,dive,url"`
	Attributes  map[string]any   `json:"attributes"`
	Rating      *decimal.Decimal `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	IsActive    *bool            `json:"isActive"`
	CategoryIDs *[]string        `json:"categoryIds" validate:"omitempty,dive,uuid"`
}

type CreatorResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ProductResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description"`
	Slug          string              `json:"slug"`
	Price         decimal.Decimal     `json:"price"`
	Stock         int                 `json:"stock"`
	SKU           *string             `json:"sku"`
	Images        []string            `json:"images"`
	Attributes    map[string]any      `json:"attributes"`
	Rating        decimal.NullDecimal `json:"rating"`
	AverageRating decimal.Decimal     `json:"averageRating"`
	ReviewCount   int                 `json:"reviewCount"`
	ViewCount     int                 `json:"viewCount"`
	OrderCount    int                 `json:"orderCount"`
	IsActive      bool                `json:"isActive"`
	IsInStock     bool                `json:"isInStock"`
	IsLowStock    bool                `json:"isLowStock"`
	CreatedBy     any                 `json:"createdBy"`
	Categories    []CategorySummary   `json:"categories"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ToProductResponse projects p. Public projections never expose the
// creator and return an empty object in its place.
func ToProductResponse(p Product, includeCreator bool) ProductResponse {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	attributes := map[string]any(p.Attributes)
	if attributes == nil {
		attributes = map[string]any{}
	}
	categories := p.Categories
	if categories == nil {
		categories = []CategorySummary{}
	}

	var createdBy any = struct{}{}
	if includeCreator && p.Creator != nil {
		createdBy = CreatorResponse{
			ID:        p.Creator.ID,
			Email:     p.Creator.Email,
			FirstName: p.Creator.FirstName,
			LastName:  p.Creator.LastName,
		}
	}

	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Slug:          p.Slug,
		Price:         p.Price,
		Stock:         p.Stock,
		SKU:           p.SKU,
		Images:        images,
		Attributes:    attributes,
		Rating:        p.Rating,
		AverageRating: p.AverageRating(),
		ReviewCount:   p.ReviewCount,
		ViewCount:     p.ViewCount,
		OrderCount:    p.OrderCount,
		IsActive:      p.IsActive,
		IsInStock:     p.IsInStock(),
		IsLowStock:    p.IsLowStock(),
		CreatedBy:     createdBy,
		Categories:    categories,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ToProductResponseList(products []Product, includeCreator bool) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p, includeCreator))
	}
	return out
}

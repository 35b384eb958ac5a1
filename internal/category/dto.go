// AngelaMos | 2026
// dto.go

package category

import (
	"time"
)

type CreateCategoryRequest struct {
	Name        string         `json:"name"        validate:"required,min=1,max=100"`
	Slug        string         `json:"slug"        validate:"omitempty,max=120,slug"`
	Description *string        `json:"description" validate:"omitempty,max=1000"`
	SortOrder   int            `json:"sortOrder"   validate:"gte=0"`
	Metadata    map[string]any `json:"metadata"`
	IsActive    *bool          `json:"isActive"`
}

type UpdateCategoryRequest struct {
	Name        *string        `json:"name"        validate:"omitempty,min=1,max=100"`
	Slug        *string        `json:"slug"        validate:"omitempty,max=120,slug"`
	Description *string        `json:"description" validate:"omitempty,max=1000"`
	SortOrder   *int           `json:"sortOrder"   validate:"omitempty,gte=0"`
	Metadata    map[string]any `json:"metadata"`
	IsActive    *bool          `json:"isActive"`
}

type CategoryResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description *string        `json:"description"`
	SortOrder   int            `json:"sortOrder"`
	Metadata    map[string]any `json:"metadata"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func ToCategoryResponse(c Category) CategoryResponse {
	metadata := map[string]any(c.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		Metadata:    metadata,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToCategoryResponseList(categories []Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, ToCategoryResponse(c))
	}
	return out
}

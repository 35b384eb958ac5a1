// AngelaMos | 2026
// entity.go

package category

import (
	"time"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

type Category struct {
	ID          string       `db:"id"`
	Name        string       `db:"name"`
	Slug        string       `db:"slug"`
	Description *string      `db:"description"`
	SortOrder   int          `db:"sort_order"`
	Metadata    core.JSONMap `db:"metadata"`
	IsActive    bool         `db:"is_active"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
	DeletedAt   *time.Time   `db:"deleted_at"`
}

func (c *Category) IsDeleted() bool {
	return c.DeletedAt != nil
}

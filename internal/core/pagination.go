// AngelaMos | 2026
// pagination.go

package core

// MaxPage bounds page numbers so offsets cannot overflow.
const MaxPage = 1_000_000

type PaginatedResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func NewPaginatedResult[T any](data []T, total, page, limit int) PaginatedResult[T] {
	if data == nil {
		data = []T{}
	}
	return PaginatedResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages is ceil(total/limit); zero when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func Skip(page, limit int) int {
	return (ClampPage(page) - 1) * limit
}

func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return min(page, MaxPage)
}

// MapPage converts the items of a page while keeping its counters.
func MapPage[T, U any](p PaginatedResult[T], fn func(T) U) PaginatedResult[U] {
	out := make([]U, 0, len(p.Data))
	for _, item := range p.Data {
		out = append(out, fn(item))
	}
	return PaginatedResult[U]{
		Data:       out,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

func ClampLimit(limit, def, maxLimit int) int {
	if limit < 1 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

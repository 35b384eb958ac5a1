// AngelaMos | 2026
// handler.go

package product

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
	"github.com/carterperez-dev/templates/commerce-backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts /products. Reads are public but still resolve an
// optional bearer token so authenticated callers see the creator.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/", h.Search)
			r.Get("/search", h.Search)
			r.Get("/popular", h.Popular)
			r.Get("/recent", h.Recent)
			r.Get("/category/{categoryId}", h.ByCategory)
			r.Get("/slug/{slug}", h.GetBySlug)
			r.Get("/{id}", h.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(adminOnly)

			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	c, err := CriteriaFromRequest(r)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	result, err := h.service.SearchProducts(r.Context(), c)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.Paginated(w, r, h.page(r, result))
}

func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetPopularProducts(
		r.Context(),
		core.QueryInt(r, "limit", defaultListingLimit),
	)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, ToProductResponseList(products, h.includeCreator(r)))
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetRecentProducts(
		r.Context(),
		core.QueryInt(r, "limit", defaultListingLimit),
	)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, ToProductResponseList(products, h.includeCreator(r)))
}

func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetProductsByCategory(
		r.Context(),
		chi.URLParam(r, "categoryId"),
		core.QueryInt(r, "page", DefaultPage),
		core.QueryInt(r, "limit", DefaultLimit),
	)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.Paginated(w, r, h.page(r, result))
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProductByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, ToProductResponse(*p, h.includeCreator(r)))
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, ToProductResponse(*p, h.includeCreator(r)))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.JSONError(w, r, err)
		return
	}

	p, err := h.service.CreateProduct(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.Created(w, r, ToProductResponse(*p, true))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.JSONError(w, r, err)
		return
	}

	p, err := h.service.UpdateProduct(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "id"),
		req,
	)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, ToProductResponse(*p, true))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteProduct(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) includeCreator(r *http.Request) bool {
	return middleware.IsAuthenticated(r.Context())
}

func (h *Handler) page(
	r *http.Request,
	result core.PaginatedResult[Product],
) core.PaginatedResult[ProductResponse] {
	include := h.includeCreator(r)
	return core.MapPage(result, func(p Product) ProductResponse {
		return ToProductResponse(p, include)
	})
}

// CriteriaFromRequest reads search filters from the query string. Malformed
// numbers are reported per field; unknown sort options fall back to the
// defaults.
func CriteriaFromRequest(r *http.Request) (SearchCriteria, error) {
	q := r.URL.Query()

	search := q.Get("search")
	if search == "" {
		search = q.Get("q")
	}

	inStock, _ := core.QueryBool(r, "inStock")

	c := SearchCriteria{
		Search:     search,
		CategoryID: strings.TrimSpace(q.Get("categoryId")),
		InStock:    inStock,
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
		Page:       core.QueryInt(r, "page", DefaultPage),
		Limit:      core.QueryInt(r, "limit", DefaultLimit),
	}

	var fieldErrs []core.FieldError
	if c.CategoryID != "" {
		if _, err := uuid.Parse(c.CategoryID); err != nil {
			fieldErrs = append(fieldErrs, core.FieldError{Field: "categoryId", Message: "must be a valid uuid"})
		}
	}

	parse := func(key string) *decimal.Decimal {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fieldErrs = append(fieldErrs, core.FieldError{Field: key, Message: "must be a number"})
			return nil
		}
		if d.IsNegative() {
			fieldErrs = append(fieldErrs, core.FieldError{Field: key, Message: "must be at least 0"})
			return nil
		}
		return &d
	}

	c.MinPrice = parse("minPrice")
	c.MaxPrice = parse("maxPrice")
	c.MinRating = parse("minRating")

	if c.MinRating != nil && c.MinRating.GreaterThan(decimal.NewFromInt(5)) {
		fieldErrs = append(fieldErrs, core.FieldError{Field: "minRating", Message: "must be at most 5"})
	}

	if len(fieldErrs) > 0 {
		return SearchCriteria{}, core.ValidationError(fieldErrs)
	}

	if err := c.ValidatePriceRange(); err != nil {
		return SearchCriteria{}, err
	}

	return c, nil
}

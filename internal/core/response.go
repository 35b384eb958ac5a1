// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"
)

const CorrelationIDHeader = "X-Correlation-ID"

var apiVersion = "1.0.0"

// SetAPIVersion sets the version reported in every envelope. Call once at
// startup before the server accepts requests.
func SetAPIVersion(v string) {
	if v != "" {
		apiVersion = v
	}
}

type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Meta       Meta        `json:"meta"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Meta struct {
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlationId"`
	Path          string    `json:"path"`
	Method        string    `json:"method"`
	StatusCode    int       `json:"statusCode"`
	Version       string    `json:"version"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func newMeta(r *http.Request, status int) Meta {
	return Meta{
		Timestamp:     time.Now().UTC(),
		CorrelationID: CorrelationID(r.Context()),
		Path:          r.URL.Path,
		Method:        r.Method,
		StatusCode:    status,
		Version:       apiVersion,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, Envelope{
		Success: status < http.StatusBadRequest,
		Data:    data,
		Meta:    newMeta(r, status),
	})
}

func OK(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusOK, data)
}

func Created(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Paginated[T any](
	w http.ResponseWriter,
	r *http.Request,
	result PaginatedResult[T],
) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    result.Data,
		Meta:    newMeta(r, http.StatusOK),
		Pagination: &Pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
			HasNext:    result.Page < result.TotalPages,
			HasPrev:    result.Page > 1,
		},
	})
}

// JSONError renders err as the error envelope. Client errors keep their
// message and are logged without a stack; server errors are logged in full
// and answered with a generic message.
func JSONError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := toAppError(err)
	logError(r, appErr, err)

	writeJSON(w, appErr.StatusCode, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		Meta: newMeta(r, appErr.StatusCode),
	})
}

func logError(r *http.Request, appErr *AppError, cause error) {
	ctx := r.Context()
	logger := Logger(ctx)

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", appErr.StatusCode,
		"code", appErr.Code,
	}

	if appErr.StatusCode < http.StatusInternalServerError {
		logger.WarnContext(ctx, appErr.Message, attrs...)
		return
	}

	attrs = append(attrs,
		"error", cause,
		"headers", SanitizeHeaders(r.Header),
		"stack", string(debug.Stack()),
	)
	if body := RequestBody(ctx); len(body) > 0 {
		attrs = append(attrs, "body", SanitizeBody(body))
	}
	logger.ErrorContext(ctx, "request failed", attrs...)
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	JSONError(w, r, BadRequestError(message))
}

func NotFound(w http.ResponseWriter, r *http.Request, resource string) {
	JSONError(w, r, NotFoundError(resource))
}

func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	JSONError(w, r, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, r *http.Request, message string) {
	JSONError(w, r, ForbiddenError(message))
}

func InternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	JSONError(w, r, InternalError(err))
}

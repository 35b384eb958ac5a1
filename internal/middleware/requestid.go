// AngelaMos | 2026
// requestid.go

package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/commerce-backend/internal/core"
)

type contextKey string

const (
	requestIDHeader = "X-Request-ID"
	maxIDLength     = 128
	maxBodySnapshot = 64 << 10
)

// CorrelationID reads X-Correlation-ID, then X-Request-ID, and generates a
// uuid when neither is usable. The id is echoed on the response.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(core.CorrelationIDHeader)
		if !validID(id) {
			id = r.Header.Get(requestIDHeader)
		}
		if !validID(id) {
			id = uuid.NewString()
		}

		w.Header().Set(core.CorrelationIDHeader, id)
		ctx := core.WithCorrelationID(r.Context(), id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

// Logger installs a request-scoped logger, keeps a bounded snapshot of the
// body for error reports and logs each completed request.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			logger := base.With("correlation_id", core.CorrelationID(ctx))
			if traceID := core.TraceIDFromContext(ctx); traceID != "" {
				logger = logger.With("trace_id", traceID)
			}
			ctx = core.WithLogger(ctx, logger)

			if body := snapshotBody(r); len(body) > 0 {
				ctx = core.WithRequestBody(ctx, body)
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logger.InfoContext(ctx, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// snapshotBody copies up to maxBodySnapshot bytes and restores r.Body so
// handlers still see the full stream.
func snapshotBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, maxBodySnapshot))
	if err != nil {
		return nil
	}

	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	return head
}

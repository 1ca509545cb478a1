package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
)

// NewLoggerMiddleware emits one structured line per request.
func NewLoggerMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// OwnerMiddleware resolves the acting account from the X-Owner-ID header and
// stores it in the request context. Every /api route requires it.
func OwnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Owner-ID")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing X-Owner-ID header")
			return
		}
		if _, err := uuid.Parse(raw); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid X-Owner-ID header")
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithOwnerID(r.Context(), raw)))
	})
}

// ownerID pulls the validated owner out of the context.
func ownerID(r *http.Request) uuid.UUID {
	id, _ := uuid.Parse(common.OwnerIDFromContext(r.Context()))
	return id
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

// HealthHandler exposes a readiness probe.
type HealthHandler struct {
	Store repository.Store
}

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
}

func (h HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := h.Store.Ping(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeRawJSON(w, code, map[string]string{"status": status})
}

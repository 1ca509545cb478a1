package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/export"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

// ExportHandler streams XLSX financial reports.
type ExportHandler struct {
	Exporter *export.Service
	Store    repository.Store
	Logger   *slog.Logger
}

func (h ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/jobs/{id}/export", h.exportJob)
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return &t, nil
}

func (h ExportHandler) exportJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if job.OwnerID != ownerID(r) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	data, err := h.Exporter.ExportJobXLSX(r.Context(), jobID, from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="job-%s.xlsx"`, jobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

type AlertHandler struct {
	Store repository.Store
}

func (h AlertHandler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.list)
	r.Post("/alerts/{id}/read", h.markRead)
}

func (h AlertHandler) list(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	alerts, err := h.Store.ListAlerts(r.Context(), ownerID(r), unreadOnly)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h AlertHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := h.Store.MarkAlertRead(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"read": id.String()})
}

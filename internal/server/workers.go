package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

type WorkerHandler struct {
	Store repository.Store
}

func (h WorkerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/workers", h.list)
	r.Post("/workers", h.create)
	r.Put("/workers/{id}", h.update)
}

type workerRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	HourlyRate *float64 `json:"hourly_rate"`
	Active     *bool    `json:"active"`
}

func (h WorkerHandler) list(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Store.ListWorkers(r.Context(), ownerID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workers)
}

func (h WorkerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	v := common.NewValidator()
	v.Field("name", req.Name, common.Required, maxLen(200))
	if err := v.Error(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := ownerID(r)
	worker := &entity.Worker{
		Name:       req.Name,
		Email:      req.Email,
		Role:       constants.RoleWorker,
		HourlyRate: req.HourlyRate,
		Active:     true,
		OwnerID:    &owner,
	}
	if req.Role != "" {
		worker.Role = constants.WorkerRole(req.Role)
	}
	if req.Active != nil {
		worker.Active = *req.Active
	}

	if err := h.Store.CreateWorker(r.Context(), worker); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, worker)
}

func (h WorkerHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid worker id")
		return
	}
	worker, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	owner := ownerID(r)
	if worker.ID != owner && (worker.OwnerID == nil || *worker.OwnerID != owner) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name != "" {
		worker.Name = req.Name
	}
	if req.Email != "" {
		worker.Email = req.Email
	}
	if req.Role != "" {
		worker.Role = constants.WorkerRole(req.Role)
	}
	worker.HourlyRate = req.HourlyRate
	if req.Active != nil {
		worker.Active = *req.Active
	}

	if err := h.Store.UpdateWorker(r.Context(), worker); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

type JobHandler struct {
	Store repository.Store
}

func (h JobHandler) RegisterRoutes(r chi.Router) {
	r.Get("/jobs", h.list)
	r.Post("/jobs", h.create)
	r.Get("/jobs/{id}", h.get)
	r.Put("/jobs/{id}", h.update)
	r.Delete("/jobs/{id}", h.delete)
}

type jobRequest struct {
	JobName      string     `json:"job_name"`
	ClientName   string     `json:"client_name"`
	Address      string     `json:"address"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Status       string     `json:"status"`
	ProjectValue float64    `json:"project_value"`
	AmountPaid   float64    `json:"amount_paid"`
	Notes        string     `json:"notes"`
}

func (h JobHandler) list(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.ListJobs(r.Context(), ownerID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h JobHandler) create(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	v := common.NewValidator()
	v.Field("job_name", req.JobName, common.Required, maxLen(200))
	v.Field("client_name", req.ClientName, maxLen(200))
	if err := v.Error(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &entity.Job{
		OwnerID:      ownerID(r),
		JobName:      req.JobName,
		ClientName:   req.ClientName,
		Address:      req.Address,
		StartDate:    time.Now().UTC(),
		EndDate:      req.EndDate,
		Status:       constants.JobStatusActive,
		ProjectValue: req.ProjectValue,
		AmountPaid:   req.AmountPaid,
		Notes:        req.Notes,
	}
	if req.StartDate != nil {
		job.StartDate = *req.StartDate
	}
	if req.Status != "" {
		job.Status = constants.JobStatus(req.Status)
	}

	if err := h.Store.CreateJob(r.Context(), job); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// loadOwned fetches the job and hides it when the caller is not its owner.
func (h JobHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*entity.Job, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return nil, false
	}
	job, err := h.Store.GetJob(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if job.OwnerID != ownerID(r) {
		writeError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return job, true
}

func (h JobHandler) get(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h JobHandler) update(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.JobName != "" {
		job.JobName = req.JobName
	}
	job.ClientName = req.ClientName
	job.Address = req.Address
	if req.StartDate != nil {
		job.StartDate = *req.StartDate
	}
	job.EndDate = req.EndDate
	if req.Status != "" {
		job.Status = constants.JobStatus(req.Status)
	}
	job.ProjectValue = req.ProjectValue
	job.AmountPaid = req.AmountPaid
	job.Notes = req.Notes

	if err := h.Store.UpdateJob(r.Context(), job); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h JobHandler) delete(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteJob(r.Context(), job.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": job.ID.String()})
}

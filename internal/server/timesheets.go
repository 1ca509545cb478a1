package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

type TimesheetHandler struct {
	Store repository.Store
}

func (h TimesheetHandler) RegisterRoutes(r chi.Router) {
	r.Get("/timesheets", h.list)
	r.Post("/timesheets", h.create)
	r.Put("/timesheets/{id}", h.update)
}

type timesheetRequest struct {
	WorkerID         uuid.UUID  `json:"worker_id"`
	JobID            uuid.UUID  `json:"job_id"`
	ClockIn          *time.Time `json:"clock_in"`
	ClockOut         *time.Time `json:"clock_out"`
	Hours            *float64   `json:"hours"`
	Status           string     `json:"status"`
	ClockInLocation  *string    `json:"clock_in_location"`
	ClockOutLocation *string    `json:"clock_out_location"`
}

// timesheetView exposes both hour figures next to the stored record: the
// clock-derived value and the billable value the labor model uses.
type timesheetView struct {
	*entity.Timesheet
	HoursWorked   float64  `json:"hours_worked"`
	BillableHours *float64 `json:"billable_hours"`
}

func viewOf(ts *entity.Timesheet) timesheetView {
	v := timesheetView{Timesheet: ts, HoursWorked: ts.HoursWorked()}
	if hours, ok := ts.BillableHours(); ok {
		v.BillableHours = &hours
	}
	return v
}

func (h TimesheetHandler) list(w http.ResponseWriter, r *http.Request) {
	var (
		sheets []*entity.Timesheet
		err    error
	)
	if raw := r.URL.Query().Get("job_id"); raw != "" {
		jobID, perr := uuid.Parse(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid job_id")
			return
		}
		sheets, err = h.Store.ListTimesheetsByJob(r.Context(), jobID)
	} else {
		sheets, err = h.Store.ListTimesheetsByOwner(r.Context(), ownerID(r))
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}

	views := make([]timesheetView, 0, len(sheets))
	for _, ts := range sheets {
		views = append(views, viewOf(ts))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h TimesheetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req timesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.WorkerID == uuid.Nil || req.JobID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "worker_id and job_id are required")
		return
	}

	ts := &entity.Timesheet{
		OwnerID:          ownerID(r),
		WorkerID:         req.WorkerID,
		JobID:            req.JobID,
		ClockIn:          time.Now().UTC(),
		ClockOut:         req.ClockOut,
		Hours:            req.Hours,
		Status:           constants.TimesheetWorking,
		ClockInLocation:  req.ClockInLocation,
		ClockOutLocation: req.ClockOutLocation,
	}
	if req.ClockIn != nil {
		ts.ClockIn = *req.ClockIn
	}
	if req.ClockOut != nil {
		ts.Status = constants.TimesheetCompleted
	}
	if req.Status != "" {
		ts.Status = constants.TimesheetStatus(req.Status)
	}

	if err := h.Store.CreateTimesheet(r.Context(), ts); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(ts))
}

func (h TimesheetHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	var req timesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	// The store keys the update by ID; only mutable fields come from the
	// request.
	ts := &entity.Timesheet{
		ID:               id,
		ClockIn:          time.Now().UTC(),
		ClockOut:         req.ClockOut,
		Hours:            req.Hours,
		Status:           constants.TimesheetStatus(req.Status),
		ClockInLocation:  req.ClockInLocation,
		ClockOutLocation: req.ClockOutLocation,
	}
	if req.ClockIn != nil {
		ts.ClockIn = *req.ClockIn
	}
	if req.Status == "" {
		if req.ClockOut != nil {
			ts.Status = constants.TimesheetCompleted
		} else {
			ts.Status = constants.TimesheetWorking
		}
	}

	if err := h.Store.UpdateTimesheet(r.Context(), ts); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(ts))
}

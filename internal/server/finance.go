package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/alerts"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/finance"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

// FinanceHandler serves computed job finances and runs the alert policy.
type FinanceHandler struct {
	Store  repository.Store
	Policy *alerts.Policy
	Logger *slog.Logger
}

func (h FinanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/jobs/{id}/finance", h.jobFinance)
	r.Post("/alerts/evaluate", h.evaluateAlerts)
}

// financeResponse pairs the computed snapshot with display-only receipt
// totals. Receipt spend is shown per category but never enters the snapshot.
type financeResponse struct {
	Snapshot      finance.Snapshot   `json:"snapshot"`
	ReceiptTotals map[string]float64 `json:"receipt_totals"`
	ReceiptCount  int                `json:"receipt_count"`
}

func (h FinanceHandler) snapshotJob(r *http.Request, job *entity.Job) (finance.Snapshot, []*entity.Timesheet, error) {
	timesheets, err := h.Store.ListTimesheetsByJob(r.Context(), job.ID)
	if err != nil {
		return finance.Snapshot{}, nil, err
	}
	workers, err := h.Store.ListWorkers(r.Context(), job.OwnerID)
	if err != nil {
		return finance.Snapshot{}, nil, err
	}
	labor := finance.LaborCost(job.ID, timesheets, workers)
	return finance.Compute(job, labor), timesheets, nil
}

func (h FinanceHandler) jobFinance(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
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

	snap, _, err := h.snapshotJob(r, job)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	receipts, err := h.Store.ListReceiptsByJob(r.Context(), jobID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	totals := make(map[string]float64)
	for _, rc := range receipts {
		cat := "Other"
		if rc.Category != nil {
			cat = *rc.Category
		}
		totals[cat] += rc.Amount
	}

	writeJSON(w, http.StatusOK, financeResponse{
		Snapshot:      snap,
		ReceiptTotals: totals,
		ReceiptCount:  len(receipts),
	})
}

// evaluateAlerts runs the policy over every job for the owner, persists what
// fired and returns it.
func (h FinanceHandler) evaluateAlerts(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	jobs, err := h.Store.ListJobs(r.Context(), owner)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var fired []entity.Alert
	for _, job := range jobs {
		snap, timesheets, err := h.snapshotJob(r, job)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		fired = append(fired, h.Policy.Evaluate(job, snap, timesheets)...)
	}

	if len(fired) > 0 {
		if err := h.Store.InsertAlerts(r.Context(), fired); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	h.Logger.Info("alerts.evaluate.ok", "owner_id", owner, "jobs", len(jobs), "fired", len(fired))
	writeJSON(w, http.StatusOK, fired)
}

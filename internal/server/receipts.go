package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/classify"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

type ReceiptHandler struct {
	Store repository.Store
}

func (h ReceiptHandler) RegisterRoutes(r chi.Router) {
	r.Get("/receipts", h.list)
	r.Post("/receipts", h.create)
	r.Delete("/receipts/{id}", h.delete)
	r.Get("/categories", h.categories)
}

// categories returns the canonical expense category labels for pickers.
func (h ReceiptHandler) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, constants.AsStringSlice())
}

type receiptRequest struct {
	JobID        *uuid.UUID `json:"job_id"`
	Amount       float64    `json:"amount"`
	Vendor       string     `json:"vendor"`
	Category     *string    `json:"category"`
	Date         *time.Time `json:"date"`
	Notes        string     `json:"notes"`
	ImageURL     *string    `json:"image_url"`
	AIProcessed  bool       `json:"ai_processed"`
	AIConfidence *float64   `json:"ai_confidence"`
	AIFlags      []string   `json:"ai_flags"`
}

// receiptView adds the derived refund marker to the stored record.
type receiptView struct {
	*entity.Receipt
	Refund bool `json:"refund"`
}

func (h ReceiptHandler) list(w http.ResponseWriter, r *http.Request) {
	var (
		receipts []*entity.Receipt
		err      error
	)
	if raw := r.URL.Query().Get("job_id"); raw != "" {
		jobID, perr := uuid.Parse(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid job_id")
			return
		}
		receipts, err = h.Store.ListReceiptsByJob(r.Context(), jobID)
	} else {
		receipts, err = h.Store.ListReceiptsByOwner(r.Context(), ownerID(r))
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}

	views := make([]receiptView, 0, len(receipts))
	for _, rc := range receipts {
		views = append(views, receiptView{Receipt: rc, Refund: classify.IsRefund(rc)})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h ReceiptHandler) create(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	v := common.NewValidator()
	v.Field("vendor", req.Vendor, common.Required, maxLen(200))
	if err := v.Error(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Category labels are canonicalized; unknown labels fall back to Other.
	if req.Category != nil {
		canon, _ := constants.Canonicalize(*req.Category)
		c := string(canon)
		req.Category = &c
	}

	receipt := &entity.Receipt{
		OwnerID:      ownerID(r),
		JobID:        req.JobID,
		Amount:       req.Amount,
		Vendor:       req.Vendor,
		Category:     req.Category,
		Date:         time.Now().UTC(),
		Notes:        req.Notes,
		ImageURL:     req.ImageURL,
		AIProcessed:  req.AIProcessed,
		AIConfidence: req.AIConfidence,
		AIFlags:      req.AIFlags,
	}
	if req.Date != nil {
		receipt.Date = *req.Date
	}

	if err := h.Store.CreateReceipt(r.Context(), receipt); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receiptView{Receipt: receipt, Refund: classify.IsRefund(receipt)})
}

func (h ReceiptHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid receipt id")
		return
	}
	if err := h.Store.DeleteReceipt(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

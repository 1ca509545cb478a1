package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/pipeline"
)

// maxUploadBytes caps receipt/document uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// ScanHandler runs the scan pipeline on uploaded images. Nothing is
// persisted; the client reviews the candidate and creates the receipt via the
// CRUD endpoint.
type ScanHandler struct {
	Scanner *pipeline.Scanner
	Logger  *slog.Logger
}

func (h ScanHandler) RegisterRoutes(r chi.Router) {
	r.Post("/receipts/scan", h.scanReceipt)
	r.Post("/documents/scan", h.scanDocument)
}

// readUpload pulls the "file" part out of a multipart form, falling back to
// the raw body for clients that POST the image directly.
func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err == nil {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return nil, "", err
		}
		return data, header.Header.Get("Content-Type"), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		return nil, "", err
	}
	return data, r.Header.Get("Content-Type"), nil
}

func (h ScanHandler) scanReceipt(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := readUpload(r)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "missing image upload")
		return
	}

	var jobID *uuid.UUID
	if raw := r.URL.Query().Get("job_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid job_id")
			return
		}
		jobID = &id
	}

	result, err := h.Scanner.Scan(r.Context(), ownerID(r), jobID, data, contentType)
	if err != nil {
		if errors.Is(err, common.ErrNoText) {
			writeError(w, http.StatusUnprocessableEntity, "no text found in document")
			return
		}
		h.Logger.Error("scan.request.failed", "err", err)
		writeError(w, http.StatusBadGateway, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h ScanHandler) scanDocument(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := readUpload(r)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "missing image upload")
		return
	}

	doc, err := h.Scanner.ScanDocument(r.Context(), data, contentType)
	if err != nil {
		if errors.Is(err, common.ErrNoText) {
			writeError(w, http.StatusUnprocessableEntity, "no text found in document")
			return
		}
		h.Logger.Error("scan.document.failed", "err", err)
		writeError(w, http.StatusBadGateway, "classification failed")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

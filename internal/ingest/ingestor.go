package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/pipeline"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

// Ingestor scans a file from disk and commits the resulting receipt for a
// fixed owner. Auto-ingested receipts carry flags instead of blocking:
// "auto_ingested" always, "possible_duplicate" and "refund" when detected.
type Ingestor struct {
	Scanner  *pipeline.Scanner
	Receipts repository.ReceiptStore
	OwnerID  uuid.UUID
	JobID    *uuid.UUID
	Logger   *slog.Logger
}

func NewIngestor(scanner *pipeline.Scanner, receipts repository.ReceiptStore, ownerID uuid.UUID, jobID *uuid.UUID, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{Scanner: scanner, Receipts: receipts, OwnerID: ownerID, JobID: jobID, Logger: logger}
}

// ProcessPath runs the scan pipeline on one file and stores the receipt.
func (i *Ingestor) ProcessPath(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))

	result, err := i.Scanner.Scan(ctx, i.OwnerID, i.JobID, data, contentType)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}

	flags := []string{"auto_ingested"}
	if len(result.Duplicates) > 0 {
		flags = append(flags, "possible_duplicate")
	}
	if result.Refund {
		flags = append(flags, "refund")
	}

	confidence := result.Candidate.Confidence
	url := "file://" + path
	receipt := &entity.Receipt{
		OwnerID:      i.OwnerID,
		JobID:        i.JobID,
		Amount:       result.Candidate.Amount,
		Vendor:       result.Candidate.Vendor,
		Category:     &result.Category,
		Date:         result.Candidate.Date,
		ImageURL:     &url,
		AIProcessed:  true,
		AIConfidence: &confidence,
		AIFlags:      flags,
	}
	if err := i.Receipts.CreateReceipt(ctx, receipt); err != nil {
		return fmt.Errorf("store receipt for %s: %w", path, err)
	}

	i.Logger.Info("ingest.receipt.ok",
		"path", path,
		"receipt_id", receipt.ID,
		"vendor", receipt.Vendor,
		"amount", receipt.Amount,
		"flags", flags,
	)
	return nil
}

// Package pipeline coordinates one receipt scan: image preparation, OCR,
// text normalization, field parsing, categorization, refund detection and
// duplicate lookup. The pipeline never writes; the caller decides whether a
// candidate becomes a stored receipt.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joseph-ayodele/jobsite-tracker/internal/classify"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/dedupe"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/ocr"
	"github.com/joseph-ayodele/jobsite-tracker/internal/parse"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobsite_receipt_scans_total",
		Help: "Receipt scans by outcome.",
	}, []string{"outcome"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobsite_receipt_scan_duration_seconds",
		Help:    "End-to-end receipt scan latency.",
		Buckets: prometheus.DefBuckets,
	})

	duplicateHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobsite_receipt_duplicate_hits_total",
		Help: "Scans that matched at least one likely duplicate.",
	})
)

// Scanner wires the scan stages together. Extractor is required; Classifier
// is optional and only used for ScanDocument.
type Scanner struct {
	Extractor  ocr.TextExtractor
	Classifier ocr.DocumentClassifier
	Parser     *parse.Parser
	Receipts   repository.ReceiptStore
	Logger     *slog.Logger
}

func NewScanner(extractor ocr.TextExtractor, classifier ocr.DocumentClassifier, receipts repository.ReceiptStore, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		Extractor:  extractor,
		Classifier: classifier,
		Parser:     parse.NewParser(),
		Receipts:   receipts,
		Logger:     logger,
	}
}

// ScanResult is everything one pass over a receipt image produced. The
// candidate plus the advisory signals around it; nothing here has been
// persisted.
type ScanResult struct {
	Candidate          entity.ReceiptCandidate `json:"candidate"`
	Category           string                  `json:"category"`
	CategoryConfidence float64                 `json:"category_confidence"`
	Refund             bool                    `json:"refund"`
	Duplicates         []dedupe.Match          `json:"duplicates,omitempty"`
	Readability        float64                 `json:"readability"`
}

// Scan runs the full pipeline on one image. jobID scopes the duplicate
// lookup when set; otherwise all of the owner's receipts are searched.
func (s *Scanner) Scan(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID, imageData []byte, contentType string) (*ScanResult, error) {
	start := time.Now()

	prepared, mimeType, converted, err := ocr.PrepareImage(imageData, contentType)
	if err != nil {
		scansTotal.WithLabelValues("prepare_error").Inc()
		s.Logger.Error("scan.prepare.failed", "content_type", contentType, "err", err)
		return nil, err
	}
	if converted {
		s.Logger.Debug("scan.prepare.converted", "from", contentType, "to", mimeType)
	}

	rawText, err := s.Extractor.ExtractText(ctx, prepared, mimeType)
	if err != nil {
		scansTotal.WithLabelValues("ocr_error").Inc()
		s.Logger.Error("scan.extract.failed", "err", err)
		return nil, err
	}

	text := ocr.Normalize(rawText)
	if text == "" {
		scansTotal.WithLabelValues("no_text").Inc()
		return nil, common.ErrNoText
	}
	readability := ocr.Readability(text)
	s.Logger.Info("scan.extract.ok", "bytes", len(text), "readability", readability)

	candidate, err := s.Parser.Parse(text)
	if err != nil {
		scansTotal.WithLabelValues("parse_error").Inc()
		return nil, err
	}
	s.Logger.Info("scan.parse.ok",
		"vendor", candidate.Vendor,
		"amount", candidate.Amount,
		"date_found", candidate.DateFound,
		"confidence", candidate.Confidence,
	)

	category, catConf := classify.Categorize(candidate.Vendor)

	// Notes stay empty here: they hold user-entered text, which does not
	// exist at scan time. Feeding the raw transcript in would match refund
	// keywords on payment-method lines ("PAID BY CREDIT CARD") and return
	// policies printed on ordinary receipts.
	prospective := &entity.Receipt{
		OwnerID:  ownerID,
		JobID:    jobID,
		Amount:   candidate.Amount,
		Vendor:   candidate.Vendor,
		Category: &category,
		Date:     candidate.Date,
	}
	refund := classify.IsRefund(prospective)

	duplicates, err := s.findDuplicates(ctx, ownerID, jobID, prospective)
	if err != nil {
		// Dedupe is advisory; a store error must not sink the scan.
		s.Logger.Warn("scan.dedupe.failed", "err", err)
		duplicates = nil
	}
	if len(duplicates) > 0 {
		duplicateHits.Inc()
		s.Logger.Info("scan.dedupe.hit", "matches", len(duplicates), "top", duplicates[0].Similarity)
	}

	scansTotal.WithLabelValues("ok").Inc()
	scanDuration.Observe(time.Since(start).Seconds())

	return &ScanResult{
		Candidate:          candidate,
		Category:           category,
		CategoryConfidence: catConf,
		Refund:             refund,
		Duplicates:         duplicates,
		Readability:        readability,
	}, nil
}

func (s *Scanner) findDuplicates(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID, candidate *entity.Receipt) ([]dedupe.Match, error) {
	var (
		existing []*entity.Receipt
		err      error
	)
	if jobID != nil {
		existing, err = s.Receipts.ListReceiptsByJob(ctx, *jobID)
	} else {
		existing, err = s.Receipts.ListReceiptsByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, err
	}
	return dedupe.FindDuplicates(candidate, existing), nil
}

// ScanDocument classifies a non-receipt document image: OCR first, then the
// language-model classifier, then tolerant decoding with defaults.
func (s *Scanner) ScanDocument(ctx context.Context, imageData []byte, contentType string) (entity.DocumentClassification, error) {
	var zero entity.DocumentClassification
	if s.Classifier == nil {
		return zero, common.ErrInternal
	}

	prepared, mimeType, _, err := ocr.PrepareImage(imageData, contentType)
	if err != nil {
		return zero, err
	}
	rawText, err := s.Extractor.ExtractText(ctx, prepared, mimeType)
	if err != nil {
		return zero, err
	}
	text := ocr.Normalize(rawText)
	if text == "" {
		return zero, common.ErrNoText
	}

	payload, err := s.Classifier.ClassifyDocument(ctx, text)
	if err != nil {
		return zero, err
	}
	doc, err := classify.DecodeClassification(payload)
	if err != nil {
		s.Logger.Error("scan.classify.failed", "err", err)
		return zero, err
	}
	s.Logger.Info("scan.classify.ok", "type", doc.DocumentType, "confidence", doc.Confidence)
	return doc, nil
}

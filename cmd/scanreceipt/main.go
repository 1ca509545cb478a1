// scanreceipt runs the scan pipeline on one image file from the command line
// and prints the resulting candidate as JSON. Useful for trying providers and
// prompts without a running server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/ocr"
	"github.com/joseph-ayodele/jobsite-tracker/internal/pipeline"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

// noopReceipts satisfies the store dependency when no database is given;
// duplicate detection simply finds nothing.
type noopReceipts struct{}

func (noopReceipts) CreateReceipt(context.Context, *entity.Receipt) error { return nil }
func (noopReceipts) DeleteReceipt(context.Context, uuid.UUID) error       { return nil }

func (noopReceipts) ListReceiptsByOwner(context.Context, uuid.UUID) ([]*entity.Receipt, error) {
	return nil, nil
}

func (noopReceipts) ListReceiptsByJob(context.Context, uuid.UUID) ([]*entity.Receipt, error) {
	return nil, nil
}

func main() {
	fs := ff.NewFlagSet("scanreceipt")
	var (
		file        = fs.StringLong("file", "", "Receipt image to scan (png, jpg, heic or pdf)")
		provider    = fs.StringLong("provider", "gemini", "OCR provider: 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		dbPath      = fs.StringLong("db", "", "SQLite database for duplicate lookup (optional)")
		ownerFlag   = fs.StringLong("owner-id", "", "Owner UUID scoping the duplicate lookup")
		jobFlag     = fs.StringLong("job-id", "", "Job UUID scoping the duplicate lookup (optional)")
		document    = fs.BoolLong("document", "Classify as a general document instead of a receipt")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("JOBSITE")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *file == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --file is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	data, err := os.ReadFile(*file)
	if err != nil {
		fatal(logger, "read file", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(*file))

	var extractor ocr.TextExtractor
	var classifier ocr.DocumentClassifier
	switch *provider {
	case "ollama":
		o, err := ocr.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			fatal(logger, "init ollama", err)
		}
		extractor, classifier = o, o
	default:
		key := *geminiKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		g, err := ocr.NewGemini(ctx, key, *geminiModel)
		if err != nil {
			fatal(logger, "init gemini", err)
		}
		extractor, classifier = g, g
	}
	defer func() { _ = extractor.Close() }()

	var receipts repository.ReceiptStore = noopReceipts{}
	ownerID := uuid.Nil
	if *dbPath != "" {
		store, err := repository.OpenSQLite(ctx, *dbPath, logger)
		if err != nil {
			fatal(logger, "open sqlite", err)
		}
		defer func() { _ = store.Close() }()
		receipts = store
		if ownerID, err = uuid.Parse(*ownerFlag); err != nil {
			fatal(logger, "parse --owner-id", err)
		}
	}

	var jobID *uuid.UUID
	if *jobFlag != "" {
		id, err := uuid.Parse(*jobFlag)
		if err != nil {
			fatal(logger, "parse --job-id", err)
		}
		jobID = &id
	}

	scanner := pipeline.NewScanner(extractor, classifier, receipts, logger)

	var result any
	if *document {
		result, err = scanner.ScanDocument(ctx, data, contentType)
	} else {
		result, err = scanner.Scan(ctx, ownerID, jobID, data, contentType)
	}
	if err != nil {
		fatal(logger, "scan", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fatal(logger, "encode result", err)
	}
	fmt.Println(string(out))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

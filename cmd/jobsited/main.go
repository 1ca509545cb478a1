// jobsited is the API server: receipt scanning, job finances, alerts and
// XLSX export over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/async"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/ingest"
	"github.com/joseph-ayodele/jobsite-tracker/internal/ocr"
	"github.com/joseph-ayodele/jobsite-tracker/internal/pipeline"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
	"github.com/joseph-ayodele/jobsite-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	extractor, classifier, err := buildProviders(ctx, cfg.OCR)
	if err != nil {
		logger.Error("failed to initialize OCR provider", "provider", cfg.OCR.Provider, "error", err)
		os.Exit(1)
	}
	defer func() { _ = extractor.Close() }()

	scanner := pipeline.NewScanner(extractor, classifier, store, logger)
	router := server.NewRouter(cfg, logger, store, scanner)

	if cfg.Ingest.Dir != "" {
		queue, err := startIngest(ctx, cfg.Ingest, scanner, store, logger)
		if err != nil {
			logger.Error("failed to start ingest watcher", "dir", cfg.Ingest.Dir, "error", err)
			os.Exit(1)
		}
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			queue.Shutdown(drainCtx)
		}()
	}

	if err := server.Start(ctx, cfg.Server, router, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// openStore picks Postgres when a DSN is configured, SQLite otherwise.
func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (repository.Store, error) {
	if cfg.Database.DSN != "" {
		pool, err := repository.OpenPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, common.WrapError(err, "connect postgres")
		}
		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
			pool.Close()
			return nil, common.WrapError(err, "postgres health check")
		}
		return repository.NewPostgres(pool, logger), nil
	}
	store, err := repository.OpenSQLite(ctx, cfg.Database.SQLitePath, logger)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	return store, nil
}

// startIngest wires the drop-folder watcher to a scan worker pool.
func startIngest(ctx context.Context, cfg common.IngestConfig, scanner *pipeline.Scanner, store repository.Store, logger *slog.Logger) (*async.Queue, error) {
	owner, err := uuid.Parse(cfg.OwnerID)
	if err != nil {
		return nil, err
	}
	var jobID *uuid.UUID
	if cfg.JobID != "" {
		id, err := uuid.Parse(cfg.JobID)
		if err != nil {
			return nil, err
		}
		jobID = &id
	}

	ingestor := ingest.NewIngestor(scanner, store, owner, jobID, logger)
	queue := async.NewQueue(ingestor, logger,
		async.WithWorkers(int(cfg.Workers)),
		async.WithProcessTimeout(2*time.Minute),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Dir},
		InitialScan: cfg.InitialScan,
		Debounce:    cfg.Debounce,
	}, logger)
	if err != nil {
		return nil, err
	}

	go func() {
		for events != nil || errs != nil {
			select {
			case path, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				_ = queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now()})
			case _, ok := <-errs:
				if !ok {
					errs = nil
				}
			}
		}
	}()

	logger.Info("ingest watcher started", "dir", cfg.Dir, "workers", cfg.Workers)
	return queue, nil
}

func buildProviders(ctx context.Context, cfg common.OCRConfig) (ocr.TextExtractor, ocr.DocumentClassifier, error) {
	switch cfg.Provider {
	case "ollama":
		o, err := ocr.NewOllama(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, nil, err
		}
		return o, o, nil
	default:
		g, err := ocr.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	}
}

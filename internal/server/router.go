// Package server exposes the HTTP surface: receipt scanning, job finance
// snapshots, XLSX export, alert evaluation and plain CRUD over the store.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/jobsite-tracker/internal/alerts"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/export"
	"github.com/joseph-ayodele/jobsite-tracker/internal/pipeline"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg *common.Config, logger *slog.Logger, store repository.Store, scanner *pipeline.Scanner) http.Handler {
	exporter := export.NewService(store, logger)
	policy := alerts.NewPolicy(cfg.Alerts)

	health := HealthHandler{Store: store}
	scan := ScanHandler{Scanner: scanner, Logger: logger}
	finance := FinanceHandler{Store: store, Policy: policy, Logger: logger}
	xlsx := ExportHandler{Exporter: exporter, Store: store, Logger: logger}
	jobs := JobHandler{Store: store}
	receipts := ReceiptHandler{Store: store}
	timesheets := TimesheetHandler{Store: store}
	workers := WorkerHandler{Store: store}
	alertsH := AlertHandler{Store: store}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Owner-ID"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(OwnerMiddleware)
		scan.RegisterRoutes(api)
		finance.RegisterRoutes(api)
		xlsx.RegisterRoutes(api)
		jobs.RegisterRoutes(api)
		receipts.RegisterRoutes(api)
		timesheets.RegisterRoutes(api)
		workers.RegisterRoutes(api)
		alertsH.RegisterRoutes(api)
	})

	return r
}

// Package repository provides the record store the core reads from and the
// alert policy writes to. Two backends exist: Postgres (pgx) for the hosted
// deployment and SQLite for single-binary installs. The core never touches
// either directly; it sees only these interfaces.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

type JobStore interface {
	CreateJob(ctx context.Context, job *entity.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	ListJobs(ctx context.Context, ownerID uuid.UUID) ([]*entity.Job, error)
	UpdateJob(ctx context.Context, job *entity.Job) error
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

type TimesheetStore interface {
	CreateTimesheet(ctx context.Context, ts *entity.Timesheet) error
	ListTimesheetsByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Timesheet, error)
	ListTimesheetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Timesheet, error)
	UpdateTimesheet(ctx context.Context, ts *entity.Timesheet) error
}

type ReceiptStore interface {
	CreateReceipt(ctx context.Context, r *entity.Receipt) error
	ListReceiptsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Receipt, error)
	ListReceiptsByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Receipt, error)
	DeleteReceipt(ctx context.Context, id uuid.UUID) error
}

type WorkerStore interface {
	CreateWorker(ctx context.Context, w *entity.Worker) error
	GetWorker(ctx context.Context, id uuid.UUID) (*entity.Worker, error)
	ListWorkers(ctx context.Context, ownerID uuid.UUID) ([]*entity.Worker, error)
	UpdateWorker(ctx context.Context, w *entity.Worker) error
}

type AlertStore interface {
	InsertAlerts(ctx context.Context, alerts []entity.Alert) error
	ListAlerts(ctx context.Context, ownerID uuid.UUID, unreadOnly bool) ([]*entity.Alert, error)
	MarkAlertRead(ctx context.Context, id uuid.UUID) error
}

// Store aggregates every per-entity store plus lifecycle management.
type Store interface {
	JobStore
	TimesheetStore
	ReceiptStore
	WorkerStore
	AlertStore
	Ping(ctx context.Context) error
	Close() error
}

package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLite implements Store on a local file database for single-binary
// installs. UUIDs and timestamps are stored as TEXT, ai_flags as JSON.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// embedded schema.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc.org/sqlite serializes access internally; a single connection
	// avoids SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("sqlite store ready", "path", path)
	return &SQLite{db: db, logger: logger}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// TEXT column codecs.

func encTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func encTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := encTime(*t)
	return &v
}

func decTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := decTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encUUIDPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

func decUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func encFlags(flags []string) (string, error) {
	if flags == nil {
		return "[]", nil
	}
	b, err := json.Marshal(flags)
	return string(b), err
}

func decFlags(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var flags []string
	if err := json.Unmarshal([]byte(raw), &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// --- jobs ---

func (s *SQLite) CreateJob(ctx context.Context, job *entity.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now().UTC()
	job.CreatedAt, job.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, owner_id, job_name, client_name, address, start_date, end_date,
			status, project_value, amount_paid, notes, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, job.ID.String(), job.OwnerID.String(), job.JobName, job.ClientName, job.Address,
		encTime(job.StartDate), encTimePtr(job.EndDate), string(job.Status),
		job.ProjectValue, job.AmountPaid, job.Notes, encTime(job.CreatedAt), encTime(job.UpdatedAt))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobRow(row rowScanner) (*entity.Job, error) {
	var j entity.Job
	var id, ownerID, startDate, status, createdAt, updatedAt string
	var endDate *string
	err := row.Scan(&id, &ownerID, &j.JobName, &j.ClientName, &j.Address, &startDate, &endDate,
		&status, &j.ProjectValue, &j.AmountPaid, &j.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if j.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if j.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}
	if j.StartDate, err = decTime(startDate); err != nil {
		return nil, err
	}
	if j.EndDate, err = decTimePtr(endDate); err != nil {
		return nil, err
	}
	if j.CreatedAt, err = decTime(createdAt); err != nil {
		return nil, err
	}
	if j.UpdatedAt, err = decTime(updatedAt); err != nil {
		return nil, err
	}
	j.Status = constants.JobStatus(status)
	return &j, nil
}

func (s *SQLite) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, job_name, client_name, address, start_date, end_date,
			status, project_value, amount_paid, notes, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id.String())
	j, err := scanJobRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return j, err
}

func (s *SQLite) ListJobs(ctx context.Context, ownerID uuid.UUID) ([]*entity.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, job_name, client_name, address, start_date, end_date,
			status, project_value, amount_paid, notes, created_at, updated_at
		FROM jobs WHERE owner_id = ? ORDER BY start_date DESC
	`, ownerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*entity.Job
	for rows.Next() {
		j, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *SQLite) UpdateJob(ctx context.Context, job *entity.Job) error {
	job.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET job_name=?, client_name=?, address=?, start_date=?, end_date=?,
			status=?, project_value=?, amount_paid=?, notes=?, updated_at=?
		WHERE id=?
	`, job.JobName, job.ClientName, job.Address, encTime(job.StartDate), encTimePtr(job.EndDate),
		string(job.Status), job.ProjectValue, job.AmountPaid, job.Notes, encTime(job.UpdatedAt),
		job.ID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLite) DeleteJob(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- timesheets ---

func (s *SQLite) CreateTimesheet(ctx context.Context, ts *entity.Timesheet) error {
	if ts.ID == uuid.Nil {
		ts.ID = uuid.New()
	}
	now := time.Now().UTC()
	ts.CreatedAt, ts.UpdatedAt = now, now
	flags, err := encFlags(ts.AIFlags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO timesheets (id, owner_id, worker_id, job_id, clock_in, clock_out, hours,
			status, clock_in_location, clock_out_location, ai_flags, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, ts.ID.String(), ts.OwnerID.String(), ts.WorkerID.String(), ts.JobID.String(),
		encTime(ts.ClockIn), encTimePtr(ts.ClockOut), ts.Hours, string(ts.Status),
		ts.ClockInLocation, ts.ClockOutLocation, flags, encTime(ts.CreatedAt), encTime(ts.UpdatedAt))
	return err
}

func scanTimesheetRow(row rowScanner) (*entity.Timesheet, error) {
	var ts entity.Timesheet
	var id, ownerID, workerID, jobID, clockIn, status, flags, createdAt, updatedAt string
	var clockOut *string
	err := row.Scan(&id, &ownerID, &workerID, &jobID, &clockIn, &clockOut, &ts.Hours,
		&status, &ts.ClockInLocation, &ts.ClockOutLocation, &flags, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if ts.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if ts.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}
	if ts.WorkerID, err = uuid.Parse(workerID); err != nil {
		return nil, err
	}
	if ts.JobID, err = uuid.Parse(jobID); err != nil {
		return nil, err
	}
	if ts.ClockIn, err = decTime(clockIn); err != nil {
		return nil, err
	}
	if ts.ClockOut, err = decTimePtr(clockOut); err != nil {
		return nil, err
	}
	if ts.AIFlags, err = decFlags(flags); err != nil {
		return nil, err
	}
	if ts.CreatedAt, err = decTime(createdAt); err != nil {
		return nil, err
	}
	if ts.UpdatedAt, err = decTime(updatedAt); err != nil {
		return nil, err
	}
	ts.Status = constants.TimesheetStatus(status)
	return &ts, nil
}

func (s *SQLite) listTimesheets(ctx context.Context, where string, arg string) ([]*entity.Timesheet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, worker_id, job_id, clock_in, clock_out, hours,
			status, clock_in_location, clock_out_location, ai_flags, created_at, updated_at
		FROM timesheets WHERE `+where+` ORDER BY clock_in DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []*entity.Timesheet
	for rows.Next() {
		ts, err := scanTimesheetRow(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ts)
	}
	return sheets, rows.Err()
}

func (s *SQLite) ListTimesheetsByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Timesheet, error) {
	return s.listTimesheets(ctx, "job_id = ?", jobID.String())
}

func (s *SQLite) ListTimesheetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Timesheet, error) {
	return s.listTimesheets(ctx, "owner_id = ?", ownerID.String())
}

func (s *SQLite) UpdateTimesheet(ctx context.Context, ts *entity.Timesheet) error {
	ts.UpdatedAt = time.Now().UTC()
	flags, err := encFlags(ts.AIFlags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE timesheets SET clock_in=?, clock_out=?, hours=?, status=?,
			clock_in_location=?, clock_out_location=?, ai_flags=?, updated_at=?
		WHERE id=?
	`, encTime(ts.ClockIn), encTimePtr(ts.ClockOut), ts.Hours, string(ts.Status),
		ts.ClockInLocation, ts.ClockOutLocation, flags, encTime(ts.UpdatedAt), ts.ID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- receipts ---

func (s *SQLite) CreateReceipt(ctx context.Context, r *entity.Receipt) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	flags, err := encFlags(r.AIFlags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO receipts (id, owner_id, job_id, amount, vendor, category, purchase_date,
			notes, image_url, ai_processed, ai_confidence, ai_flags, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, r.ID.String(), r.OwnerID.String(), encUUIDPtr(r.JobID), r.Amount, r.Vendor, r.Category,
		encTime(r.Date), r.Notes, r.ImageURL, r.AIProcessed, r.AIConfidence, flags,
		encTime(r.CreatedAt), encTime(r.UpdatedAt))
	return err
}

func scanReceiptRow(row rowScanner) (*entity.Receipt, error) {
	var r entity.Receipt
	var id, ownerID, purchaseDate, flags, createdAt, updatedAt string
	var jobID *string
	err := row.Scan(&id, &ownerID, &jobID, &r.Amount, &r.Vendor, &r.Category, &purchaseDate,
		&r.Notes, &r.ImageURL, &r.AIProcessed, &r.AIConfidence, &flags, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if r.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}
	if r.JobID, err = decUUIDPtr(jobID); err != nil {
		return nil, err
	}
	if r.Date, err = decTime(purchaseDate); err != nil {
		return nil, err
	}
	if r.AIFlags, err = decFlags(flags); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = decTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = decTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLite) listReceipts(ctx context.Context, where string, arg string) ([]*entity.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, job_id, amount, vendor, category, purchase_date,
			notes, image_url, ai_processed, ai_confidence, ai_flags, created_at, updated_at
		FROM receipts WHERE `+where+` ORDER BY purchase_date DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*entity.Receipt
	for rows.Next() {
		r, err := scanReceiptRow(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

func (s *SQLite) ListReceiptsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Receipt, error) {
	return s.listReceipts(ctx, "owner_id = ?", ownerID.String())
}

func (s *SQLite) ListReceiptsByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Receipt, error) {
	return s.listReceipts(ctx, "job_id = ?", jobID.String())
}

func (s *SQLite) DeleteReceipt(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- workers ---

func (s *SQLite) CreateWorker(ctx context.Context, w *entity.Worker) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now().UTC()
	w.CreatedAt, w.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id, name, email, role, hourly_rate, active, owner_id, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)
	`, w.ID.String(), w.Name, w.Email, string(w.Role), w.HourlyRate, w.Active,
		encUUIDPtr(w.OwnerID), encTime(w.CreatedAt), encTime(w.UpdatedAt))
	return err
}

func scanWorkerRow(row rowScanner) (*entity.Worker, error) {
	var w entity.Worker
	var id, role, createdAt, updatedAt string
	var ownerID *string
	err := row.Scan(&id, &w.Name, &w.Email, &role, &w.HourlyRate, &w.Active, &ownerID,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if w.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if w.OwnerID, err = decUUIDPtr(ownerID); err != nil {
		return nil, err
	}
	if w.CreatedAt, err = decTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = decTime(updatedAt); err != nil {
		return nil, err
	}
	w.Role = constants.WorkerRole(role)
	return &w, nil
}

func (s *SQLite) GetWorker(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, hourly_rate, active, owner_id, created_at, updated_at
		FROM workers WHERE id = ?
	`, id.String())
	w, err := scanWorkerRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return w, err
}

func (s *SQLite) ListWorkers(ctx context.Context, ownerID uuid.UUID) ([]*entity.Worker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role, hourly_rate, active, owner_id, created_at, updated_at
		FROM workers WHERE owner_id = ? OR id = ? ORDER BY name
	`, ownerID.String(), ownerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []*entity.Worker
	for rows.Next() {
		w, err := scanWorkerRow(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (s *SQLite) UpdateWorker(ctx context.Context, w *entity.Worker) error {
	w.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE workers SET name=?, email=?, role=?, hourly_rate=?, active=?, updated_at=?
		WHERE id=?
	`, w.Name, w.Email, string(w.Role), w.HourlyRate, w.Active, encTime(w.UpdatedAt), w.ID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- alerts ---

func (s *SQLite) InsertAlerts(ctx context.Context, alerts []entity.Alert) error {
	for i := range alerts {
		a := &alerts[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO alerts (id, owner_id, job_id, type, severity, title, message, read, created_at)
			VALUES (?,?,?,?,?,?,?,?,?)
		`, a.ID.String(), a.OwnerID.String(), encUUIDPtr(a.JobID), string(a.Type),
			string(a.Severity), a.Title, a.Message, a.Read, encTime(a.CreatedAt))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) ListAlerts(ctx context.Context, ownerID uuid.UUID, unreadOnly bool) ([]*entity.Alert, error) {
	q := `SELECT id, owner_id, job_id, type, severity, title, message, read, created_at
		FROM alerts WHERE owner_id = ?`
	if unreadOnly {
		q += ` AND read = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, ownerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*entity.Alert
	for rows.Next() {
		var a entity.Alert
		var id, owner, typ, sev, createdAt string
		var jobID *string
		if err := rows.Scan(&id, &owner, &jobID, &typ, &sev, &a.Title, &a.Message,
			&a.Read, &createdAt); err != nil {
			return nil, err
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if a.OwnerID, err = uuid.Parse(owner); err != nil {
			return nil, err
		}
		if a.JobID, err = decUUIDPtr(jobID); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = decTime(createdAt); err != nil {
			return nil, err
		}
		a.Type = constants.AlertType(typ)
		a.Severity = constants.AlertSeverity(sev)
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

func (s *SQLite) MarkAlertRead(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET read = 1 WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

// Postgres implements Store on a pgx pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{pool: pool, logger: logger}
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- jobs ---

const jobColumns = `id, owner_id, job_name, client_name, address, start_date, end_date,
	status, project_value, amount_paid, notes, created_at, updated_at`

func (s *Postgres) CreateJob(ctx context.Context, job *entity.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now().UTC()
	job.CreatedAt, job.UpdatedAt = now, now
	_, err := s.pool.Exec(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, job.ID, job.OwnerID, job.JobName, job.ClientName, job.Address, job.StartDate, job.EndDate,
		string(job.Status), job.ProjectValue, job.AmountPaid, job.Notes, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		s.logger.Error("failed to create job", "job_id", job.ID, "error", err)
	}
	return err
}

func scanJob(row pgx.Row) (*entity.Job, error) {
	var j entity.Job
	var status string
	err := row.Scan(&j.ID, &j.OwnerID, &j.JobName, &j.ClientName, &j.Address, &j.StartDate,
		&j.EndDate, &status, &j.ProjectValue, &j.AmountPaid, &j.Notes, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = constants.JobStatus(status)
	return &j, nil
}

func (s *Postgres) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return j, err
}

func (s *Postgres) ListJobs(ctx context.Context, ownerID uuid.UUID) ([]*entity.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE owner_id = $1 ORDER BY start_date DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*entity.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *Postgres) UpdateJob(ctx context.Context, job *entity.Job) error {
	job.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET job_name=$2, client_name=$3, address=$4, start_date=$5, end_date=$6,
			status=$7, project_value=$8, amount_paid=$9, notes=$10, updated_at=$11
		WHERE id=$1
	`, job.ID, job.JobName, job.ClientName, job.Address, job.StartDate, job.EndDate,
		string(job.Status), job.ProjectValue, job.AmountPaid, job.Notes, job.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- timesheets ---

const timesheetColumns = `id, owner_id, worker_id, job_id, clock_in, clock_out, hours,
	status, clock_in_location, clock_out_location, ai_flags, created_at, updated_at`

func (s *Postgres) CreateTimesheet(ctx context.Context, ts *entity.Timesheet) error {
	if ts.ID == uuid.Nil {
		ts.ID = uuid.New()
	}
	now := time.Now().UTC()
	ts.CreatedAt, ts.UpdatedAt = now, now
	_, err := s.pool.Exec(ctx, `
		INSERT INTO timesheets (`+timesheetColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, ts.ID, ts.OwnerID, ts.WorkerID, ts.JobID, ts.ClockIn, ts.ClockOut, ts.Hours,
		string(ts.Status), ts.ClockInLocation, ts.ClockOutLocation, ts.AIFlags, ts.CreatedAt, ts.UpdatedAt)
	return err
}

func scanTimesheet(row pgx.Row) (*entity.Timesheet, error) {
	var ts entity.Timesheet
	var status string
	err := row.Scan(&ts.ID, &ts.OwnerID, &ts.WorkerID, &ts.JobID, &ts.ClockIn, &ts.ClockOut,
		&ts.Hours, &status, &ts.ClockInLocation, &ts.ClockOutLocation, &ts.AIFlags,
		&ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ts.Status = constants.TimesheetStatus(status)
	return &ts, nil
}

func (s *Postgres) listTimesheets(ctx context.Context, where string, arg any) ([]*entity.Timesheet, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+timesheetColumns+` FROM timesheets WHERE `+where+` ORDER BY clock_in DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []*entity.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ts)
	}
	return sheets, rows.Err()
}

func (s *Postgres) ListTimesheetsByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Timesheet, error) {
	return s.listTimesheets(ctx, "job_id = $1", jobID)
}

func (s *Postgres) ListTimesheetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Timesheet, error) {
	return s.listTimesheets(ctx, "owner_id = $1", ownerID)
}

func (s *Postgres) UpdateTimesheet(ctx context.Context, ts *entity.Timesheet) error {
	ts.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE timesheets SET clock_in=$2, clock_out=$3, hours=$4, status=$5,
			clock_in_location=$6, clock_out_location=$7, ai_flags=$8, updated_at=$9
		WHERE id=$1
	`, ts.ID, ts.ClockIn, ts.ClockOut, ts.Hours, string(ts.Status),
		ts.ClockInLocation, ts.ClockOutLocation, ts.AIFlags, ts.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- receipts ---

const receiptColumns = `id, owner_id, job_id, amount, vendor, category, purchase_date, notes,
	image_url, ai_processed, ai_confidence, ai_flags, created_at, updated_at`

func (s *Postgres) CreateReceipt(ctx context.Context, r *entity.Receipt) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	_, err := s.pool.Exec(ctx, `
		INSERT INTO receipts (`+receiptColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, r.ID, r.OwnerID, r.JobID, r.Amount, r.Vendor, r.Category, r.Date, r.Notes,
		r.ImageURL, r.AIProcessed, r.AIConfidence, r.AIFlags, r.CreatedAt, r.UpdatedAt)
	return err
}

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var r entity.Receipt
	err := row.Scan(&r.ID, &r.OwnerID, &r.JobID, &r.Amount, &r.Vendor, &r.Category, &r.Date,
		&r.Notes, &r.ImageURL, &r.AIProcessed, &r.AIConfidence, &r.AIFlags, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Postgres) listReceipts(ctx context.Context, where string, arg any) ([]*entity.Receipt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+receiptColumns+` FROM receipts WHERE `+where+` ORDER BY purchase_date DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*entity.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

func (s *Postgres) ListReceiptsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Receipt, error) {
	return s.listReceipts(ctx, "owner_id = $1", ownerID)
}

func (s *Postgres) ListReceiptsByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Receipt, error) {
	return s.listReceipts(ctx, "job_id = $1", jobID)
}

func (s *Postgres) DeleteReceipt(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- workers ---

const workerColumns = `id, name, email, role, hourly_rate, active, owner_id, created_at, updated_at`

func (s *Postgres) CreateWorker(ctx context.Context, w *entity.Worker) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now().UTC()
	w.CreatedAt, w.UpdatedAt = now, now
	_, err := s.pool.Exec(ctx, `
		INSERT INTO workers (`+workerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, w.ID, w.Name, w.Email, string(w.Role), w.HourlyRate, w.Active, w.OwnerID, w.CreatedAt, w.UpdatedAt)
	return err
}

func scanWorker(row pgx.Row) (*entity.Worker, error) {
	var w entity.Worker
	var role string
	err := row.Scan(&w.ID, &w.Name, &w.Email, &role, &w.HourlyRate, &w.Active, &w.OwnerID,
		&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Role = constants.WorkerRole(role)
	return &w, nil
}

func (s *Postgres) GetWorker(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+workerColumns+` FROM workers WHERE id = $1`, id)
	w, err := scanWorker(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return w, err
}

func (s *Postgres) ListWorkers(ctx context.Context, ownerID uuid.UUID) ([]*entity.Worker, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+workerColumns+` FROM workers WHERE owner_id = $1 OR id = $1 ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []*entity.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (s *Postgres) UpdateWorker(ctx context.Context, w *entity.Worker) error {
	w.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE workers SET name=$2, email=$3, role=$4, hourly_rate=$5, active=$6, updated_at=$7
		WHERE id=$1
	`, w.ID, w.Name, w.Email, string(w.Role), w.HourlyRate, w.Active, w.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- alerts ---

func (s *Postgres) InsertAlerts(ctx context.Context, alerts []entity.Alert) error {
	for i := range alerts {
		a := &alerts[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		_, err := s.pool.Exec(ctx, `
			INSERT INTO alerts (id, owner_id, job_id, type, severity, title, message, read, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, a.ID, a.OwnerID, a.JobID, string(a.Type), string(a.Severity), a.Title, a.Message, a.Read, a.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Postgres) ListAlerts(ctx context.Context, ownerID uuid.UUID, unreadOnly bool) ([]*entity.Alert, error) {
	q := `SELECT id, owner_id, job_id, type, severity, title, message, read, created_at
		FROM alerts WHERE owner_id = $1`
	if unreadOnly {
		q += ` AND read = false`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*entity.Alert
	for rows.Next() {
		var a entity.Alert
		var typ, sev string
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.JobID, &typ, &sev, &a.Title, &a.Message,
			&a.Read, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = constants.AlertType(typ)
		a.Severity = constants.AlertSeverity(sev)
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

func (s *Postgres) MarkAlertRead(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE alerts SET read = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

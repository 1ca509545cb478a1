// Package export produces XLSX financial reports for a job: a summary sheet
// built from the computed snapshot plus receipt and timesheet detail sheets.
// Receipts are listed for the record only; none of their amounts feed the
// summary numbers.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/jobsite-tracker/internal/classify"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
	"github.com/joseph-ayodele/jobsite-tracker/internal/finance"
	"github.com/joseph-ayodele/jobsite-tracker/internal/repository"
)

// Service is a tiny façade over the store that produces XLSX bytes.
type Service struct {
	store  repository.Store
	logger *slog.Logger
}

func NewService(store repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportJobXLSX returns an XLSX workbook for one job and an optional receipt
// date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all receipts for the job.
func (s *Service) ExportJobXLSX(ctx context.Context, jobID uuid.UUID, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	timesheets, err := s.store.ListTimesheetsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("query timesheets: %w", err)
	}
	workers, err := s.store.ListWorkers(ctx, job.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	receipts, err := s.store.ListReceiptsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}
	receipts = filterWindow(receipts, from, to)

	laborCost := finance.LaborCost(jobID, timesheets, workers)
	snap := finance.Compute(job, laborCost)

	f := excelize.NewFile()
	if err := writeSummarySheet(f, job, snap, len(receipts)); err != nil {
		return nil, err
	}
	if err := writeReceiptsSheet(f, receipts); err != nil {
		return nil, err
	}
	if err := writeTimesheetsSheet(f, timesheets, workers); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", jobID.String(),
		"receipts", len(receipts),
		"timesheets", len(timesheets),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// filterWindow keeps receipts whose date falls in the inclusive date-only
// window. A from without a to runs through today.
func filterWindow(receipts []*entity.Receipt, from, to *time.Time) []*entity.Receipt {
	if from == nil && to == nil {
		return receipts
	}
	dateOnly := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	var lo, hi time.Time
	if from != nil {
		lo = dateOnly(*from)
	}
	if to != nil {
		hi = dateOnly(*to)
	} else {
		hi = dateOnly(time.Now().UTC())
	}

	var out []*entity.Receipt
	for _, r := range receipts {
		d := dateOnly(r.Date)
		if from != nil && d.Before(lo) {
			continue
		}
		if d.After(hi) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func ensureSheet(f *excelize.File, name string) error {
	if index, _ := f.GetSheetIndex(name); index == -1 {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func writeSummarySheet(f *excelize.File, job *entity.Job, snap finance.Snapshot, receiptCount int) error {
	const sheet = "Summary"
	// excelize creates "Sheet1" by default; rename it so Summary comes first.
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	index, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(index)

	rows := [][]any{
		{"Job", job.JobName},
		{"Client", job.ClientName},
		{"Address", job.Address},
		{"Status", string(job.Status)},
		{"Start Date", job.StartDate.Format("2006-01-02")},
		{},
		{"Project Value", snap.ProjectValue},
		{"Amount Paid", snap.AmountPaid},
		{"Remaining Balance", snap.RemainingBalance},
		{"Labor Cost", snap.LaborCost},
		{"Profit", snap.Profit},
		{"Labor Ratio", snap.LaborRatio},
		{"Profit Margin", snap.ProfitMargin},
		{},
		{"Receipts on file", receiptCount},
	}
	for i, r := range rows {
		writeRow(f, sheet, i+1, r)
	}
	if len(snap.Anomalies) > 0 {
		writeRow(f, sheet, len(rows)+1, []any{"Data anomalies", fmt.Sprintf("%v", snap.Anomalies)})
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 40)
	return nil
}

func writeReceiptsSheet(f *excelize.File, receipts []*entity.Receipt) error {
	const sheet = "Receipts"
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	writeRow(f, sheet, 1, []any{"Date", "Vendor", "Category", "Amount", "Refund", "Notes"})
	row := 2
	for _, r := range receipts {
		category := ""
		if r.Category != nil {
			category = *r.Category
		}
		refund := ""
		if classify.IsRefund(r) {
			refund = "yes"
		}
		writeRow(f, sheet, row, []any{
			r.Date.Format("2006-01-02"),
			r.Vendor,
			category,
			r.Amount,
			refund,
			truncate(r.Notes, 140),
		})
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 18)
	_ = f.SetColWidth(sheet, "D", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 48)
	return nil
}

func writeTimesheetsSheet(f *excelize.File, timesheets []*entity.Timesheet, workers []*entity.Worker) error {
	const sheet = "Timesheets"
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	names := make(map[uuid.UUID]string, len(workers))
	rates := make(map[uuid.UUID]float64, len(workers))
	for _, w := range workers {
		names[w.ID] = w.Name
		if w.HourlyRate != nil {
			rates[w.ID] = *w.HourlyRate
		}
	}

	writeRow(f, sheet, 1, []any{"Worker", "Clock In", "Clock Out", "Hours", "Rate", "Cost"})
	row := 2
	for _, ts := range timesheets {
		clockOut := ""
		if ts.ClockOut != nil {
			clockOut = ts.ClockOut.Format("2006-01-02 15:04")
		}
		hours, known := ts.BillableHours()
		var hoursCell, costCell any
		if known {
			hoursCell = hours
			costCell = hours * rates[ts.WorkerID]
		} else {
			hoursCell, costCell = "", ""
		}
		writeRow(f, sheet, row, []any{
			names[ts.WorkerID],
			ts.ClockIn.Format("2006-01-02 15:04"),
			clockOut,
			hoursCell,
			rates[ts.WorkerID],
			costCell,
		})
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "C", 18)
	_ = f.SetColWidth(sheet, "D", "F", 12)
	return nil
}

// truncate caps s at n runes, ending with an ellipsis. Rune-based so
// multi-byte text is never cut mid-character.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}

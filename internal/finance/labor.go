// Package finance derives labor cost and profit figures for a job. All
// functions are pure projections over already-fetched data; receipts are
// deliberately absent from every signature in this package.
package finance

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

// LaborCost sums hours × worker hourly rate over the job's timesheets.
//
// Hours source policy: the timesheet's manual override wins when present,
// otherwise the clock-derived value (entity.Timesheet.BillableHours). A
// timesheet with no known hours, or whose worker is missing or has no rate on
// record, contributes 0. Absence means "not yet known", not "free labor",
// and is never an error here.
func LaborCost(jobID uuid.UUID, timesheets []*entity.Timesheet, workers []*entity.Worker) float64 {
	rates := make(map[uuid.UUID]float64, len(workers))
	for _, w := range workers {
		if w.HourlyRate != nil {
			rates[w.ID] = *w.HourlyRate
		}
	}

	var total float64
	for _, ts := range timesheets {
		if ts.JobID != jobID {
			continue
		}
		hours, ok := ts.BillableHours()
		if !ok {
			continue
		}
		rate, ok := rates[ts.WorkerID]
		if !ok {
			continue
		}
		total += hours * rate
	}
	return total
}

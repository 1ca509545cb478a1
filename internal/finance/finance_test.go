package finance

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

func f64(v float64) *float64 { return &v }

func job(projectValue, amountPaid float64) *entity.Job {
	return &entity.Job{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Status:       constants.JobStatusActive,
		ProjectValue: projectValue,
		AmountPaid:   amountPaid,
	}
}

func TestProfitFormula(t *testing.T) {
	j := job(10000, 5000)

	tests := []struct {
		laborCost float64
		profit    float64
	}{
		{0, 10000},
		{8000, 2000},
		{15000, -5000},
	}
	for _, tt := range tests {
		s := Compute(j, tt.laborCost)
		assert.Equal(t, tt.profit, s.Profit)
	}
}

func TestReceiptsNeverAffectProfit(t *testing.T) {
	// Compute takes no receipts at all; this pins the contract that the same
	// job yields the same profit regardless of how many receipts exist.
	j := job(10000, 5000)
	s := Compute(j, 0)
	assert.Equal(t, 10000.0, s.Profit)
	assert.Equal(t, 5000.0, s.RemainingBalance)
}

func TestRatiosAndZeroGuard(t *testing.T) {
	t.Run("ratios", func(t *testing.T) {
		s := Compute(job(10000, 2500), 8500)
		assert.InDelta(t, 0.85, s.LaborRatio, 1e-9)
		assert.InDelta(t, 0.15, s.ProfitMargin, 1e-9)
		assert.Equal(t, 7500.0, s.RemainingBalance)
	})

	t.Run("zero project value guards division", func(t *testing.T) {
		s := Compute(job(0, 0), 500)
		assert.Equal(t, 0.0, s.LaborRatio)
		assert.Equal(t, 0.0, s.ProfitMargin)
		assert.Equal(t, -500.0, s.Profit)
	})
}

func TestNoClampingOnLosses(t *testing.T) {
	s := Compute(job(1000, 2000), 3000)
	assert.Equal(t, -2000.0, s.Profit)
	assert.Equal(t, -1000.0, s.RemainingBalance)
	assert.Equal(t, 3.0, s.LaborRatio)
	assert.Equal(t, -2.0, s.ProfitMargin)
}

func TestNonFiniteInputsPropagateAndFlag(t *testing.T) {
	t.Run("NaN labor cost", func(t *testing.T) {
		s := Compute(job(10000, 0), math.NaN())
		assert.True(t, math.IsNaN(s.Profit))
		assert.True(t, math.IsNaN(s.LaborRatio))
		assert.Len(t, s.Anomalies, 1)
		assert.Contains(t, s.Anomalies[0], "labor_cost")
	})

	t.Run("infinite project value", func(t *testing.T) {
		s := Compute(job(math.Inf(1), 100), 500)
		assert.True(t, math.IsInf(s.Profit, 1))
		assert.Len(t, s.Anomalies, 1)
		assert.Contains(t, s.Anomalies[0], "project_value")
	})

	t.Run("finite inputs carry no anomalies", func(t *testing.T) {
		s := Compute(job(10000, 5000), 2000)
		assert.Empty(t, s.Anomalies)
	})
}

func TestLaborCost(t *testing.T) {
	jobID := uuid.New()
	otherJob := uuid.New()
	alice := &entity.Worker{ID: uuid.New(), Name: "Alice", HourlyRate: f64(50)}
	bob := &entity.Worker{ID: uuid.New(), Name: "Bob", HourlyRate: f64(40)}
	noRate := &entity.Worker{ID: uuid.New(), Name: "Cal"}
	workers := []*entity.Worker{alice, bob, noRate}

	clockIn := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(8 * time.Hour)

	ts := func(worker *entity.Worker, jid uuid.UUID, manual *float64, out *time.Time) *entity.Timesheet {
		return &entity.Timesheet{
			ID:       uuid.New(),
			WorkerID: worker.ID,
			JobID:    jid,
			ClockIn:  clockIn,
			ClockOut: out,
			Hours:    manual,
			Status:   constants.TimesheetCompleted,
		}
	}

	t.Run("sums hours times rate for the job only", func(t *testing.T) {
		sheets := []*entity.Timesheet{
			ts(alice, jobID, nil, &clockOut),   // 8h * 50 = 400
			ts(bob, jobID, nil, &clockOut),     // 8h * 40 = 320
			ts(alice, otherJob, nil, &clockOut), // other job, ignored
		}
		assert.Equal(t, 720.0, LaborCost(jobID, sheets, workers))
	})

	t.Run("manual override wins over clock-derived hours", func(t *testing.T) {
		sheets := []*entity.Timesheet{
			ts(alice, jobID, f64(10), &clockOut), // override 10h, clock says 8h
		}
		assert.Equal(t, 500.0, LaborCost(jobID, sheets, workers))
	})

	t.Run("manual override applies even while clocked in", func(t *testing.T) {
		sheets := []*entity.Timesheet{
			ts(alice, jobID, f64(6), nil),
		}
		assert.Equal(t, 300.0, LaborCost(jobID, sheets, workers))
	})

	t.Run("missing hours contributes zero", func(t *testing.T) {
		sheets := []*entity.Timesheet{
			ts(alice, jobID, nil, nil), // still clocked in, no override
		}
		assert.Equal(t, 0.0, LaborCost(jobID, sheets, workers))
	})

	t.Run("worker without rate contributes zero", func(t *testing.T) {
		sheets := []*entity.Timesheet{
			ts(noRate, jobID, nil, &clockOut),
			ts(alice, jobID, nil, &clockOut),
		}
		assert.Equal(t, 400.0, LaborCost(jobID, sheets, workers))
	})

	t.Run("unknown worker contributes zero, not an error", func(t *testing.T) {
		ghost := &entity.Worker{ID: uuid.New(), HourlyRate: f64(100)}
		sheets := []*entity.Timesheet{
			ts(ghost, jobID, nil, &clockOut),
		}
		assert.Equal(t, 0.0, LaborCost(jobID, sheets, workers))
	})

	t.Run("empty inputs yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, LaborCost(jobID, nil, nil))
	})
}

func TestHoursWorkedDerivation(t *testing.T) {
	clockIn := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("derived from clock pair", func(t *testing.T) {
		out := clockIn.Add(7*time.Hour + 30*time.Minute)
		ts := &entity.Timesheet{ClockIn: clockIn, ClockOut: &out}
		assert.InDelta(t, 7.5, ts.HoursWorked(), 1e-9)
	})

	t.Run("zero while clocked in", func(t *testing.T) {
		ts := &entity.Timesheet{ClockIn: clockIn}
		assert.Equal(t, 0.0, ts.HoursWorked())
	})

	t.Run("manual override does not overwrite the derived value", func(t *testing.T) {
		out := clockIn.Add(8 * time.Hour)
		ts := &entity.Timesheet{ClockIn: clockIn, ClockOut: &out, Hours: f64(10)}
		assert.Equal(t, 8.0, ts.HoursWorked())
		billable, ok := ts.BillableHours()
		assert.True(t, ok)
		assert.Equal(t, 10.0, billable)
	})
}

package finance

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

// Snapshot is the derived financial view of one job. Values are raw
// arithmetic projections: no clamping, rounding or sign-correction, so losses
// and anomalies stay visible for the alert policy to react to.
type Snapshot struct {
	JobID            uuid.UUID `json:"job_id"`
	ProjectValue     float64   `json:"project_value"`
	AmountPaid       float64   `json:"amount_paid"`
	LaborCost        float64   `json:"labor_cost"`
	RemainingBalance float64   `json:"remaining_balance"`
	Profit           float64   `json:"profit"`
	LaborRatio       float64   `json:"labor_ratio"`
	ProfitMargin     float64   `json:"profit_margin"`

	// Anomalies names each non-finite input instead of hiding it. The raw
	// values still propagate through the derived figures.
	Anomalies []string `json:"anomalies,omitempty"`
}

// Compute projects a job plus its labor cost into a Snapshot.
// Receipts never enter this computation: profit is projectValue − laborCost,
// and remainingBalance is projectValue − amountPaid, nothing else.
func Compute(job *entity.Job, laborCost float64) Snapshot {
	s := Snapshot{
		JobID:        job.ID,
		ProjectValue: job.ProjectValue,
		AmountPaid:   job.AmountPaid,
		LaborCost:    laborCost,
	}

	s.RemainingBalance = job.ProjectValue - job.AmountPaid
	s.Profit = job.ProjectValue - laborCost

	// Zero-guard the ratios; everything else propagates as-is, including
	// NaN and ±Inf operands.
	if job.ProjectValue != 0 {
		s.LaborRatio = laborCost / job.ProjectValue
		s.ProfitMargin = s.Profit / job.ProjectValue
	}

	inputs := []struct {
		name string
		v    float64
	}{
		{"project_value", job.ProjectValue},
		{"amount_paid", job.AmountPaid},
		{"labor_cost", laborCost},
	}
	for _, in := range inputs {
		if math.IsNaN(in.v) || math.IsInf(in.v, 0) {
			s.Anomalies = append(s.Anomalies, fmt.Sprintf("%s is non-finite (%v)", in.name, in.v))
		}
	}
	return s
}

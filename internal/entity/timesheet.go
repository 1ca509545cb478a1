package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
)

// Timesheet represents one clock-in/out record for a worker on a job.
//
// Hours is a manual override entered by the owner. It is tracked separately
// from the clock-derived value and the two may disagree; both are always
// exposed and neither overwrites the other.
type Timesheet struct {
	ID               uuid.UUID                 `json:"id"`
	OwnerID          uuid.UUID                 `json:"owner_id"`
	WorkerID         uuid.UUID                 `json:"worker_id"`
	JobID            uuid.UUID                 `json:"job_id"`
	ClockIn          time.Time                 `json:"clock_in"`
	ClockOut         *time.Time                `json:"clock_out,omitempty"`
	Hours            *float64                  `json:"hours,omitempty"`
	Status           constants.TimesheetStatus `json:"status"`
	ClockInLocation  *string                   `json:"clock_in_location,omitempty"`
	ClockOutLocation *string                   `json:"clock_out_location,omitempty"`
	AIFlags          []string                  `json:"ai_flags,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// HoursWorked derives hours from the clock pair, or 0 when still clocked in.
func (t *Timesheet) HoursWorked() float64 {
	if t.ClockOut == nil {
		return 0
	}
	return t.ClockOut.Sub(t.ClockIn).Hours()
}

// BillableHours returns the hours value labor cost should bill against.
// Policy: a manual override always wins; otherwise the clock-derived value is
// used when a clock-out exists. The bool reports whether any value is known.
func (t *Timesheet) BillableHours() (float64, bool) {
	if t.Hours != nil {
		return *t.Hours, true
	}
	if t.ClockOut == nil {
		return 0, false
	}
	return t.HoursWorked(), true
}

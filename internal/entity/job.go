package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
)

// Job represents a construction job for data transfer between layers.
// ProjectValue is the authoritative contract value; AmountPaid tracks client
// payments received. Neither is validated here; the finance layer surfaces
// anomalies instead of rejecting them.
type Job struct {
	ID           uuid.UUID           `json:"id"`
	OwnerID      uuid.UUID           `json:"owner_id"`
	JobName      string              `json:"job_name"`
	ClientName   string              `json:"client_name"`
	Address      string              `json:"address"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      *time.Time          `json:"end_date,omitempty"`
	Status       constants.JobStatus `json:"status"`
	ProjectValue float64             `json:"project_value"`
	AmountPaid   float64             `json:"amount_paid"`
	Notes        string              `json:"notes"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

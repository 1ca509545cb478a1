package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
)

// Worker represents an account: either an owner or a crew member belonging to
// an owner. HourlyRate is optional; a worker without a rate contributes zero
// to labor cost until one is recorded.
type Worker struct {
	ID         uuid.UUID            `json:"id"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	Role       constants.WorkerRole `json:"role"`
	HourlyRate *float64             `json:"hourly_rate,omitempty"`
	Active     bool                 `json:"active"`
	OwnerID    *uuid.UUID           `json:"owner_id,omitempty"` // nil for owners
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

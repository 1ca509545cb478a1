package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobsite-tracker/constants"
)

// Alert is an advisory event emitted by the alert policy. Alerts are
// append-only; the notification layer owns read/dismiss.
type Alert struct {
	ID        uuid.UUID               `json:"id"`
	OwnerID   uuid.UUID               `json:"owner_id"`
	JobID     *uuid.UUID              `json:"job_id,omitempty"`
	Type      constants.AlertType     `json:"type"`
	Severity  constants.AlertSeverity `json:"severity"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

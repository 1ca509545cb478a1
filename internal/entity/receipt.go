package entity

import (
	"time"

	"github.com/google/uuid"
)

// Receipt represents a vendor expense document for data transfer between
// layers. Receipts are display-only with respect to job finances: no amount
// here ever feeds into profit.
type Receipt struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	JobID        *uuid.UUID `json:"job_id,omitempty"` // nil means general/unassigned expense
	Amount       float64    `json:"amount"`
	Vendor       string     `json:"vendor"`
	Category     *string    `json:"category,omitempty"`
	Date         time.Time  `json:"date"`
	Notes        string     `json:"notes"`
	ImageURL     *string    `json:"image_url,omitempty"`
	AIProcessed  bool       `json:"ai_processed"`
	AIConfidence *float64   `json:"ai_confidence,omitempty"`
	AIFlags      []string   `json:"ai_flags,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

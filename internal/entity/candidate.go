package entity

import "time"

// ReceiptCandidate is the structured record the field parser derives from raw
// OCR text, before the user confirms it into a Receipt.
//
// DateFound distinguishes a genuinely extracted date from the processing-time
// default; the confidence scorer and any reviewer UI rely on it.
type ReceiptCandidate struct {
	Amount     float64   `json:"amount"`
	Vendor     string    `json:"vendor"`
	Date       time.Time `json:"date"`
	DateFound  bool      `json:"date_found"`
	Confidence float64   `json:"confidence"`
	RawText    string    `json:"raw_text,omitempty"`
}

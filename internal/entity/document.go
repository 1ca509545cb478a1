package entity

// DocumentClassification is the normalized result of the external
// language-model document classifier. Missing or null provider fields are
// substituted with the defaults noted per field.
type DocumentClassification struct {
	DocumentType  string            `json:"documentType"`  // default "other"
	Title         string            `json:"title"`         // default "Untitled Document"
	ExtractedData map[string]string `json:"extractedData"` // default empty map
	Summary       string            `json:"summary"`
	Confidence    float64           `json:"confidence"` // default 0.5
	Flags         []string          `json:"flags"`      // default empty
}

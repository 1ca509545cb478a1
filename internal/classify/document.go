package classify

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

// Defaults substituted for missing or null provider fields.
const (
	defaultDocumentType = "other"
	defaultTitle        = "Untitled Document"
	defaultConfidence   = 0.5
)

// BuildDocumentJSONSchema returns the JSON-Schema (draft 2020-12 subset) the
// classification payload is expected to follow. Every field is optional,
// since absence degrades to defaults rather than failing, so the schema only
// pins down types.
func BuildDocumentJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"documentType": map[string]any{"type": "string"},
			"title":        map[string]any{"type": "string"},
			"extractedData": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"summary":    map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number"},
			"flags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
}

// ValidatePayload validates raw classification JSON against the schema.
// A failure here means the payload deviates in type, not that it is unusable;
// callers log it and proceed with the tolerant decode.
func ValidatePayload(raw []byte) error {
	b, err := json.Marshal(BuildDocumentJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// DecodeClassification decodes a provider classification payload, tolerating
// missing, null or mistyped fields by substituting defaults. Only JSON that
// cannot be decoded at all is an error (common.ErrBadPayload).
func DecodeClassification(raw []byte) (entity.DocumentClassification, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return entity.DocumentClassification{}, common.NewAppError(
			"PARSE_ERROR", "classification payload is not valid JSON", common.ErrBadPayload)
	}

	doc := entity.DocumentClassification{
		DocumentType:  defaultDocumentType,
		Title:         defaultTitle,
		ExtractedData: map[string]string{},
		Confidence:    defaultConfidence,
		Flags:         []string{},
	}

	if v, ok := m["documentType"].(string); ok && v != "" {
		doc.DocumentType = v
	}
	if v, ok := m["title"].(string); ok && v != "" {
		doc.Title = v
	}
	if v, ok := m["summary"].(string); ok {
		doc.Summary = v
	}
	if v, ok := m["confidence"].(float64); ok {
		doc.Confidence = v
	}
	if v, ok := m["extractedData"].(map[string]any); ok {
		for k, raw := range v {
			if s, ok := raw.(string); ok {
				doc.ExtractedData[k] = s
			}
		}
	}
	if v, ok := m["flags"].([]any); ok {
		for _, raw := range v {
			if s, ok := raw.(string); ok {
				doc.Flags = append(doc.Flags, s)
			}
		}
	}
	return doc, nil
}

package ocr

import (
	"context"
)

// TextExtractor turns a receipt/document image into raw text. Implementations
// wrap an external vision model; everything downstream treats the output as an
// opaque UTF-8 string.
type TextExtractor interface {
	// ExtractText transcribes all legible text from the image. An empty
	// transcription is returned as "", not an error; the caller decides how
	// to surface it.
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close releases provider resources.
	Close() error
}

// DocumentClassifier asks an external language model to classify a document
// from its text. The raw JSON payload is returned untouched; decoding and
// defaulting live in the classify package.
type DocumentClassifier interface {
	ClassifyDocument(ctx context.Context, text string) ([]byte, error)
}

// transcribePrompt is the shared prompt used by all providers for OCR.
const transcribePrompt = `You are transcribing a photographed receipt or document.

Read every piece of text in the image, top to bottom, and return it as plain
text. Preserve line breaks as they appear on the paper. Include line items,
prices, totals, dates, addresses and phone numbers exactly as printed.

Return ONLY the transcribed text. No commentary, no markdown, no code fences.
If the image contains no legible text, return an empty response.`

// classifyPrompt is the shared prompt used by all providers for document
// classification. The JSON shape matches entity.DocumentClassification.
const classifyPrompt = `You are classifying a construction-business document from its text.

Return ONLY valid JSON in this exact format:
{
  "documentType": "receipt|invoice|contract|permit|warranty|other",
  "title": "short human-readable title",
  "extractedData": { "key": "value" },
  "summary": "one or two sentences",
  "confidence": 0.0,
  "flags": []
}

Do not include any text before or after the JSON. Do not use markdown code blocks.

Document text:
`

// Package parse turns raw OCR text into a structured receipt candidate.
// Everything here is deterministic string work: same text in, same candidate
// out. Network calls and persistence live elsewhere.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

// Confidence scoring: base says "OCR produced readable text", each extracted
// field adds a fixed bump, and the clamp reflects that heuristic parsing is
// never fully certain.
const (
	baseConfidence  = 0.50
	fieldConfidence = 0.15
	maxConfidence   = 0.95

	// vendorLineMax is the longest line we will echo back verbatim as a
	// vendor name; beyond it we return the matched keyword instead.
	vendorLineMax = 50

	// vendorFallbackMax bounds the fallback vendor taken from the first
	// usable line.
	vendorFallbackMax = 40

	// vendorScanLines is how many leading non-empty lines are inspected for
	// a known vendor.
	vendorScanLines = 5
)

// reAmount matches currency amounts: digits with optional thousands
// separators and exactly two decimal places.
var reAmount = regexp.MustCompile(`\d{1,3}(?:,\d{3})+\.\d{2}|\d+\.\d{2}`)

// totalKeywords is the "total"-family, checked per line. Order matters only
// for readability; any hit qualifies the line.
var totalKeywords = []string{"grand total", "amount due", "balance due", "total", "balance"}

// knownVendors is the fixed keyword list for vendor recognition, matched
// case-insensitively as substrings of the leading lines.
var knownVendors = []string{
	"home depot",
	"lowes",
	"lowe's",
	"ace hardware",
	"menards",
	"84 lumber",
	"ferguson",
	"sherwin williams",
	"sherwin-williams",
	"harbor freight",
	"fastenal",
	"grainger",
	"sunbelt rentals",
	"united rentals",
	"shell",
	"chevron",
	"exxon",
	"speedway",
	"pilot",
	"mcdonald",
	"subway",
	"chipotle",
	"starbucks",
	"staples",
	"office depot",
	"best buy",
	"walmart",
	"costco",
	"tractor supply",
}

// reLineNumeric matches lines that are purely numeric/currency noise and so
// useless as a vendor fallback.
var reLineNumeric = regexp.MustCompile(`^[\s\d$.,#*:/-]+$`)

// datePatterns pairs a detection regex with the layouts to try on the match.
// Checked in order; the first match that also parses wins.
var datePatterns = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), []string{"1/2/2006"}},
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2}\b`), []string{"1/2/06"}},
	{regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`), []string{"2006-1-2"}},
	{regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.? \d{1,2},? \d{4}\b`),
		[]string{"January 2, 2006", "January 2 2006", "Jan 2, 2006", "Jan 2 2006", "Jan. 2, 2006"}},
}

// Parser extracts receipt fields from OCR text. Now is injectable so tests
// can pin the "date not found" default.
type Parser struct {
	Now func() time.Time
}

func NewParser() *Parser {
	return &Parser{Now: time.Now}
}

// Parse derives a receipt candidate from raw OCR text.
// Empty (or whitespace-only) text returns common.ErrNoText so callers can
// ask for a re-capture instead of storing a zero-confidence record.
func (p *Parser) Parse(rawText string) (entity.ReceiptCandidate, error) {
	if strings.TrimSpace(rawText) == "" {
		return entity.ReceiptCandidate{}, common.ErrNoText
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	cand := entity.ReceiptCandidate{RawText: rawText}
	cand.Amount = extractAmount(rawText)
	cand.Vendor = extractVendor(rawText)
	cand.Date, cand.DateFound = extractDate(rawText, now)

	conf := baseConfidence
	if cand.Amount > 0 {
		conf += fieldConfidence
	}
	if cand.Vendor != "Unknown" {
		conf += fieldConfidence
	}
	if cand.DateFound {
		conf += fieldConfidence
	}
	if conf > maxConfidence {
		conf = maxConfidence
	}
	cand.Confidence = conf
	return cand, nil
}

// extractAmount prefers an amount on a "total"-family line; receipts list
// line items before the total, so the fallback takes the maximum amount found
// anywhere in the text.
func extractAmount(text string) float64 {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "subtotal") || strings.Contains(lower, "sub-total") {
			continue
		}
		for _, kw := range totalKeywords {
			idx := strings.Index(lower, kw)
			if idx < 0 {
				continue
			}
			if m := reAmount.FindString(line[idx+len(kw):]); m != "" {
				return parseAmount(m)
			}
		}
	}

	var maxAmount float64
	for _, m := range reAmount.FindAllString(text, -1) {
		if v := parseAmount(m); v > maxAmount {
			maxAmount = v
		}
	}
	return maxAmount
}

func parseAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// extractVendor checks the leading lines against the known-vendor list, then
// falls back to the first line that is not pure numeric/currency noise.
func extractVendor(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	scan := lines
	if len(scan) > vendorScanLines {
		scan = scan[:vendorScanLines]
	}
	for _, line := range scan {
		lower := strings.ToLower(line)
		for _, kw := range knownVendors {
			if strings.Contains(lower, kw) {
				if len(line) > vendorLineMax {
					return capitalizeWords(kw)
				}
				return line
			}
		}
	}

	for _, line := range lines {
		if reLineNumeric.MatchString(line) {
			continue
		}
		// Truncate on a rune boundary; OCR text is not always ASCII.
		if r := []rune(line); len(r) > vendorFallbackMax {
			return string(r[:vendorFallbackMax])
		}
		return line
	}
	return "Unknown"
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// extractDate tries the regional patterns in order. When nothing parses the
// processing time is returned with found=false, which the confidence scorer
// treats as "date not found."
func extractDate(text string, now func() time.Time) (time.Time, bool) {
	for _, dp := range datePatterns {
		m := dp.re.FindString(text)
		if m == "" {
			continue
		}
		for _, layout := range dp.layouts {
			if t, err := time.Parse(layout, m); err == nil {
				return t, true
			}
		}
	}
	return now(), false
}

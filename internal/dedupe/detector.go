// Package dedupe ranks stored receipts by how likely they represent the same
// purchase as a candidate receipt.
package dedupe

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

// Component weights. They sum to 1.0 so a perfect match scores exactly 1.0.
const (
	vendorWeight   = 0.4
	amountWeight   = 0.3
	dateWeight     = 0.2
	categoryWeight = 0.1

	// Threshold is the minimum summed similarity for a pair to be reported
	// as a duplicate.
	Threshold = 0.7
)

// Match pairs an existing receipt with its similarity to the candidate.
type Match struct {
	Receipt    *entity.Receipt `json:"receipt"`
	Similarity float64         `json:"similarity"`
}

// FindDuplicates scores the candidate against every existing receipt and
// returns the pairs at or above Threshold, sorted by similarity descending.
// The candidate's own identity is skipped if present in existing.
func FindDuplicates(candidate *entity.Receipt, existing []*entity.Receipt) []Match {
	var matches []Match
	for _, r := range existing {
		if r.ID == candidate.ID {
			continue
		}
		score := Similarity(candidate, r)
		if score >= Threshold {
			matches = append(matches, Match{Receipt: r, Similarity: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// Similarity computes the weighted [0,1] similarity between two receipts.
// Band breakpoints are exact contracts: an amount difference of exactly 1.00
// falls into the 0.1 band, not the 0.2 band.
func Similarity(a, b *entity.Receipt) float64 {
	score := vendorScore(a.Vendor, b.Vendor)

	diff := math.Abs(a.Amount - b.Amount)
	switch {
	case diff < 0.01:
		score += amountWeight
	case diff < 1.00:
		score += 0.2
	case diff < 5.00:
		score += 0.1
	}

	days := daysApart(a, b)
	switch {
	case days == 0:
		score += dateWeight
	case days == 1:
		score += dateWeight / 2
	case days <= 3:
		score += dateWeight / 4
	}

	if a.Category != nil && b.Category != nil && *a.Category == *b.Category {
		score += categoryWeight
	}
	return score
}

// vendorScore gives full weight to a case-insensitive exact match and half
// weight to substring containment in either direction.
func vendorScore(a, b string) float64 {
	av := strings.ToLower(strings.TrimSpace(a))
	bv := strings.ToLower(strings.TrimSpace(b))
	switch {
	case av == "" || bv == "":
		return 0
	case av == bv:
		return vendorWeight
	case strings.Contains(av, bv) || strings.Contains(bv, av):
		return vendorWeight / 2
	}
	return 0
}

// daysApart compares calendar days, ignoring time-of-day.
func daysApart(a, b *entity.Receipt) int {
	ay, am, ad := a.Date.Date()
	by, bm, bd := b.Date.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(math.Abs(da.Sub(db).Hours()) / 24)
}

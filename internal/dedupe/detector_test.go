package dedupe

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

var day0 = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func receipt(vendor string, amount float64, date time.Time, category string) *entity.Receipt {
	r := &entity.Receipt{
		ID:     uuid.New(),
		Vendor: vendor,
		Amount: amount,
		Date:   date,
	}
	if category != "" {
		r.Category = &category
	}
	return r
}

func TestSimilarityNearIdentical(t *testing.T) {
	// Identical vendor, amount off by half a cent, same day: 0.4 + 0.3 + 0.2.
	a := receipt("Home Depot", 42.17, day0, "")
	b := receipt("Home Depot", 42.175, day0, "")
	assert.InDelta(t, 0.9, Similarity(a, b), 1e-9)

	// Matching categories add the last 0.1.
	a = receipt("Home Depot", 42.17, day0, "Materials")
	b = receipt("Home Depot", 42.175, day0, "Materials")
	assert.InDelta(t, 1.0, Similarity(a, b), 1e-9)
}

func TestSimilarityWeakPair(t *testing.T) {
	// Vendor substring only, amount off by 500, 10 days apart: 0.2 total.
	a := receipt("Home Depot", 600.00, day0, "")
	b := receipt("The Home Depot #4512", 100.00, day0.AddDate(0, 0, 10), "")
	assert.InDelta(t, 0.2, Similarity(a, b), 1e-9)
}

func TestAmountBandBoundaries(t *testing.T) {
	base := receipt("Acme", 100.00, day0, "")

	tests := []struct {
		name  string
		other float64
		want  float64 // amount component only; vendor+date contribute 0.6
	}{
		{"sub-cent difference scores full weight", 100.005, 0.3},
		{"just under a dollar", 100.99, 0.2},
		{"exactly one dollar is NOT the 0.2 band", 101.00, 0.1},
		{"just under five dollars", 104.99, 0.1},
		{"exactly five dollars scores nothing", 105.00, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := receipt("Acme", tt.other, day0, "")
			assert.InDelta(t, 0.4+tt.want+0.2, Similarity(base, other), 1e-9)
		})
	}
}

func TestDateBands(t *testing.T) {
	base := receipt("Acme", 100.00, day0, "")

	tests := []struct {
		name string
		date time.Time
		want float64 // date component only
	}{
		{"same day", day0, 0.2},
		{"one day apart", day0.AddDate(0, 0, 1), 0.1},
		{"three days apart", day0.AddDate(0, 0, 3), 0.05},
		{"four days apart", day0.AddDate(0, 0, 4), 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := receipt("Acme", 100.00, tt.date, "")
			assert.InDelta(t, 0.4+0.3+tt.want, Similarity(base, other), 1e-9)
		})
	}
}

func TestVendorScoring(t *testing.T) {
	t.Run("case-insensitive exact", func(t *testing.T) {
		a := receipt("HOME DEPOT", 1.00, day0, "")
		b := receipt("home depot", 999.00, day0.AddDate(0, 0, 30), "")
		assert.InDelta(t, 0.4, Similarity(a, b), 1e-9)
	})

	t.Run("containment either direction scores half", func(t *testing.T) {
		a := receipt("Depot", 1.00, day0, "")
		b := receipt("Home Depot", 999.00, day0.AddDate(0, 0, 30), "")
		assert.InDelta(t, 0.2, Similarity(a, b), 1e-9)
		assert.InDelta(t, 0.2, Similarity(b, a), 1e-9)
	})

	t.Run("empty vendors score zero", func(t *testing.T) {
		a := receipt("", 1.00, day0, "")
		b := receipt("", 999.00, day0.AddDate(0, 0, 30), "")
		assert.InDelta(t, 0.0, Similarity(a, b), 1e-9)
	})
}

func TestFindDuplicates(t *testing.T) {
	cand := receipt("Home Depot", 42.17, day0, "Materials")

	exact := receipt("Home Depot", 42.17, day0, "Materials")
	near := receipt("Home Depot", 43.00, day0.AddDate(0, 0, 1), "Materials")
	unrelated := receipt("Shell", 60.00, day0.AddDate(0, 0, 20), "Fuel")

	t.Run("ranked above threshold only", func(t *testing.T) {
		matches := FindDuplicates(cand, []*entity.Receipt{unrelated, near, exact})
		require.Len(t, matches, 2)
		assert.Equal(t, exact.ID, matches[0].Receipt.ID)
		assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
		assert.Equal(t, near.ID, matches[1].Receipt.ID)
		assert.True(t, matches[1].Similarity >= Threshold)
	})

	t.Run("candidate's own identity is excluded", func(t *testing.T) {
		matches := FindDuplicates(cand, []*entity.Receipt{cand, exact})
		require.Len(t, matches, 1)
		assert.Equal(t, exact.ID, matches[0].Receipt.ID)
	})

	t.Run("weak pair below threshold is not reported", func(t *testing.T) {
		weakA := receipt("Home Depot", 600.00, day0, "")
		weakB := receipt("The Home Depot #4512", 100.00, day0.AddDate(0, 0, 10), "")
		assert.Empty(t, FindDuplicates(weakA, []*entity.Receipt{weakB}))
	})

	t.Run("idempotent", func(t *testing.T) {
		m1 := FindDuplicates(cand, []*entity.Receipt{near, exact})
		m2 := FindDuplicates(cand, []*entity.Receipt{near, exact})
		assert.Equal(t, m1, m2)
	})
}

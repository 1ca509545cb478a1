package parse

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestParser() *Parser {
	return &Parser{Now: func() time.Time { return fixedNow }}
}

func TestParseEmptyText(t *testing.T) {
	p := newTestParser()

	for _, txt := range []string{"", "   ", "\n\n\t"} {
		_, err := p.Parse(txt)
		assert.ErrorIs(t, err, common.ErrNoText)
	}
}

func TestAmountExtraction(t *testing.T) {
	p := newTestParser()

	t.Run("total keyword wins over larger line item", func(t *testing.T) {
		cand, err := p.Parse("HOME DEPOT\nLUMBER $88.00\nSUBTOTAL $38.00\nTOTAL $42.17\n")
		require.NoError(t, err)
		assert.Equal(t, 42.17, cand.Amount)
	})

	t.Run("spec example keyword over fallback", func(t *testing.T) {
		cand, err := p.Parse("SUBTOTAL $38.00\nTOTAL $42.17")
		require.NoError(t, err)
		assert.Equal(t, 42.17, cand.Amount)
	})

	t.Run("grand total and amount due qualify", func(t *testing.T) {
		cand, err := p.Parse("Shell\nGRAND TOTAL 101.50")
		require.NoError(t, err)
		assert.Equal(t, 101.50, cand.Amount)

		cand, err = p.Parse("Shell\nAMOUNT DUE: 12.99")
		require.NoError(t, err)
		assert.Equal(t, 12.99, cand.Amount)
	})

	t.Run("fallback takes the maximum amount anywhere", func(t *testing.T) {
		cand, err := p.Parse("ACME SUPPLY\nitem 12.50\nitem 99.99\nitem 4.25")
		require.NoError(t, err)
		assert.Equal(t, 99.99, cand.Amount)
	})

	t.Run("thousands separators parse", func(t *testing.T) {
		cand, err := p.Parse("Equipment World\nTOTAL $1,234.56")
		require.NoError(t, err)
		assert.Equal(t, 1234.56, cand.Amount)
	})

	t.Run("no amount anywhere yields zero", func(t *testing.T) {
		cand, err := p.Parse("thanks for shopping\ncome again")
		require.NoError(t, err)
		assert.Equal(t, 0.0, cand.Amount)
	})

	t.Run("integers without cents are not amounts", func(t *testing.T) {
		cand, err := p.Parse("STORE 1234\nREGISTER 2")
		require.NoError(t, err)
		assert.Equal(t, 0.0, cand.Amount)
	})
}

func TestVendorExtraction(t *testing.T) {
	p := newTestParser()

	t.Run("known vendor line returned as-is", func(t *testing.T) {
		cand, err := p.Parse("THE HOME DEPOT #4512\n123 Main St\nTOTAL $10.00")
		require.NoError(t, err)
		assert.Equal(t, "THE HOME DEPOT #4512", cand.Vendor)
	})

	t.Run("overlong known-vendor line collapses to keyword", func(t *testing.T) {
		long := "HOME DEPOT " + strings.Repeat("x", 60)
		cand, err := p.Parse(long + "\nTOTAL $10.00")
		require.NoError(t, err)
		assert.Equal(t, "Home Depot", cand.Vendor)
	})

	t.Run("fallback to first non-numeric line", func(t *testing.T) {
		cand, err := p.Parse("$42.17\nJoe's Concrete\nTOTAL $42.17")
		require.NoError(t, err)
		assert.Equal(t, "Joe's Concrete", cand.Vendor)
	})

	t.Run("fallback is truncated", func(t *testing.T) {
		long := strings.Repeat("a", 80)
		cand, err := p.Parse(long + "\nTOTAL $5.00")
		require.NoError(t, err)
		assert.Equal(t, long[:40], cand.Vendor)
	})

	t.Run("fallback truncation keeps runes whole", func(t *testing.T) {
		long := "Panadería " + strings.Repeat("ñ", 60)
		cand, err := p.Parse(long + "\nTOTAL $5.00")
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(cand.Vendor))
		assert.Equal(t, 40, utf8.RuneCountInString(cand.Vendor))
	})

	t.Run("all-numeric text yields Unknown", func(t *testing.T) {
		cand, err := p.Parse("$42.17\n123 456\n#9")
		require.NoError(t, err)
		assert.Equal(t, "Unknown", cand.Vendor)
	})
}

func TestDateExtraction(t *testing.T) {
	p := newTestParser()

	t.Run("US slash date", func(t *testing.T) {
		cand, err := p.Parse("Lowes\n01/15/2025\nTOTAL $9.99")
		require.NoError(t, err)
		assert.True(t, cand.DateFound)
		assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), cand.Date)
	})

	t.Run("ISO date", func(t *testing.T) {
		cand, err := p.Parse("Lowes\n2025-01-15\nTOTAL $9.99")
		require.NoError(t, err)
		assert.True(t, cand.DateFound)
		assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), cand.Date)
	})

	t.Run("month name date", func(t *testing.T) {
		cand, err := p.Parse("Lowes\nJanuary 15, 2025\nTOTAL $9.99")
		require.NoError(t, err)
		assert.True(t, cand.DateFound)
		assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), cand.Date)
	})

	t.Run("missing date defaults to now and is marked not found", func(t *testing.T) {
		cand, err := p.Parse("Lowes\nTOTAL $9.99")
		require.NoError(t, err)
		assert.False(t, cand.DateFound)
		assert.Equal(t, fixedNow, cand.Date)
	})
}

func TestConfidenceScoring(t *testing.T) {
	p := newTestParser()

	t.Run("all fields extracted clamps below certainty", func(t *testing.T) {
		cand, err := p.Parse("HOME DEPOT\n01/15/2025\nTOTAL $42.17")
		require.NoError(t, err)
		assert.InDelta(t, 0.95, cand.Confidence, 1e-9)
	})

	t.Run("monotonic in extracted fields", func(t *testing.T) {
		none, err := p.Parse("####\n$0.00")
		require.NoError(t, err)
		one, err := p.Parse("####\n$5.00")
		require.NoError(t, err)
		two, err := p.Parse("HOME DEPOT\nTOTAL $5.00")
		require.NoError(t, err)
		three, err := p.Parse("HOME DEPOT\n01/15/2025\nTOTAL $5.00")
		require.NoError(t, err)

		assert.Less(t, none.Confidence, one.Confidence)
		assert.Less(t, one.Confidence, two.Confidence)
		assert.Less(t, two.Confidence, three.Confidence)
	})

	t.Run("idempotent", func(t *testing.T) {
		a, err := p.Parse("HOME DEPOT\n01/15/2025\nTOTAL $42.17")
		require.NoError(t, err)
		b, err := p.Parse("HOME DEPOT\n01/15/2025\nTOTAL $42.17")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

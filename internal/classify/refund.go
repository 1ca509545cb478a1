package classify

import (
	"strings"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

// refundKeywords is the fixed keyword set that marks a receipt as a refund or
// credit when it appears in the vendor or notes text.
var refundKeywords = []string{"refund", "return", "credit", "reversal", "reimburse"}

// IsRefund reports whether the receipt looks like money coming back: a
// negative amount, or refund language in its vendor/notes text. Pure and
// order-independent.
func IsRefund(r *entity.Receipt) bool {
	if r.Amount < 0 {
		return true
	}
	text := strings.ToLower(r.Vendor + " " + r.Notes)
	for _, kw := range refundKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

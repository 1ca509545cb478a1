package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

func TestIsRefund(t *testing.T) {
	tests := []struct {
		name    string
		receipt entity.Receipt
		want    bool
	}{
		{"negative amount", entity.Receipt{Amount: -50, Vendor: "Store"}, true},
		{"refund in vendor", entity.Receipt{Amount: 50, Vendor: "Store - Refund"}, true},
		{"return in notes", entity.Receipt{Amount: 50, Vendor: "Store", Notes: "Returned extra pipe"}, true},
		{"credit keyword", entity.Receipt{Amount: 10, Vendor: "Credit memo"}, true},
		{"reversal keyword", entity.Receipt{Amount: 10, Vendor: "Store", Notes: "charge reversal"}, true},
		{"reimburse keyword", entity.Receipt{Amount: 10, Vendor: "Store", Notes: "to reimburse Dan"}, true},
		{"plain purchase", entity.Receipt{Amount: 50, Vendor: "Store", Notes: "Purchase"}, false},
		{"zero amount no keywords", entity.Receipt{Amount: 0, Vendor: "Store"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRefund(&tt.receipt))
		})
	}
}

package reconcile

import (
	"math"

	"github.com/KaramelBytes/riskloom-cli/internal/schema"
	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

// DefaultTotalFee is the fee every student owes in full.
const DefaultTotalFee = 10000.0

// Fees is the remaining balance per row.
type Fees struct {
	Remaining []float64
	// PaidColumn is empty when no paid-amount column was found and every
	// row was defaulted to the full fee.
	PaidColumn string
}

// Defaulted reports whether the full-fee fallback was applied.
func (f Fees) Defaulted() bool { return f.PaidColumn == "" }

// FeeRemaining computes totalFee - paid per row, floored at 0. Missing or
// unparseable paid cells count as nothing paid. Without a paid-amount column
// every row owes totalFee; callers must surface that via Defaulted.
func FeeRemaining(t *table.Table, totalFee float64) Fees {
	return FeeRemainingExcept(t, totalFee, -1)
}

// FeeRemainingExcept is FeeRemaining with the column at idCol excluded from
// paid-amount detection.
func FeeRemainingExcept(t *table.Table, totalFee float64, idCol int) Fees {
	n := t.Len()
	out := Fees{Remaining: make([]float64, n)}
	c, ok := schema.DetectExcept(t, schema.PaidKeywords, schema.Numeric, idCol)
	if !ok {
		for i := range out.Remaining {
			out.Remaining[i] = totalFee
		}
		return out
	}
	out.PaidColumn = c.Name
	for i, cell := range t.Columns[c.Index].Cells {
		paid, ok := schema.Coerce(cell)
		if !ok {
			paid = 0
		}
		out.Remaining[i] = math.Max(0, totalFee-paid)
	}
	return out
}

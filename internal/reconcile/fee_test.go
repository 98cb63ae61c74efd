package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/riskloom-cli/internal/reconcile"
	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

func TestFeeRemaining(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("student_id", "s1", "s2", "s3"),
		column("amount_paid", 3000.0, 12000.0, nil),
	}}
	fees := reconcile.FeeRemaining(tb, reconcile.DefaultTotalFee)
	assert.False(t, fees.Defaulted())
	assert.Equal(t, "amount_paid", fees.PaidColumn)
	assert.Equal(t, []float64{7000, 0, 10000}, fees.Remaining)
}

func TestFeeRemaining_TextAmounts(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("roll", "1", "2", "3"),
		column("fee_paid", "1,500", "pending", "10000"),
	}}
	fees := reconcile.FeeRemaining(tb, 10000)
	assert.Equal(t, []float64{8500, 10000, 0}, fees.Remaining)
}

func TestFeeRemaining_DefaultsToFullFee(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("student_id", "s1", "s2"),
		column("status", "paid", "unpaid"),
	}}
	fees := reconcile.FeeRemaining(tb, 8000)
	assert.True(t, fees.Defaulted())
	assert.Empty(t, fees.PaidColumn)
	assert.Equal(t, []float64{8000, 8000}, fees.Remaining)
}

func TestFeeRemainingExcept_SkipsIDColumn(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("paid_id", "11", "12"),
		column("amount_paid", "3000", "12000"),
	}}
	fees := reconcile.FeeRemainingExcept(tb, 10000, 0)
	assert.Equal(t, "amount_paid", fees.PaidColumn)
	assert.Equal(t, []float64{7000, 0}, fees.Remaining)
}

package reconcile_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/riskloom-cli/internal/reconcile"
	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

func column(name string, cells ...any) table.Column { return table.Column{Name: name, Cells: cells} }

func assertSeries(t *testing.T, want []float64, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "row %d: want missing, got %v", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-9, "row %d", i)
	}
}

var nan = math.NaN()

func TestPercentage_ScaleInvariant(t *testing.T) {
	frac := &table.Table{Columns: []table.Column{column("student_id", "s1", "s2"), column("attendance", 0.9, 0.45)}}
	p := reconcile.Percentage(frac, reconcile.Attendance)
	assert.Equal(t, reconcile.MethodFractional, p.Method)
	assertSeries(t, []float64{90, 45}, p.Values)

	whole := &table.Table{Columns: []table.Column{column("student_id", "s1", "s2"), column("attendance", 90.0, 45.0)}}
	p = reconcile.Percentage(whole, reconcile.Attendance)
	assert.Equal(t, reconcile.MethodAsIs, p.Method)
	assertSeries(t, []float64{90, 45}, p.Values)
}

func TestPercentage_PercentColumnWinsAndClamps(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("student_id", "s1", "s2", "s3"),
		column("attendance", "3", "4", "5"),
		column("attendance_pct", "120%", "-5", nil),
	}}
	p := reconcile.Percentage(tb, reconcile.Attendance)
	assert.Equal(t, reconcile.MethodPercentColumn, p.Method)
	assert.Equal(t, "attendance_pct", p.PercentColumn)
	assertSeries(t, []float64{100, 0, nan}, p.Values)
}

func TestPercentage_UnusablePercentColumnFallsThrough(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("student_id", "s1", "s2"),
		column("percent_note", "good", "bad"),
		column("attendance", 60.0, 70.0),
	}}
	p := reconcile.Percentage(tb, reconcile.Attendance)
	assert.Equal(t, reconcile.MethodAsIs, p.Method)
	assertSeries(t, []float64{60, 70}, p.Values)
}

func TestPercentage_FractionStrings(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("roll", "1", "2", "3"),
		column("days_present", "9/12", "12", "x/4"),
		column("total_classes", "12", "12", "12"),
	}}
	p := reconcile.Percentage(tb, reconcile.Attendance)
	assert.Equal(t, reconcile.MethodFraction, p.Method)
	assert.Equal(t, "days_present", p.ValueColumn)
	// a bare "12" is a plain number, clamped to the 0-100 scale
	assertSeries(t, []float64{75, 12, nan}, p.Values)
}

func TestPercentage_ValueOverTotal(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("student_id", "s1", "s2", "s3", "s4"),
		column("marks_obtained", "45", "30", "10", nil),
		column("max_marks", "50", "0", "abc", "50"),
	}}
	p := reconcile.Percentage(tb, reconcile.Marks)
	assert.Equal(t, reconcile.MethodValueTotal, p.Method)
	assert.Equal(t, "marks_obtained", p.ValueColumn)
	assert.Equal(t, "max_marks", p.TotalColumn)
	assertSeries(t, []float64{90, nan, nan, nan}, p.Values)
}

func TestPercentage_TotalWithNoUsableRowsFallsBackToScaling(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("student_id", "s1", "s2"),
		column("marks", 40.0, 20.0),
		column("total", nil, nil),
	}}
	p := reconcile.Percentage(tb, reconcile.Marks)
	assert.Equal(t, reconcile.MethodAsIs, p.Method)
	assert.Empty(t, p.TotalColumn)
	assertSeries(t, []float64{40, 20}, p.Values)
}

func TestPercentage_ScaledByMax(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("student_id", "s1", "s2", "s3"),
		column("score", 400.0, 200.0, nil),
	}}
	p := reconcile.Percentage(tb, reconcile.Marks)
	assert.Equal(t, reconcile.MethodScaledByMax, p.Method)
	assert.Equal(t, 400.0, p.ScaleMax)
	assertSeries(t, []float64{100, 50, nan}, p.Values)
}

func TestPercentage_None(t *testing.T) {
	noColumn := &table.Table{Columns: []table.Column{column("student_id", "s1"), column("name", "Ann")}}
	p := reconcile.Percentage(noColumn, reconcile.Attendance)
	assert.Equal(t, reconcile.MethodNone, p.Method)
	assertSeries(t, []float64{nan}, p.Values)

	allText := &table.Table{Columns: []table.Column{column("student_id", "s1"), column("attendance", "good")}}
	p = reconcile.Percentage(allText, reconcile.Attendance)
	assert.Equal(t, reconcile.MethodNone, p.Method)
	assert.Equal(t, "attendance", p.ValueColumn)
	assertSeries(t, []float64{nan}, p.Values)
}

func TestPercentageExcept_SkipsIDColumn(t *testing.T) {
	tb := &table.Table{Columns: []table.Column{
		column("attendance_id", "1", "2"),
		column("attendance", "90", "45"),
	}}
	p := reconcile.PercentageExcept(tb, reconcile.Attendance, 0)
	assert.Equal(t, "attendance", p.ValueColumn)
	assert.Equal(t, reconcile.MethodAsIs, p.Method)
	assertSeries(t, []float64{90, 45}, p.Values)

	// without the exclusion the leading id column wins the tie
	assert.Equal(t, "attendance_id", reconcile.Percentage(tb, reconcile.Attendance).ValueColumn)
}

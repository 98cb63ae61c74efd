// Package reconcile derives one authoritative numeric series per table from
// whichever candidate columns the table happens to carry.
package reconcile

import (
	"math"
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/schema"
	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

// Domain names the keyword sets used to find a value and a total column.
type Domain struct {
	Name          string
	ValueKeywords []string
	TotalKeywords []string
}

var (
	Attendance = Domain{
		Name:          "attendance",
		ValueKeywords: []string{"attendance", "attend", "present", "attended", "days_present"},
		TotalKeywords: []string{"total", "classes", "sessions", "max_classes"},
	}
	Marks = Domain{
		Name:          "marks",
		ValueKeywords: []string{"marks", "score", "obtained", "result"},
		TotalKeywords: []string{"total", "max", "out_of"},
	}
)

// Method records which rule produced a percentage series.
type Method string

const (
	MethodPercentColumn Method = "percent_column"
	MethodFraction      Method = "fraction"
	MethodValueTotal    Method = "value_over_total"
	MethodFractional    Method = "fractional_scale"
	MethodAsIs          Method = "as_is"
	MethodScaledByMax   Method = "scaled_by_max"
	MethodNone          Method = "none"
)

// Percentages is a per-row 0-100 series (NaN = missing) plus how it was derived.
type Percentages struct {
	Values []float64
	Method Method
	// Source columns, empty when unused.
	PercentColumn string
	ValueColumn   string
	TotalColumn   string
	// ScaleMax is the observed maximum used as the 100% reference by MethodScaledByMax.
	ScaleMax float64
}

// Percentage resolves a percentage series for t, which must have normalized
// headers. Rules are tried in order: an explicit percent column, fraction
// strings in the value column, value/total, then auto-scaling of the value
// column by its maximum. Output is clamped to [0,100]; rounding is left to the caller.
func Percentage(t *table.Table, d Domain) Percentages {
	return PercentageExcept(t, d, -1)
}

// PercentageExcept is Percentage with the column at idCol (usually the
// detected student id) never chosen as a percent, value or total column.
func PercentageExcept(t *table.Table, d Domain, idCol int) Percentages {
	n := t.Len()
	if c, ok := schema.DetectExcept(t, schema.PercentKeywords, schema.Numeric, idCol); ok && c.NumericRatio > 0 {
		return Percentages{
			Values:        clampAll(schema.CoerceAll(t.Columns[c.Index].Cells), 0, 100),
			Method:        MethodPercentColumn,
			PercentColumn: c.Name,
		}
	}

	val, ok := schema.DetectExcept(t, d.ValueKeywords, schema.Numeric, idCol)
	if !ok {
		return Percentages{Values: missing(n), Method: MethodNone}
	}
	out := Percentages{ValueColumn: val.Name}
	cells := t.Columns[val.Index].Cells
	if anyFraction(cells) {
		out.Values = clampAll(schema.CoerceAll(cells), 0, 100)
		out.Method = MethodFraction
		return out
	}

	values := schema.CoerceAll(cells)
	if tot, ok := schema.DetectExcept(t, d.TotalKeywords, schema.Numeric, val.Index, idCol); ok {
		totals := schema.CoerceAll(t.Columns[tot.Index].Cells)
		pct := make([]float64, n)
		usable := false
		for i := range pct {
			if math.IsNaN(values[i]) || math.IsNaN(totals[i]) || totals[i] == 0 {
				pct[i] = math.NaN()
				continue
			}
			pct[i] = values[i] / totals[i] * 100
			usable = true
		}
		if usable {
			out.Values = clampAll(pct, 0, 100)
			out.Method = MethodValueTotal
			out.TotalColumn = tot.Name
			return out
		}
	}

	m, ok := maxOf(values)
	if !ok {
		out.Values = missing(n)
		out.Method = MethodNone
		return out
	}
	switch {
	case m <= 1.0:
		out.Values = clampAll(scale(values, 100), 0, 100)
		out.Method = MethodFractional
	case m <= 100.0:
		out.Values = clampAll(values, 0, 100)
		out.Method = MethodAsIs
	default:
		out.Values = clampAll(scale(values, 100/m), 0, 100)
		out.Method = MethodScaledByMax
		out.ScaleMax = m
	}
	return out
}

func anyFraction(cells []any) bool {
	for _, c := range cells {
		if s, ok := c.(string); ok && strings.Contains(s, "/") {
			return true
		}
	}
	return false
}

func missing(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func scale(vals []float64, k float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * k
	}
	return out
}

// clampAll bounds every present value to [lo,hi]; NaN stays missing.
func clampAll(vals []float64, lo, hi float64) []float64 {
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		vals[i] = math.Max(lo, math.Min(hi, v))
	}
	return vals
}

func maxOf(vals []float64) (float64, bool) {
	m, found := math.Inf(-1), false
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v > m {
			m = v
		}
		found = true
	}
	return m, found
}

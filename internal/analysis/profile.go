package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/riskloom-cli/internal/reconcile"
	"github.com/KaramelBytes/riskloom-cli/internal/schema"
	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

// Options controls profiling behavior.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues caps the categorical value list per column.
	TopValues int
	// OutlierThreshold flags numeric cells with robust |z| above it; 0 disables.
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for table profiling.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		TopValues:        5,
		OutlierThreshold: 3.5,
	}
}

// Report describes how the scoring pipeline would read one table.
type Report struct {
	Name        string
	Rows        int
	Cols        []ColumnSummary
	Resolutions []Resolution
	Samples     [][]string
	Warnings    []string
}

// Resolution is the percentage method a domain would resolve to on this table.
type Resolution struct {
	Domain string
	Method reconcile.Method
}

// ColumnSummary captures inferred kind, statistics and detected roles per column.
type ColumnSummary struct {
	Name    string // as read
	Header  string // normalized
	Kind    string // numeric|yes/no|categorical|text|empty
	NonNull int
	Missing int
	Unique  int

	NumericRatio float64
	YesNoRatio   float64

	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount int

	TopValues []CategoryCount
	// Roles lists what the pipeline would use this column for, e.g.
	// "student_id", "attendance.percent_value", "fees.paid_amount".
	Roles []string
}

type CategoryCount struct {
	Value string
	Count int
}

// Profile inspects t with the same normalizer and detectors the scoring
// pipeline uses. t is not modified.
func Profile(t *table.Table, opt Options) *Report {
	rep := &Report{Name: t.Name, Rows: t.Len()}
	if len(t.Columns) == 0 {
		rep.Warnings = append(rep.Warnings, "table has no columns")
		return rep
	}
	norm := table.Normalize(t)

	for i, col := range t.Columns {
		rep.Cols = append(rep.Cols, summarize(col, norm.Columns[i].Name, opt))
	}
	seen := map[string]int{}
	for i, c := range rep.Cols {
		if j, dup := seen[c.Header]; dup {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("columns %q and %q normalize to the same header %q", rep.Cols[j].Name, c.Name, c.Header))
			continue
		}
		seen[c.Header] = i
	}

	addRole := func(header, role string) {
		if header == "" {
			return
		}
		if i, ok := seen[header]; ok {
			rep.Cols[i].Roles = append(rep.Cols[i].Roles, role)
		}
	}
	idCol := 0
	if c, ok := schema.Detect(norm, schema.StudentIDKeywords, schema.Categorical); ok {
		idCol = c.Index
		addRole(c.Name, schema.RoleStudentID.String())
	} else {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("no student id column matched; the first column %q would be used", t.Columns[0].Name))
	}
	for _, d := range []reconcile.Domain{reconcile.Attendance, reconcile.Marks} {
		p := reconcile.PercentageExcept(norm, d, idCol)
		rep.Resolutions = append(rep.Resolutions, Resolution{Domain: d.Name, Method: p.Method})
		addRole(p.PercentColumn, d.Name+".percent")
		addRole(p.ValueColumn, d.Name+"."+schema.RolePercentValue.String())
		addRole(p.TotalColumn, d.Name+"."+schema.RolePercentTotal.String())
		if p.Method == reconcile.MethodScaledByMax {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s values in %q exceed 100 and would be rescaled by their maximum %.4g", d.Name, p.ValueColumn, p.ScaleMax))
		}
	}
	if fees := reconcile.FeeRemainingExcept(norm, reconcile.DefaultTotalFee, idCol); !fees.Defaulted() {
		addRole(fees.PaidColumn, "fees."+schema.RolePaidAmount.String())
	}

	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	for r := 0; r < rep.Rows && r < sampleRows; r++ {
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = table.Text(col.Cells[r])
		}
		rep.Samples = append(rep.Samples, row)
	}
	return rep
}

func summarize(col table.Column, header string, opt Options) ColumnSummary {
	cs := ColumnSummary{
		Name:         col.Name,
		Header:       header,
		NumericRatio: schema.NumericRatio(col.Cells),
		YesNoRatio:   schema.YesNoRatio(col.Cells),
	}
	cats := map[string]int{}
	for _, cell := range col.Cells {
		if cell == nil {
			cs.Missing++
			continue
		}
		cs.NonNull++
		cats[table.Text(cell)]++
	}
	cs.Unique = len(cats)

	switch {
	case cs.NonNull == 0:
		cs.Kind = "empty"
	case cs.NumericRatio >= 0.9:
		cs.Kind = "numeric"
	case cs.YesNoRatio >= 0.9:
		cs.Kind = "yes/no"
	case cs.Unique <= 20 || cs.Unique*2 <= cs.NonNull:
		cs.Kind = "categorical"
	default:
		cs.Kind = "text"
	}

	if cs.Kind == "numeric" {
		// Welford
		var n int
		var mean, m2 float64
		cs.Min, cs.Max = math.Inf(1), math.Inf(-1)
		var vals []float64
		for _, v := range schema.CoerceAll(col.Cells) {
			if math.IsNaN(v) {
				continue
			}
			vals = append(vals, v)
			n++
			d := v - mean
			mean += d / float64(n)
			m2 += d * (v - mean)
			cs.Min = math.Min(cs.Min, v)
			cs.Max = math.Max(cs.Max, v)
		}
		cs.Mean = mean
		if n > 1 {
			cs.Std = math.Sqrt(m2 / float64(n-1))
		}
		if opt.OutlierThreshold > 0 {
			med, mad := medianMAD(vals)
			if mad > 0 {
				for _, v := range vals {
					// 0.6745 scales MAD to sigma for normal data
					if math.Abs(0.6745*(v-med)/mad) > opt.OutlierThreshold {
						cs.OutliersCount++
					}
				}
			}
		}
	}

	if cs.Kind == "categorical" || cs.Kind == "yes/no" {
		for v, c := range cats {
			cs.TopValues = append(cs.TopValues, CategoryCount{Value: v, Count: c})
		}
		sort.Slice(cs.TopValues, func(i, j int) bool {
			if cs.TopValues[i].Count == cs.TopValues[j].Count {
				return cs.TopValues[i].Value < cs.TopValues[j].Value
			}
			return cs.TopValues[i].Count > cs.TopValues[j].Count
		})
		limit := opt.TopValues
		if limit <= 0 {
			limit = 5
		}
		if len(cs.TopValues) > limit {
			cs.TopValues = cs.TopValues[:limit]
		}
	}
	return cs
}

// Markdown renders the report as compact sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[TABLE PROFILE]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := safeName(c.Name)
		if c.Header != c.Name {
			name = fmt.Sprintf("%s -> %s", name, c.Header)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, numeric %.2f, yes/no %.2f)",
			name, c.Kind, c.NonNull, missPct, c.NumericRatio, c.YesNoRatio))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutliersCount > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d", c.OutliersCount))
			}
		case "categorical", "yes/no":
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		if len(c.Roles) > 0 {
			b.WriteString(" [" + strings.Join(c.Roles, ", ") + "]")
		}
		b.WriteString("\n")
	}

	if len(r.Resolutions) > 0 {
		b.WriteString("\n[RESOLUTION]\n")
		for _, res := range r.Resolutions {
			b.WriteString(fmt.Sprintf("- %s: %s\n", res.Domain, res.Method))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n|")
		b.WriteString(strings.Repeat(" --- |", len(r.Cols)))
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				b.WriteString(safeVal(truncate(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

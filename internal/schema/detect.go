// Package schema maps arbitrarily named input columns onto semantic roles.
package schema

import (
	"slices"
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

// Role is the purpose a column serves in the pipeline.
type Role int

const (
	RoleStudentID Role = iota
	RolePercentValue
	RolePercentTotal
	RolePaidAmount
)

func (r Role) String() string {
	switch r {
	case RoleStudentID:
		return "student_id"
	case RolePercentValue:
		return "percent_value"
	case RolePercentTotal:
		return "percent_total"
	case RolePaidAmount:
		return "paid_amount"
	default:
		return "unknown"
	}
}

// Bias selects which per-column score ranks candidates.
type Bias int

const (
	Numeric Bias = iota
	Categorical
)

// Keywords matched as substrings of normalized headers.
var (
	StudentIDKeywords = []string{"student", "id", "roll", "reg", "admission"}
	PercentKeywords   = []string{"percent", "percentage", "pct"}
	PaidKeywords      = []string{"paid", "amount_paid", "paid_amount", "paid_amt", "deposit", "received", "received_amount", "fee_paid"}
)

var (
	yesWords = []string{"yes", "y", "paid", "true", "t", "paid_in_full", "cleared", "cleared_fee", "done"}
	noWords  = []string{"no", "n", "not_paid", "unpaid", "false", "f", "pending"}
	yesNo    = func() map[string]struct{} {
		m := make(map[string]struct{}, len(yesWords)+len(noWords))
		for _, w := range append(append([]string{}, yesWords...), noWords...) {
			m[w] = struct{}{}
		}
		return m
	}()
)

// mostlyNumeric is the numeric ratio at which a column gets the flat bonus.
const mostlyNumeric = 0.5

// Candidate is a column whose header matched a keyword, with its scores.
type Candidate struct {
	Index        int
	Name         string
	NumericRatio float64
	YesNoRatio   float64
	Score        float64
}

// Candidates scores every column of t whose header contains one of keywords.
// Headers are expected to be normalized already.
func Candidates(t *table.Table, keywords []string, bias Bias) []Candidate {
	var out []Candidate
	for i, col := range t.Columns {
		if !matchesAny(col.Name, keywords) {
			continue
		}
		c := Candidate{Index: i, Name: col.Name, NumericRatio: NumericRatio(col.Cells), YesNoRatio: YesNoRatio(col.Cells)}
		if bias == Numeric {
			c.Score = c.NumericRatio
		} else {
			c.Score = c.YesNoRatio
		}
		if c.NumericRatio >= mostlyNumeric {
			c.Score = 1.0 + c.NumericRatio
		}
		out = append(out, c)
	}
	return out
}

// Detect returns the best candidate for keywords. The strictly highest score
// wins; ties keep the column that comes first in header order.
func Detect(t *table.Table, keywords []string, bias Bias) (Candidate, bool) {
	best, found := Candidate{}, false
	for _, c := range Candidates(t, keywords, bias) {
		if !found || c.Score > best.Score {
			best, found = c, true
		}
	}
	return best, found
}

// DetectExcept is Detect with the columns at the skip indexes removed from consideration.
func DetectExcept(t *table.Table, keywords []string, bias Bias, skip ...int) (Candidate, bool) {
	best, found := Candidate{}, false
	for _, c := range Candidates(t, keywords, bias) {
		if slices.Contains(skip, c.Index) {
			continue
		}
		if !found || c.Score > best.Score {
			best, found = c, true
		}
	}
	return best, found
}

// NumericRatio is the fraction of non-missing cells that Coerce accepts.
func NumericRatio(cells []any) float64 {
	present, numeric := 0, 0
	for _, c := range cells {
		if c == nil {
			continue
		}
		present++
		if _, ok := Coerce(c); ok {
			numeric++
		}
	}
	if present == 0 {
		return 0
	}
	return float64(numeric) / float64(present)
}

// YesNoRatio is the fraction of non-missing cells spelling an affirmative or
// negative token such as "paid" or "pending".
func YesNoRatio(cells []any) float64 {
	present, hits := 0, 0
	for _, c := range cells {
		if c == nil {
			continue
		}
		present++
		if _, ok := yesNo[strings.ToLower(table.Text(c))]; ok {
			hits++
		}
	}
	if present == 0 {
		return 0
	}
	return float64(hits) / float64(present)
}

func matchesAny(header string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(header, kw) {
			return true
		}
	}
	return false
}

package export

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/pipeline"
	"github.com/KaramelBytes/riskloom-cli/internal/risk"
)

// Markdown renders a compact report: tier counts, detected columns, the
// student table and any warnings.
func Markdown(res *pipeline.Result, maxRows int) string {
	var b strings.Builder
	b.WriteString("[RISK SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", res.RunID))
	b.WriteString(fmt.Sprintf("Students: %d\n", len(res.Records)))
	if len(res.Records) > 0 {
		var sum float64
		for _, r := range res.Records {
			sum += r.DropoutProbability
		}
		b.WriteString(fmt.Sprintf("Mean dropout probability: %.3f (fixed-weight heuristic, not a trained model)\n", sum/float64(len(res.Records))))
	}
	b.WriteString("\n")
	for _, dim := range []struct {
		label string
		pick  func(risk.StudentRecord) risk.Tier
	}{
		{"attendance_risk", func(r risk.StudentRecord) risk.Tier { return r.AttendanceRisk }},
		{"marks_risk", func(r risk.StudentRecord) risk.Tier { return r.MarksRisk }},
		{"fee_risk", func(r risk.StudentRecord) risk.Tier { return r.FeeRisk }},
	} {
		counts := map[risk.Tier]int{}
		for _, r := range res.Records {
			counts[dim.pick(r)]++
		}
		b.WriteString(fmt.Sprintf("- %s: Red %d, Orange %d, Green %d\n", dim.label, counts[risk.Red], counts[risk.Orange], counts[risk.Green]))
	}
	flagged := 0
	for _, r := range res.Records {
		if worst(r) == risk.Red {
			flagged++
		}
	}
	b.WriteString(fmt.Sprintf("- red in any dimension: %d\n", flagged))

	if len(res.Detections) > 0 {
		b.WriteString("\n[DETECTED COLUMNS]\n")
		for _, d := range res.Detections {
			b.WriteString(fmt.Sprintf("- %s (%s): id=%s", d.Source, safeVal(d.Table), d.IDColumn))
			if d.IDFallback {
				b.WriteString(" (fallback)")
			}
			switch {
			case d.Source == pipeline.SourceFees && d.PaidColumn != "":
				b.WriteString(fmt.Sprintf(", paid=%s", d.PaidColumn))
			case d.Source == pipeline.SourceFees:
				b.WriteString(", paid=(none, full fee assumed)")
			default:
				b.WriteString(fmt.Sprintf(", method=%s", d.Method))
				if d.PercentColumn != "" {
					b.WriteString(fmt.Sprintf(", percent=%s", d.PercentColumn))
				}
				if d.ValueColumn != "" {
					b.WriteString(fmt.Sprintf(", value=%s", d.ValueColumn))
				}
				if d.TotalColumn != "" {
					b.WriteString(fmt.Sprintf(", total=%s", d.TotalColumn))
				}
			}
			b.WriteString("\n")
		}
	}

	if len(res.Records) > 0 {
		b.WriteString("\n[STUDENTS]\n")
		b.WriteString("| " + strings.Join(risk.Columns, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(risk.Columns)) + "\n")
		limit := len(res.Records)
		if maxRows > 0 && maxRows < limit {
			limit = maxRows
		}
		for _, r := range res.Records[:limit] {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %s | %s | %s | %.4f |\n",
				safeVal(r.StudentID), pctCell(r.AttendancePercentage), pctCell(r.MarksPercentage),
				r.FeeRemaining, r.AttendanceRisk, r.MarksRisk, r.FeeRisk, r.DropoutProbability))
		}
		if limit < len(res.Records) {
			b.WriteString(fmt.Sprintf("\n(%d more rows omitted)\n", len(res.Records)-limit))
		}
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range res.Warnings {
			b.WriteString("- ")
			b.WriteString(w.Message)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// worst is the highest tier across the three dimensions.
func worst(r risk.StudentRecord) risk.Tier {
	w := r.AttendanceRisk
	for _, t := range []risk.Tier{r.MarksRisk, r.FeeRisk} {
		if t.Rank() > w.Rank() {
			w = t
		}
	}
	return w
}

func pctCell(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.2f", *v)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

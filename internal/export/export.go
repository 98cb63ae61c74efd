// Package export renders pipeline results for downstream consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/risk"
)

// Formats accepted by Write.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Envelope is the JSON success/error wrapper.
type Envelope struct {
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
}

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use csv|json|markdown)", s)
	}
}

// WriteCSV writes records with the fixed output column order. Missing
// percentages are written as empty cells.
func WriteCSV(w io.Writer, records []risk.StudentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(risk.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.StudentID,
			optFloat(r.AttendancePercentage),
			optFloat(r.MarksPercentage),
			formatFloat(r.FeeRemaining),
			string(r.AttendanceRisk),
			string(r.MarksRisk),
			string(r.FeeRisk),
			formatFloat(r.DropoutProbability),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", r.StudentID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes {"status":"success","result":[...]}.
func WriteJSON(w io.Writer, records []risk.StudentRecord) error {
	if records == nil {
		records = []risk.StudentRecord{}
	}
	return encode(w, Envelope{Status: "success", Result: records})
}

// WriteError writes {"status":"error","message":"..."}.
func WriteError(w io.Writer, err error) error {
	return encode(w, Envelope{Status: "error", Message: err.Error()})
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Table is an ordered set of equal-length named columns.
// Cells hold nil (missing), float64, int, int64, json.Number, bool or string values.
type Table struct {
	Name    string
	Columns []Column
}

// Column is a single named column of cells.
type Column struct {
	Name  string
	Cells []any
}

// ErrIngestion marks structural input failures (unreadable, empty, header-less tables).
var ErrIngestion = errors.New("ingestion failure")

// IngestionError reports a table that could not be turned into a Table.
type IngestionError struct {
	Table string
	Err   error
}

func (e *IngestionError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("ingest %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("ingest: %v", e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrIngestion) match any IngestionError.
func (e *IngestionError) Is(target error) bool { return target == ErrIngestion }

func ingestErr(name string, format string, args ...any) error {
	return &IngestionError{Table: name, Err: fmt.Errorf(format, args...)}
}

// New builds a table from a header and row-major records. Short rows are padded
// with missing cells; extra cells beyond the header are dropped.
func New(name string, header []string, rows [][]any) *Table {
	t := &Table{Name: name, Columns: make([]Column, len(header))}
	for j, h := range header {
		cells := make([]any, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		t.Columns[j] = Column{Name: h, Cells: cells}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// Headers returns the column names in order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Validate checks the structural invariants that the pipeline relies on.
func (t *Table) Validate() error {
	if t == nil {
		return ingestErr("", "table is nil")
	}
	if len(t.Columns) == 0 {
		return ingestErr(t.Name, "no columns")
	}
	n := len(t.Columns[0].Cells)
	for _, c := range t.Columns[1:] {
		if len(c.Cells) != n {
			return ingestErr(t.Name, "column %q has %d rows, expected %d", c.Name, len(c.Cells), n)
		}
	}
	if n == 0 {
		return ingestErr(t.Name, "no data rows")
	}
	return nil
}

// Normalize returns a copy of t whose headers are trimmed, lower-cased and have
// every character outside [a-z0-9_] replaced by '_'. Cells are copied verbatim.
func Normalize(t *Table) *Table {
	out := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		cells := make([]any, len(c.Cells))
		copy(cells, c.Cells)
		out.Columns[i] = Column{Name: NormalizeHeader(c.Name), Cells: cells}
	}
	return out
}

// NormalizeHeader canonicalizes one header name.
func NormalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// naTokens are the cell spellings read as missing at ingestion.
var naTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "null": {}, "none": {}, "#n/a": {}, "<na>": {}, "-nan": {},
}

// IsNA reports whether a raw text cell denotes a missing value.
func IsNA(s string) bool {
	_, ok := naTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// textCell converts a raw text cell to nil when it spells a missing value.
func textCell(s string) any {
	if IsNA(s) {
		return nil
	}
	return s
}

// Key renders a cell as a join key. Missing cells yield "".
func Key(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Text renders a cell the way string-based checks see it.
func Text(v any) string {
	if v == nil {
		return ""
	}
	return Key(v)
}

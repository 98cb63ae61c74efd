// Package pipeline wires the normalizer, detector, reconcilers and scorer into
// one synchronous transform: three raw tables in, one risk table out.
//
// Run holds no state between calls and never mutates its inputs, so it can be
// invoked concurrently. Column ambiguity is absorbed and reported as warnings;
// only structural ingestion problems are returned as errors.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/riskloom-cli/internal/logging"
	"github.com/KaramelBytes/riskloom-cli/internal/reconcile"
	"github.com/KaramelBytes/riskloom-cli/internal/risk"
	"github.com/KaramelBytes/riskloom-cli/internal/schema"
	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

// Source labels for the three input tables.
const (
	SourceAttendance = "attendance"
	SourceMarks      = "marks"
	SourceFees       = "fees"
)

// Warning codes.
const (
	WarnNoPercentage = "no_percentage_column"
	WarnScaledByMax  = "scaled_by_max"
	WarnFeeDefaulted = "fee_defaulted"
	WarnIDFallback   = "id_fallback"
	WarnDuplicateID  = "duplicate_id"
	WarnMissingID    = "missing_id"
)

// Inputs are the three raw tables of one invocation.
type Inputs struct {
	Attendance *table.Table
	Marks      *table.Table
	Fees       *table.Table
}

// Options configure one invocation.
type Options struct {
	Config risk.Config
	// Logger receives detection decisions (debug) and warnings (warn). Nil discards.
	Logger *slog.Logger
}

// DefaultOptions uses the canonical risk configuration and discards logs.
func DefaultOptions() Options {
	return Options{Config: risk.DefaultConfig()}
}

// Warning is a recovered ambiguity the caller should know about.
type Warning struct {
	Source  string `json:"source"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Detection records which columns were used for one input table.
type Detection struct {
	Source     string `json:"source"`
	Table      string `json:"table"`
	IDColumn   string `json:"id_column"`
	IDFallback bool   `json:"id_fallback"`
	// Percentage tables only.
	Method        reconcile.Method `json:"method,omitempty"`
	PercentColumn string           `json:"percent_column,omitempty"`
	ValueColumn   string           `json:"value_column,omitempty"`
	TotalColumn   string           `json:"total_column,omitempty"`
	// Fee table only; empty when the full-fee default was applied.
	PaidColumn string `json:"paid_column,omitempty"`
}

// Result is the complete output of one invocation.
type Result struct {
	RunID      uuid.UUID            `json:"run_id"`
	Records    []risk.StudentRecord `json:"records"`
	Detections []Detection          `json:"detections"`
	Warnings   []Warning            `json:"warnings"`
}

// Run executes the pipeline. It fails only when an input table is structurally
// unusable (see table.ErrIngestion) or the configuration is invalid.
func Run(in Inputs, opt Options) (*Result, error) {
	start := time.Now()
	logger := opt.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if err := opt.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk config: %w", err)
	}
	for _, src := range []struct {
		label string
		t     *table.Table
	}{{SourceAttendance, in.Attendance}, {SourceMarks, in.Marks}, {SourceFees, in.Fees}} {
		if src.t == nil {
			return nil, &table.IngestionError{Table: src.label, Err: fmt.Errorf("%s table is missing", src.label)}
		}
		if err := src.t.Validate(); err != nil {
			return nil, err
		}
	}

	res := &Result{RunID: uuid.New()}
	att := table.Normalize(in.Attendance)
	marks := table.Normalize(in.Marks)
	fees := table.Normalize(in.Fees)

	attKeyed := res.percentageTable(SourceAttendance, att, reconcile.Attendance)
	marksKeyed := res.percentageTable(SourceMarks, marks, reconcile.Marks)
	feeKeyed := res.feeTable(fees, opt.Config.TotalFee)

	rows := risk.OuterJoin(attKeyed, marksKeyed, feeKeyed)
	res.Records = risk.Score(rows, opt.Config)

	for _, d := range res.Detections {
		logger.Debug("columns detected",
			slog.String("source", d.Source),
			slog.String("table", d.Table),
			slog.String("id_column", d.IDColumn),
			slog.String("method", string(d.Method)),
			slog.String("value_column", firstNonEmpty(d.PercentColumn, d.ValueColumn, d.PaidColumn)),
		)
	}
	for _, w := range res.Warnings {
		logger.Warn(w.Message, slog.String("source", w.Source), slog.String("code", w.Code))
	}
	logging.LogOperation(logger, "pipeline_completed",
		slog.String("run_id", res.RunID.String()),
		slog.Int("students", len(res.Records)),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (res *Result) warn(source, code, format string, args ...any) {
	res.Warnings = append(res.Warnings, Warning{Source: source, Code: code, Message: fmt.Sprintf(format, args...)})
}

// studentIDs detects the id column (falling back to the first column) and
// renders each row's key. It returns the id column index so value detection
// can skip it.
func (res *Result) studentIDs(source string, t *table.Table, d *Detection) ([]string, int) {
	idx := 0
	if c, ok := schema.Detect(t, schema.StudentIDKeywords, schema.Categorical); ok {
		idx = c.Index
	} else {
		d.IDFallback = true
		res.warn(source, WarnIDFallback, "%s: no student id column matched; using first column %q", source, t.Columns[0].Name)
	}
	d.IDColumn = t.Columns[idx].Name
	ids := make([]string, t.Len())
	for i, cell := range t.Columns[idx].Cells {
		ids[i] = table.Key(cell)
	}
	return ids, idx
}

func (res *Result) keyed(source string, ids []string, values []float64) risk.Keyed {
	k := risk.KeyBy(ids, values)
	if k.Duplicates > 0 {
		res.warn(source, WarnDuplicateID, "%s: %d rows repeat an earlier student id; first occurrence kept", source, k.Duplicates)
	}
	if k.MissingIDs > 0 {
		res.warn(source, WarnMissingID, "%s: %d rows without a student id were skipped", source, k.MissingIDs)
	}
	return k
}

func (res *Result) percentageTable(source string, t *table.Table, d reconcile.Domain) risk.Keyed {
	det := Detection{Source: source, Table: t.Name}
	ids, idCol := res.studentIDs(source, t, &det)
	pct := reconcile.PercentageExcept(t, d, idCol)
	det.Method = pct.Method
	det.PercentColumn = pct.PercentColumn
	det.ValueColumn = pct.ValueColumn
	det.TotalColumn = pct.TotalColumn
	switch pct.Method {
	case reconcile.MethodNone:
		res.warn(source, WarnNoPercentage, "%s: no usable %s column found; all percentages missing", source, d.Name)
	case reconcile.MethodScaledByMax:
		res.warn(source, WarnScaledByMax, "%s: %q exceeds 100 (max %.4g); values rescaled treating the maximum as 100%%", source, pct.ValueColumn, pct.ScaleMax)
	}
	res.Detections = append(res.Detections, det)
	return res.keyed(source, ids, pct.Values)
}

func (res *Result) feeTable(t *table.Table, totalFee float64) risk.Keyed {
	det := Detection{Source: SourceFees, Table: t.Name}
	ids, idCol := res.studentIDs(SourceFees, t, &det)
	fees := reconcile.FeeRemainingExcept(t, totalFee, idCol)
	det.PaidColumn = fees.PaidColumn
	if fees.Defaulted() {
		res.warn(SourceFees, WarnFeeDefaulted, "fees: no paid amount column found; fee_remaining defaulted to %.2f for every student", totalFee)
	}
	res.Detections = append(res.Detections, det)
	return res.keyed(SourceFees, ids, fees.Remaining)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

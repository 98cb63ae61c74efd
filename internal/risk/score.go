package risk

import "math"

// StudentRecord is one row of the output table. Field order matches the
// output column order.
type StudentRecord struct {
	StudentID            string   `json:"student_id"`
	AttendancePercentage *float64 `json:"attendance_percentage"`
	MarksPercentage      *float64 `json:"marks_percentage"`
	FeeRemaining         float64  `json:"fee_remaining"`
	AttendanceRisk       Tier     `json:"attendance_risk"`
	MarksRisk            Tier     `json:"marks_risk"`
	FeeRisk              Tier     `json:"fee_risk"`
	DropoutProbability   float64  `json:"dropout_probability"`
}

// Columns is the fixed output column order.
var Columns = []string{
	"student_id",
	"attendance_percentage",
	"marks_percentage",
	"fee_remaining",
	"attendance_risk",
	"marks_risk",
	"fee_risk",
	"dropout_probability",
}

// Score classifies every joined row and computes its dropout probability:
//
//	w.Attendance*(100-att)/100 + w.Marks*(100-marks)/100 + w.Fee*feeRatio
//
// with missing percentages replaced by NeutralPrior. feeRatio is the row's fee
// over the maximum fee in rows; when nobody owes anything it degrades to a
// 0/1 "owes anything" indicator. The result is clamped to [0,1].
func Score(rows []Row, cfg Config) []StudentRecord {
	maxFee := 0.0
	for _, r := range rows {
		if r.Fee > maxFee {
			maxFee = r.Fee
		}
	}
	out := make([]StudentRecord, len(rows))
	for i, r := range rows {
		ratio := feeRatio(r.Fee, maxFee)
		feeTier := Green
		if maxFee > 0 {
			feeTier = cfg.FeeTier(ratio)
		}
		att := withPrior(r.Attendance, cfg.NeutralPrior)
		marks := withPrior(r.Marks, cfg.NeutralPrior)
		p := cfg.Weights.Attendance*(100-att)/100 +
			cfg.Weights.Marks*(100-marks)/100 +
			cfg.Weights.Fee*ratio
		out[i] = StudentRecord{
			StudentID:            r.StudentID,
			AttendancePercentage: optional(r.Attendance),
			MarksPercentage:      optional(r.Marks),
			FeeRemaining:         math.Max(0, r.Fee),
			AttendanceRisk:       cfg.AttendanceTier(r.Attendance),
			MarksRisk:            cfg.MarksTier(r.Marks),
			FeeRisk:              feeTier,
			DropoutProbability:   math.Max(0, math.Min(1, p)),
		}
	}
	return out
}

func feeRatio(fee, maxFee float64) float64 {
	if maxFee > 0 {
		return fee / maxFee
	}
	if fee > 0 {
		return 1
	}
	return 0
}

func withPrior(v, prior float64) float64 {
	if math.IsNaN(v) {
		return prior
	}
	return v
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

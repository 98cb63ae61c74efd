// Package risk classifies students into Green/Orange/Red tiers and computes a
// fixed-weight dropout heuristic. The score is a deterministic weighted sum of
// three complements; it is not a trained or validated predictive model.
package risk

import (
	"errors"
	"fmt"
)

// Weights of the dropout heuristic. They need not sum to 1; the result is clamped.
type Weights struct {
	Attendance float64
	Marks      float64
	Fee        float64
}

// Config holds every threshold and constant used by the scorer.
type Config struct {
	// Attendance below AttendanceLow is Red, below AttendanceMid Orange.
	AttendanceLow float64
	AttendanceMid float64
	MarksLow      float64
	MarksMid      float64
	// Fee ratio (remaining / max remaining) above FeeRedRatio is Red,
	// above FeeOrangeRatio Orange.
	FeeRedRatio    float64
	FeeOrangeRatio float64
	Weights        Weights
	// NeutralPrior replaces a missing percentage in the dropout score.
	NeutralPrior float64
	// TotalFee is the full fee owed by every student.
	TotalFee float64
}

// DefaultConfig returns the canonical thresholds and weights.
func DefaultConfig() Config {
	return Config{
		AttendanceLow:  50,
		AttendanceMid:  75,
		MarksLow:       40,
		MarksMid:       75,
		FeeRedRatio:    0.60,
		FeeOrangeRatio: 0.25,
		Weights:        Weights{Attendance: 0.5, Marks: 0.4, Fee: 0.1},
		NeutralPrior:   50,
		TotalFee:       10000,
	}
}

// Validate rejects configurations that would make the tiers meaningless.
func (c Config) Validate() error {
	var errs []error
	if c.AttendanceLow > c.AttendanceMid {
		errs = append(errs, fmt.Errorf("attendance_low %.2f exceeds attendance_mid %.2f", c.AttendanceLow, c.AttendanceMid))
	}
	if c.MarksLow > c.MarksMid {
		errs = append(errs, fmt.Errorf("marks_low %.2f exceeds marks_mid %.2f", c.MarksLow, c.MarksMid))
	}
	if c.FeeOrangeRatio > c.FeeRedRatio {
		errs = append(errs, fmt.Errorf("fee_orange_ratio %.2f exceeds fee_red_ratio %.2f", c.FeeOrangeRatio, c.FeeRedRatio))
	}
	if c.Weights.Attendance < 0 || c.Weights.Marks < 0 || c.Weights.Fee < 0 {
		errs = append(errs, errors.New("weights must be non-negative"))
	}
	if c.NeutralPrior < 0 || c.NeutralPrior > 100 {
		errs = append(errs, fmt.Errorf("neutral_prior %.2f outside [0,100]", c.NeutralPrior))
	}
	if c.TotalFee <= 0 {
		errs = append(errs, fmt.Errorf("total_fee must be positive, got %.2f", c.TotalFee))
	}
	return errors.Join(errs...)
}

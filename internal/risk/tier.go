package risk

import "math"

// Tier is a three-level ordinal risk classification.
type Tier string

const (
	Green  Tier = "Green"
	Orange Tier = "Orange"
	Red    Tier = "Red"
)

// Color is the RGB fill consumers use when rendering the tier.
func (t Tier) Color() string {
	switch t {
	case Red:
		return "FF9999"
	case Orange:
		return "FFD580"
	case Green:
		return "99FF99"
	default:
		return ""
	}
}

// Rank orders tiers from Green (0) to Red (2).
func (t Tier) Rank() int {
	switch t {
	case Orange:
		return 1
	case Red:
		return 2
	default:
		return 0
	}
}

// classify maps a percentage to a tier. Cut points are closed below: a value
// equal to low is Orange, equal to mid is Green. Missing (NaN) is Red.
func classify(v, low, mid float64) Tier {
	switch {
	case math.IsNaN(v), v < low:
		return Red
	case v < mid:
		return Orange
	default:
		return Green
	}
}

// AttendanceTier classifies an attendance percentage.
func (c Config) AttendanceTier(pct float64) Tier { return classify(pct, c.AttendanceLow, c.AttendanceMid) }

// MarksTier classifies a marks percentage.
func (c Config) MarksTier(pct float64) Tier { return classify(pct, c.MarksLow, c.MarksMid) }

// FeeTier classifies a fee ratio (remaining / max remaining).
func (c Config) FeeTier(ratio float64) Tier {
	switch {
	case ratio > c.FeeRedRatio:
		return Red
	case ratio > c.FeeOrangeRatio:
		return Orange
	default:
		return Green
	}
}

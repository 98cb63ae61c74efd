package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coerce converts one cell to a float. Percent strings ("45%") and fractions
// ("9/12") land on a 0-100 scale; thousands commas are stripped. ok is false
// for missing cells and anything that does not parse.
func Coerce(v any) (f float64, ok bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(x)
	case json.Number:
		return parseFloat(x.String())
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		return coerceString(x)
	default:
		return 0, false
	}
}

func coerceString(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.HasSuffix(s, "%") {
		return parseFloat(strings.TrimRight(s, "%"))
	}
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 2 {
			return 0, false
		}
		num, ok := parseFloat(parts[0])
		if !ok {
			return 0, false
		}
		den, ok := parseFloat(parts[1])
		if !ok || den == 0 {
			return 0, false
		}
		return finite(num / den * 100)
	}
	return parseFloat(strings.ReplaceAll(s, ",", ""))
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceAll coerces every cell; unconvertible cells become NaN.
func CoerceAll(cells []any) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		if f, ok := Coerce(c); ok {
			out[i] = f
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

package risk

import (
	"math"
	"sort"
	"strconv"
)

// Keyed is one table's series indexed by student id.
type Keyed struct {
	Values map[string]float64
	// Duplicates counts rows whose id was already seen; the first row wins.
	Duplicates int
	// MissingIDs counts rows dropped because their id cell was blank.
	MissingIDs int
}

// KeyBy pairs ids with values row by row.
func KeyBy(ids []string, values []float64) Keyed {
	k := Keyed{Values: make(map[string]float64, len(ids))}
	for i, id := range ids {
		if id == "" {
			k.MissingIDs++
			continue
		}
		if _, seen := k.Values[id]; seen {
			k.Duplicates++
			continue
		}
		v := math.NaN()
		if i < len(values) {
			v = values[i]
		}
		k.Values[id] = v
	}
	return k
}

// Row is one student after the outer join. Attendance and Marks are NaN when
// missing; Fee is 0 for students absent from the fee table.
type Row struct {
	StudentID  string
	Attendance float64
	Marks      float64
	Fee        float64
}

// OuterJoin merges the three keyed series so that a student present in any of
// them appears once. Percentages are rounded to 2 decimals here. Rows are
// ordered by student id, numerically when both ids are numbers.
func OuterJoin(attendance, marks, fees Keyed) []Row {
	ids := make(map[string]struct{})
	for _, k := range []Keyed{attendance, marks, fees} {
		for id := range k.Values {
			ids[id] = struct{}{}
		}
	}
	order := make([]string, 0, len(ids))
	for id := range ids {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return lessID(order[i], order[j]) })

	rows := make([]Row, len(order))
	for i, id := range order {
		r := Row{StudentID: id, Attendance: math.NaN(), Marks: math.NaN()}
		if v, ok := attendance.Values[id]; ok {
			r.Attendance = Round2(v)
		}
		if v, ok := marks.Values[id]; ok {
			r.Marks = Round2(v)
		}
		if v, ok := fees.Values[id]; ok && !math.IsNaN(v) {
			r.Fee = v
		}
		rows[i] = r
	}
	return rows
}

// Round2 rounds half to even at 2 decimals. NaN passes through.
func Round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.RoundToEven(v*100) / 100
}

func lessID(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil && fa != fb:
		return fa < fb
	case errA == nil && errB != nil:
		return true
	case errA != nil && errB == nil:
		return false
	default:
		return a < b
	}
}

package dates

import "fmt"

// Vector is a batch of dates. Vectors passed together to an operation are
// batch-parallel: element i of each describes the same request.
type Vector []Date

// VectorFromYMD converts parallel year, month and day slices into a Vector.
func VectorFromYMD(years, months, days []int) (Vector, error) {
	if len(years) != len(months) || len(years) != len(days) {
		return nil, fmt.Errorf("VectorFromYMD: length mismatch (years=%d, months=%d, days=%d)", len(years), len(months), len(days))
	}
	out := make(Vector, len(years))
	for i := range years {
		d, err := FromYMD(years[i], months[i], days[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

// VectorFromOrdinals wraps raw ordinals.
func VectorFromOrdinals(ordinals []int) Vector {
	out := make(Vector, len(ordinals))
	for i, o := range ordinals {
		out[i] = Date(o)
	}
	return out
}

// Ordinals returns the raw ordinals of v.
func (v Vector) Ordinals() []int {
	out := make([]int, len(v))
	for i, d := range v {
		out[i] = int(d)
	}
	return out
}

// YMD decomposes every element of v.
func (v Vector) YMD() (years, months, days []int) {
	years = make([]int, len(v))
	months = make([]int, len(v))
	days = make([]int, len(v))
	for i, d := range v {
		years[i], months[i], days[i] = d.YMD()
	}
	return years, months, days
}

// DayOfWeek returns the ISO weekday of every element of v.
func (v Vector) DayOfWeek() []Weekday {
	out := make([]Weekday, len(v))
	for i, d := range v {
		out[i] = d.DayOfWeek()
	}
	return out
}

// Strings formats every element as YYYY-MM-DD.
func (v Vector) Strings() []string {
	out := make([]string, len(v))
	for i, d := range v {
		out[i] = d.String()
	}
	return out
}

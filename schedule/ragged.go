package schedule

import "github.com/meenmo/moschedule/dates"

// Ragged holds one independently sized date sequence per batch element.
type Ragged [][]dates.Date

func (r Ragged) Len() int { return len(r) }

// Row returns the sequence for batch element i.
func (r Ragged) Row(i int) []dates.Date { return r[i] }

// Lengths returns the size of every row.
func (r Ragged) Lengths() []int {
	out := make([]int, len(r))
	for i, row := range r {
		out[i] = len(row)
	}
	return out
}

// Flatten concatenates all rows. Row i is values[offsets[i]:offsets[i+1]].
func (r Ragged) Flatten() (values dates.Vector, offsets []int) {
	offsets = make([]int, len(r)+1)
	for i, row := range r {
		offsets[i+1] = offsets[i] + len(row)
	}
	values = make(dates.Vector, 0, offsets[len(r)])
	for _, row := range r {
		values = append(values, row...)
	}
	return values, offsets
}

// Padded returns a rectangular copy in which every row is extended to the
// longest row by repeating its final date. Empty rows stay empty.
func (r Ragged) Padded() [][]dates.Date {
	width := 0
	for _, row := range r {
		width = max(width, len(row))
	}
	out := make([][]dates.Date, len(r))
	for i, row := range r {
		if len(row) == 0 {
			continue
		}
		p := make([]dates.Date, width)
		n := copy(p, row)
		for j := n; j < width; j++ {
			p[j] = row[n-1]
		}
		out[i] = p
	}
	return out
}

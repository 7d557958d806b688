package period

import (
	"fmt"

	"github.com/meenmo/moschedule/dates"
)

// Vector is a batch of tenors. Units holds either one unit per quantity or a
// single unit shared by every element.
type Vector struct {
	Quantities []int
	Units      []Unit
}

// NewVector validates the unit broadcast.
func NewVector(quantities []int, units []Unit) (Vector, error) {
	if len(units) != 1 && len(units) != len(quantities) {
		return Vector{}, fmt.Errorf("%w: %d quantities, %d units", ErrShapeMismatch, len(quantities), len(units))
	}
	return Vector{Quantities: quantities, Units: units}, nil
}

// Uniform builds a vector whose elements all share unit.
func Uniform(quantities []int, unit Unit) Vector {
	return Vector{Quantities: quantities, Units: []Unit{unit}}
}

// Single builds a one-element vector that broadcasts over any batch.
func Single(p Period) Vector {
	return Vector{Quantities: []int{p.Quantity}, Units: []Unit{p.Unit}}
}

// FromPeriods builds a vector from individual periods.
func FromPeriods(ps ...Period) Vector {
	v := Vector{Quantities: make([]int, len(ps)), Units: make([]Unit, len(ps))}
	for i, p := range ps {
		v.Quantities[i], v.Units[i] = p.Quantity, p.Unit
	}
	return v
}

func (v Vector) Len() int { return len(v.Quantities) }

// At returns element i. A one-element vector broadcasts, so At returns its
// only element for every i.
func (v Vector) At(i int) Period {
	if len(v.Quantities) == 1 {
		i = 0
	}
	u := v.Units[0]
	if len(v.Units) > 1 {
		u = v.Units[i]
	}
	return Period{Quantity: v.Quantities[i], Unit: u}
}

// Broadcasts reports whether v can be paired with a batch of n elements.
func (v Vector) Broadcasts(n int) bool {
	if len(v.Units) != 1 && len(v.Units) != len(v.Quantities) {
		return false
	}
	return len(v.Quantities) == 1 || len(v.Quantities) == n
}

// AddTo shifts every element of ds by the matching period.
func (v Vector) AddTo(ds dates.Vector) (dates.Vector, error) {
	if !v.Broadcasts(len(ds)) {
		return nil, fmt.Errorf("%w: %d periods for %d dates", ErrShapeMismatch, v.Len(), len(ds))
	}
	out := make(dates.Vector, len(ds))
	for i, d := range ds {
		out[i] = Add(d, v.At(i))
	}
	return out, nil
}

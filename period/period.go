// Package period implements tenor arithmetic on dates.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/meenmo/moschedule/dates"
)

var (
	// ErrInvalidPeriod is returned for a tenor that cannot be used, such as
	// a zero step in schedule generation or an unparseable tenor string.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrShapeMismatch is returned when batch-parallel slices disagree in length.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Unit is the calendar unit of a Period.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

func (u Unit) String() string {
	switch u {
	case Day:
		return "D"
	case Week:
		return "W"
	case Month:
		return "M"
	case Year:
		return "Y"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Period is a signed calendar offset such as 3M or -1Y.
type Period struct {
	Quantity int
	Unit     Unit
}

func Days(n int) Period   { return Period{n, Day} }
func Weeks(n int) Period  { return Period{n, Week} }
func Months(n int) Period { return Period{n, Month} }
func Years(n int) Period  { return Period{n, Year} }

func (p Period) String() string {
	return strconv.Itoa(p.Quantity) + p.Unit.String()
}

func (p Period) IsZero() bool { return p.Quantity == 0 }

func (p Period) Negate() Period { return Period{-p.Quantity, p.Unit} }

// Mul scales the quantity by k.
func (p Period) Mul(k int) Period { return Period{p.Quantity * k, p.Unit} }

// Add returns d shifted by p. Day and week periods are plain ordinal
// offsets. Month and year periods move the month index and keep the day of
// month, clamped to the length of the target month; a date on the last day
// of its month always lands on the last day of the target month.
//
// The month rules do not round-trip: 2020-01-30 + 1M is 2020-02-29, and
// 2020-02-29 - 1M is 2020-01-31.
//
// Add never adjusts for business days.
func Add(d dates.Date, p Period) dates.Date {
	switch p.Unit {
	case Day:
		return d + dates.Date(p.Quantity)
	case Week:
		return d + dates.Date(7*p.Quantity)
	case Month:
		return addMonths(d, p.Quantity)
	case Year:
		return addMonths(d, 12*p.Quantity)
	default:
		panic(fmt.Sprintf("period.Add: unknown unit %d", int(p.Unit)))
	}
}

// Sub returns d shifted back by p.
func Sub(d dates.Date, p Period) dates.Date {
	return Add(d, p.Negate())
}

func addMonths(d dates.Date, months int) dates.Date {
	if months == 0 {
		return d
	}
	y, m, day := d.YMD()
	eom := day == dates.DaysInMonth(y, m)

	idx := y*12 + m - 1 + months
	ny, nm := floorDiv(idx, 12), floorMod(idx, 12)+1

	last := dates.DaysInMonth(ny, nm)
	if eom || day > last {
		day = last
	}
	return dates.FromValidYMD(ny, nm, day)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

// Parse reads tenors of the form "3M", "10Y", "2W", "1D" or "-6M".
// Parsing is case-insensitive and ignores surrounding space.
func Parse(s string) (Period, error) {
	t := strings.TrimSpace(strings.ToUpper(s))
	if len(t) < 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	var unit Unit
	switch t[len(t)-1] {
	case 'D':
		unit = Day
	case 'W':
		unit = Week
	case 'M':
		unit = Month
	case 'Y':
		unit = Year
	default:
		return Period{}, fmt.Errorf("%w: %q: unknown unit", ErrInvalidPeriod, s)
	}
	q, err := strconv.Atoi(t[:len(t)-1])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q: %v", ErrInvalidPeriod, s, err)
	}
	return Period{Quantity: q, Unit: unit}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Period {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

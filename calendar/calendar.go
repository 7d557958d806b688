// Package calendar implements holiday calendars over a bounded year range and
// the business day roll conventions evaluated against them.
package calendar

import (
	"errors"
	"fmt"

	"github.com/meenmo/moschedule/dates"
	"github.com/meenmo/moschedule/period"
)

var (
	// ErrConfig is returned by New for inconsistent calendar inputs.
	ErrConfig = errors.New("calendar config error")

	// ErrOutOfRange is returned when a date, or the search for a business
	// day, falls outside the calendar's year window.
	ErrOutOfRange = errors.New("date out of calendar range")
)

// HolidayCalendar answers business day questions for the years
// [StartYear, EndYear]. It is immutable once built and safe for concurrent
// use.
type HolidayCalendar struct {
	mask      WeekendMask
	startYear int
	endYear   int
	first     dates.Date
	last      dates.Date
	holidays  int

	// bit i is set iff first+i is a business day.
	business []uint64
	// cum[i] is the number of business days in [first, first+i).
	cum []int32
}

// New builds the business day bitmap for [startYear, endYear] from a weekend
// mask and explicit holidays. Holidays that fall on a weekend or repeat are
// harmless; a holiday outside the year window is a config error.
func New(mask WeekendMask, holidays []dates.Date, startYear, endYear int) (*HolidayCalendar, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("%w: start year %d after end year %d", ErrConfig, startYear, endYear)
	}
	if startYear < dates.MinYear || endYear > dates.MaxYear {
		return nil, fmt.Errorf("%w: years %d..%d outside %d..%d", ErrConfig, startYear, endYear, dates.MinYear, dates.MaxYear)
	}
	if mask&^allDays != 0 {
		return nil, fmt.Errorf("%w: weekend mask %#x has bits above Sunday", ErrConfig, uint8(mask))
	}

	c := &HolidayCalendar{
		mask:      mask,
		startYear: startYear,
		endYear:   endYear,
		first:     dates.MustFromYMD(startYear, 1, 1),
		last:      dates.MustFromYMD(endYear, 12, 31),
	}
	n := int(c.last-c.first) + 1
	c.business = make([]uint64, (n+63)/64)

	wd := c.first.DayOfWeek()
	for i := 0; i < n; i++ {
		if !mask.IsWeekend(wd) {
			c.business[i/64] |= 1 << (uint(i) % 64)
		}
		if wd++; wd > dates.Sunday {
			wd = dates.Monday
		}
	}

	seen := make(map[dates.Date]struct{}, len(holidays))
	for i, h := range holidays {
		if !c.contains(h) {
			return nil, fmt.Errorf("%w: holiday %d (%s) outside %d..%d", ErrConfig, i, h, startYear, endYear)
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		off := int(h - c.first)
		c.business[off/64] &^= 1 << (uint(off) % 64)
	}
	c.holidays = len(seen)

	c.cum = make([]int32, n+1)
	for i := 0; i < n; i++ {
		c.cum[i+1] = c.cum[i]
		if c.isBusiness(c.first + dates.Date(i)) {
			c.cum[i+1]++
		}
	}
	return c, nil
}

func (c *HolidayCalendar) StartYear() int    { return c.startYear }
func (c *HolidayCalendar) EndYear() int      { return c.endYear }
func (c *HolidayCalendar) Mask() WeekendMask { return c.mask }

// HolidayCount is the number of distinct explicit holidays.
func (c *HolidayCalendar) HolidayCount() int { return c.holidays }

// Bounds returns the first and last date covered.
func (c *HolidayCalendar) Bounds() (first, last dates.Date) { return c.first, c.last }

func (c *HolidayCalendar) contains(d dates.Date) bool {
	return d >= c.first && d <= c.last
}

// CheckRange returns ErrOutOfRange if d is not covered by the calendar.
func (c *HolidayCalendar) CheckRange(d dates.Date) error {
	if !c.contains(d) {
		return fmt.Errorf("%w: %s not in %d..%d", ErrOutOfRange, d, c.startYear, c.endYear)
	}
	return nil
}

// isBusiness assumes d is in range.
func (c *HolidayCalendar) isBusiness(d dates.Date) bool {
	off := uint(d - c.first)
	return c.business[off/64]&(1<<(off%64)) != 0
}

// IsBusinessDay reports whether d is neither a weekend day nor a holiday.
func (c *HolidayCalendar) IsBusinessDay(d dates.Date) (bool, error) {
	if err := c.CheckRange(d); err != nil {
		return false, err
	}
	return c.isBusiness(d), nil
}

// NextBusinessDay returns the first business day strictly after d.
func (c *HolidayCalendar) NextBusinessDay(d dates.Date) (dates.Date, error) {
	if err := c.CheckRange(d); err != nil {
		return 0, err
	}
	for x := d + 1; x <= c.last; x++ {
		if c.isBusiness(x) {
			return x, nil
		}
	}
	return 0, fmt.Errorf("%w: no business day after %s before end of %d", ErrOutOfRange, d, c.endYear)
}

// PreviousBusinessDay returns the last business day strictly before d.
func (c *HolidayCalendar) PreviousBusinessDay(d dates.Date) (dates.Date, error) {
	if err := c.CheckRange(d); err != nil {
		return 0, err
	}
	for x := d - 1; x >= c.first; x-- {
		if c.isBusiness(x) {
			return x, nil
		}
	}
	return 0, fmt.Errorf("%w: no business day before %s after start of %d", ErrOutOfRange, d, c.startYear)
}

// AddBusinessDays advances n business days (n can be negative). With n == 0
// d is returned unchanged.
func (c *HolidayCalendar) AddBusinessDays(d dates.Date, n int) (dates.Date, error) {
	if err := c.CheckRange(d); err != nil {
		return 0, err
	}
	var err error
	for ; n > 0 && err == nil; n-- {
		d, err = c.NextBusinessDay(d)
	}
	for ; n < 0 && err == nil; n++ {
		d, err = c.PreviousBusinessDay(d)
	}
	if err != nil {
		return 0, err
	}
	return d, nil
}

// AddPeriodAndRoll adds p to d and rolls the result with conv.
func (c *HolidayCalendar) AddPeriodAndRoll(d dates.Date, p period.Period, conv Convention) (dates.Date, error) {
	return c.Roll(period.Add(d, p), conv)
}

// SubtractPeriodAndRoll subtracts p from d and rolls the result with conv.
func (c *HolidayCalendar) SubtractPeriodAndRoll(d dates.Date, p period.Period, conv Convention) (dates.Date, error) {
	return c.Roll(period.Sub(d, p), conv)
}

// BusinessDaysBetween counts business days in [from, to). If to is before
// from the count is negative. to may be the day after the calendar's last
// day.
func (c *HolidayCalendar) BusinessDaysBetween(from, to dates.Date) (int, error) {
	if to < from {
		n, err := c.BusinessDaysBetween(to, from)
		return -n, err
	}
	if err := c.CheckRange(from); err != nil {
		return 0, err
	}
	if to != c.last+1 {
		if err := c.CheckRange(to); err != nil {
			return 0, err
		}
	}
	return int(c.cum[to-c.first] - c.cum[from-c.first]), nil
}

// LastBusinessDayOfMonth returns the last business day of the month
// containing d.
func (c *HolidayCalendar) LastBusinessDayOfMonth(d dates.Date) (dates.Date, error) {
	return c.Roll(d.EndOfMonth(), Preceding)
}

// IsLastBusinessDayOfMonth checks if d is the last business day of its month.
func (c *HolidayCalendar) IsLastBusinessDayOfMonth(d dates.Date) (bool, error) {
	last, err := c.LastBusinessDayOfMonth(d)
	if err != nil {
		return false, err
	}
	return last == d, nil
}

// IsBusinessDayVector is the batched form of IsBusinessDay.
func (c *HolidayCalendar) IsBusinessDayVector(v dates.Vector) ([]bool, error) {
	out := make([]bool, len(v))
	for i, d := range v {
		if err := c.CheckRange(d); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = c.isBusiness(d)
	}
	return out, nil
}

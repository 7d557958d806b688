package calendar

import (
	"errors"
	"fmt"

	"github.com/meenmo/moschedule/dates"
)

// Roll adjusts d to a business day according to conv. Every convention,
// None included, fails with ErrOutOfRange if d itself is outside the
// calendar.
//
// The modified conventions treat a search that runs off the calendar edge as
// a change of month, since the window always ends on Dec 31 and starts on
// Jan 1. Nearest prefers the following day on ties, and falls back to
// whichever side exists when the other runs off the edge.
func (c *HolidayCalendar) Roll(d dates.Date, conv Convention) (dates.Date, error) {
	if err := c.CheckRange(d); err != nil {
		return 0, err
	}
	if !conv.valid() {
		return 0, fmt.Errorf("unknown business day convention %q", conv)
	}
	if conv == None || c.isBusiness(d) {
		return d, nil
	}

	switch conv {
	case Following:
		return c.NextBusinessDay(d)

	case Preceding:
		return c.PreviousBusinessDay(d)

	case ModifiedFollowing:
		next, err := c.NextBusinessDay(d)
		if err == nil && next.Month() == d.Month() {
			return next, nil
		}
		if err != nil && !errors.Is(err, ErrOutOfRange) {
			return 0, err
		}
		return c.PreviousBusinessDay(d)

	case ModifiedPreceding:
		prev, err := c.PreviousBusinessDay(d)
		if err == nil && prev.Month() == d.Month() {
			return prev, nil
		}
		if err != nil && !errors.Is(err, ErrOutOfRange) {
			return 0, err
		}
		return c.NextBusinessDay(d)

	case Nearest:
		next, nerr := c.NextBusinessDay(d)
		prev, perr := c.PreviousBusinessDay(d)
		switch {
		case nerr != nil && perr != nil:
			return 0, nerr
		case nerr != nil:
			return prev, nil
		case perr != nil:
			return next, nil
		case next-d <= d-prev:
			return next, nil
		default:
			return prev, nil
		}

	default:
		return 0, fmt.Errorf("unknown business day convention %q", conv)
	}
}

// RollVector is the batched form of Roll.
func (c *HolidayCalendar) RollVector(v dates.Vector, conv Convention) (dates.Vector, error) {
	out := make(dates.Vector, len(v))
	for i, d := range v {
		r, err := c.Roll(d, conv)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

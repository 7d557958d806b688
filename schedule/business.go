package schedule

import (
	"context"
	"fmt"

	cerrors "cloudeng.io/errors"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
)

// BusinessDays returns, for every element, each business day in the closed
// range [start[i], end[i]]. A range without business days yields an empty
// row.
func BusinessDays(ctx context.Context, start, end dates.Vector, cal *calendar.HolidayCalendar) (Ragged, error) {
	if cal == nil {
		return nil, ErrNilCalendar
	}
	if len(start) != len(end) {
		return nil, fmt.Errorf("%w: %d start dates, %d end dates", ErrShapeMismatch, len(start), len(end))
	}
	errs := &cerrors.M{}
	for i := range start {
		switch {
		case end[i] < start[i]:
			errs.Append(fmt.Errorf("element %d: %w: %s < %s", i, ErrInvalidRange, end[i], start[i]))
		case cal.CheckRange(start[i]) != nil:
			errs.Append(fmt.Errorf("element %d: start: %w", i, cal.CheckRange(start[i])))
		case cal.CheckRange(end[i]) != nil:
			errs.Append(fmt.Errorf("element %d: end: %w", i, cal.CheckRange(end[i])))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	out := make(Ragged, len(start))
	err := runBatch(ctx, len(start), func(i int) error {
		n, err := cal.BusinessDaysBetween(start[i], end[i]+1)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		row := make([]dates.Date, 0, n)
		for d := start[i]; d <= end[i]; d++ {
			if ok, _ := cal.IsBusinessDay(d); ok {
				row = append(row, d)
			}
		}
		out[i] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

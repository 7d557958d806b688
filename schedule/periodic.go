// Package schedule generates batches of business-day adjusted date
// sequences, such as coupon or reset dates, from start dates, end dates and
// tenors.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"

	cerrors "cloudeng.io/errors"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
	"github.com/meenmo/moschedule/period"
	"github.com/meenmo/moschedule/schedule/config"
)

var (
	// ErrInvalidRange is returned for an element whose end date is before
	// its start date.
	ErrInvalidRange = errors.New("end date before start date")

	// ErrShapeMismatch is returned when the batch inputs disagree in length.
	ErrShapeMismatch = errors.New("batch shape mismatch")

	// ErrNilCalendar is returned when no holiday calendar is supplied.
	ErrNilCalendar = errors.New("nil holiday calendar")

	// ErrTooManyPeriods is returned when an element exceeds config.MaxPeriods.
	ErrTooManyPeriods = errors.New("too many periods")
)

// Periodic describes a batch of periodic schedule requests. Start and End
// are batch-parallel; Tenors either has one element per request or a single
// element shared by all of them.
type Periodic struct {
	Start      dates.Vector
	End        dates.Vector
	Tenors     period.Vector
	Calendar   *calendar.HolidayCalendar
	Convention calendar.Convention
	// Backward generates from the end date towards the start date, so that
	// any short stub falls at the front.
	Backward bool
}

// NewPeriodic bundles a schedule request.
func NewPeriodic(start, end dates.Vector, tenors period.Vector, cal *calendar.HolidayCalendar, conv calendar.Convention, backward bool) *Periodic {
	return &Periodic{
		Start:      start,
		End:        end,
		Tenors:     tenors,
		Calendar:   cal,
		Convention: conv,
		Backward:   backward,
	}
}

// Len is the number of requests in the batch.
func (p *Periodic) Len() int { return len(p.Start) }

// Validate checks every element and reports all failures together. Dates
// returns the same error before generating anything.
func (p *Periodic) Validate() error {
	if p.Calendar == nil {
		return ErrNilCalendar
	}
	if len(p.Start) != len(p.End) {
		return fmt.Errorf("%w: %d start dates, %d end dates", ErrShapeMismatch, len(p.Start), len(p.End))
	}
	if !p.Tenors.Broadcasts(len(p.Start)) {
		return fmt.Errorf("%w: %d tenors for %d requests", ErrShapeMismatch, p.Tenors.Len(), len(p.Start))
	}
	errs := &cerrors.M{}
	for i := range p.Start {
		errs.Append(p.validateElement(i))
	}
	return errs.Err()
}

func (p *Periodic) validateElement(i int) error {
	start, end, tenor := p.Start[i], p.End[i], p.Tenors.At(i)
	if end < start {
		return fmt.Errorf("element %d: %w: %s < %s", i, ErrInvalidRange, end, start)
	}
	if tenor.Quantity <= 0 {
		return fmt.Errorf("element %d: %w: tenor %s must be positive", i, period.ErrInvalidPeriod, tenor)
	}
	if err := p.Calendar.CheckRange(start); err != nil {
		return fmt.Errorf("element %d: start: %w", i, err)
	}
	if err := p.Calendar.CheckRange(end); err != nil {
		return fmt.Errorf("element %d: end: %w", i, err)
	}
	return nil
}

// Dates generates the schedule for every element. Each row starts at the
// rolled start date, ends at the rolled end date and is strictly
// increasing. The call fails as a whole if any element fails validation or
// generation.
func (p *Periodic) Dates(ctx context.Context) (Ragged, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	maxPeriods := config.GetConfig().MaxPeriods
	out := make(Ragged, len(p.Start))
	err := runBatch(ctx, len(p.Start), func(i int) error {
		gen := p.forward
		if p.Backward {
			gen = p.backward
		}
		row, err := gen(i, maxPeriods)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// forward steps the unadjusted cursor from the start date; only the emitted
// dates are rolled so that adjustments never feed back into the stepping.
func (p *Periodic) forward(i, maxPeriods int) ([]dates.Date, error) {
	start, end, tenor := p.Start[i], p.End[i], p.Tenors.At(i)

	first, err := p.Calendar.Roll(start, p.Convention)
	if err != nil {
		return nil, err
	}
	out := make([]dates.Date, 1, estimateLength(start, end, tenor))
	out[0] = first

	cursor := start
	for {
		next := period.Add(cursor, tenor)
		if next >= end {
			break
		}
		rolled, err := p.Calendar.Roll(next, p.Convention)
		if err != nil {
			return nil, err
		}
		if rolled > out[len(out)-1] {
			out = append(out, rolled)
		}
		if maxPeriods > 0 && len(out) > maxPeriods {
			return nil, fmt.Errorf("%w: more than %d dates", ErrTooManyPeriods, maxPeriods)
		}
		cursor = next
	}

	last, err := p.Calendar.Roll(end, p.Convention)
	if err != nil {
		return nil, err
	}
	if last > out[len(out)-1] {
		out = append(out, last)
	}
	return out, nil
}

// backward mirrors forward from the end date and reverses the result.
func (p *Periodic) backward(i, maxPeriods int) ([]dates.Date, error) {
	start, end, tenor := p.Start[i], p.End[i], p.Tenors.At(i)

	last, err := p.Calendar.Roll(end, p.Convention)
	if err != nil {
		return nil, err
	}
	out := make([]dates.Date, 1, estimateLength(start, end, tenor))
	out[0] = last

	cursor := end
	for {
		prev := period.Sub(cursor, tenor)
		if prev <= start {
			break
		}
		rolled, err := p.Calendar.Roll(prev, p.Convention)
		if err != nil {
			return nil, err
		}
		if rolled < out[len(out)-1] {
			out = append(out, rolled)
		}
		if maxPeriods > 0 && len(out) > maxPeriods {
			return nil, fmt.Errorf("%w: more than %d dates", ErrTooManyPeriods, maxPeriods)
		}
		cursor = prev
	}

	first, err := p.Calendar.Roll(start, p.Convention)
	if err != nil {
		return nil, err
	}
	if first < out[len(out)-1] {
		out = append(out, first)
	}
	slices.Reverse(out)
	return out, nil
}

// estimateLength sizes the output buffer; it slightly overestimates for
// month and year tenors.
func estimateLength(start, end dates.Date, tenor period.Period) int {
	days := tenor.Quantity
	switch tenor.Unit {
	case period.Week:
		days *= 7
	case period.Month:
		days *= 28
	case period.Year:
		days *= 365
	}
	if days <= 0 {
		return 2
	}
	return int(end-start)/days + 2
}

// Generate is a single-request convenience wrapper around Periodic.
func Generate(start, end dates.Date, tenor period.Period, cal *calendar.HolidayCalendar, conv calendar.Convention, backward bool) ([]dates.Date, error) {
	p := NewPeriodic(dates.Vector{start}, dates.Vector{end}, period.Single(tenor), cal, conv, backward)
	r, err := p.Dates(context.Background())
	if err != nil {
		return nil, err
	}
	return r[0], nil
}

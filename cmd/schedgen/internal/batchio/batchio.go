// Package batchio is the JSON codec for schedule batches shared by the CLI
// and the HTTP server.
package batchio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	cerrors "cloudeng.io/errors"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
	"github.com/meenmo/moschedule/period"
	"github.com/meenmo/moschedule/schedule"
)

// DefaultConvention applies when a request names none.
const DefaultConvention = calendar.ModifiedFollowing

// ErrBadRequest marks malformed input.
var ErrBadRequest = errors.New("bad request")

// Item is one schedule in a batch.
type Item struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Tenor string `json:"tenor"`
}

// Request is a batch of schedules sharing a calendar and convention.
type Request struct {
	Calendar   string `json:"calendar"`
	Convention string `json:"convention,omitempty"`
	Backward   bool   `json:"backward,omitempty"`
	Items      []Item `json:"items"`
}

// Response carries one date list per requested item, in request order.
type Response struct {
	RequestID string     `json:"request_id,omitempty"`
	Calendar  string     `json:"calendar"`
	Schedules [][]string `json:"schedules"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

// CalendarProvider resolves a calendar id to a calendar covering the given
// years.
type CalendarProvider interface {
	Calendar(ctx context.Context, id string, startYear, endYear int) (*calendar.HolidayCalendar, error)
}

// DecodeRequest reads either a full Request object or a bare JSON array of
// items. Unknown fields are rejected.
func DecodeRequest(r io.Reader) (*Request, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	dec := json.NewDecoder(br)
	dec.DisallowUnknownFields()
	req := &Request{}
	if first == '[' {
		err = dec.Decode(&req.Items)
	} else {
		err = dec.Decode(req)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return req, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

// Periodic converts the request into a schedule batch over cal. Every
// malformed item is reported.
func (r *Request) Periodic(cal *calendar.HolidayCalendar) (*schedule.Periodic, error) {
	if len(r.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrBadRequest)
	}
	conv := DefaultConvention
	if r.Convention != "" {
		c, err := calendar.ParseConvention(r.Convention)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		conv = c
	}

	n := len(r.Items)
	start, end := make(dates.Vector, n), make(dates.Vector, n)
	tenors := make([]period.Period, n)
	errs := &cerrors.M{}
	for i, it := range r.Items {
		var err error
		if start[i], err = ParseDate(it.Start); err != nil {
			errs.Append(fmt.Errorf("items[%d].start: %w", i, err))
		}
		if end[i], err = ParseDate(it.End); err != nil {
			errs.Append(fmt.Errorf("items[%d].end: %w", i, err))
		}
		if tenors[i], err = period.Parse(it.Tenor); err != nil {
			errs.Append(fmt.Errorf("items[%d].tenor: %w", i, err))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return schedule.NewPeriodic(start, end, period.FromPeriods(tenors...), cal, conv, r.Backward), nil
}

// Run resolves the calendar, generates every schedule and encodes the
// result.
func (r *Request) Run(ctx context.Context, cals CalendarProvider, startYear, endYear int) (*Response, schedule.Ragged, error) {
	if r.Calendar == "" {
		return nil, nil, fmt.Errorf("%w: no calendar", ErrBadRequest)
	}
	cal, err := cals.Calendar(ctx, r.Calendar, startYear, endYear)
	if err != nil {
		return nil, nil, err
	}
	p, err := r.Periodic(cal)
	if err != nil {
		return nil, nil, err
	}
	rows, err := p.Dates(ctx)
	if err != nil {
		return nil, nil, err
	}
	return NewResponse(r.Calendar, rows), rows, nil
}

// NewResponse formats generated schedules.
func NewResponse(calendarID string, rows schedule.Ragged) *Response {
	out := &Response{Calendar: calendarID, Schedules: make([][]string, len(rows))}
	for i, row := range rows {
		out.Schedules[i] = dates.Vector(row).Strings()
	}
	return out
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(s string) (dates.Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q", s)
	}
	y, m, d := t.Date()
	return dates.FromYMD(y, int(m), d)
}

// Encode writes v as indented JSON.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

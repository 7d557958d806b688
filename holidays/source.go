// Package holidays supplies holiday data to the calendar package and caches
// the calendars built from it.
package holidays

import (
	"errors"
	"strings"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
)

// MarketID identifies a built-in holiday calendar.
type MarketID string

const (
	TARGET MarketID = "TARGET"
	USD    MarketID = "USD"
	NONE   MarketID = "NONE"
)

// ErrUnknownMarket is returned for a calendar id with no registered source.
var ErrUnknownMarket = errors.New("unknown market")

// Source produces the holidays of one market.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Weekend is the weekly non-business day mask.
	Weekend() calendar.WeekendMask
	// Holidays returns the non-weekend-rule closing days in
	// [Jan 1 startYear, Dec 31 endYear]. Order and duplicates do not matter.
	Holidays(startYear, endYear int) ([]dates.Date, error)
}

// StaticSource serves a fixed list of holidays.
type StaticSource struct {
	ID    string
	Mask  calendar.WeekendMask
	Dates []dates.Date
}

func (s *StaticSource) Name() string                  { return s.ID }
func (s *StaticSource) Weekend() calendar.WeekendMask { return s.Mask }

// Holidays returns the listed dates that fall inside the requested years.
func (s *StaticSource) Holidays(startYear, endYear int) ([]dates.Date, error) {
	return inYears(s.Dates, startYear, endYear), nil
}

func inYears(ds []dates.Date, startYear, endYear int) []dates.Date {
	out := make([]dates.Date, 0, len(ds))
	for _, d := range ds {
		if y := d.Year(); y >= startYear && y <= endYear {
			out = append(out, d)
		}
	}
	return out
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

package holidays

import (
	"fmt"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/ecb"
	"github.com/rickar/cal/v2/us"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
)

// RuleSource derives holidays from rickar/cal holiday rules. A date counts
// as a holiday when a rule is observed on it.
type RuleSource struct {
	name string
	mask calendar.WeekendMask
	cal  *cal.BusinessCalendar
}

// NewRuleSource builds a source from the given rules.
func NewRuleSource(name string, mask calendar.WeekendMask, rules ...*cal.Holiday) *RuleSource {
	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(rules...)
	return &RuleSource{name: name, mask: mask, cal: bc}
}

// ForMarket returns the built-in source for id.
func ForMarket(id MarketID) (*RuleSource, error) {
	switch MarketID(normalizeID(string(id))) {
	case TARGET:
		return NewRuleSource(string(TARGET), calendar.WeekendSaturdaySunday, ecb.Holidays...), nil
	case USD:
		return NewRuleSource(string(USD), calendar.WeekendSaturdaySunday,
			us.NewYear,
			us.MlkDay,
			us.PresidentsDay,
			us.MemorialDay,
			us.Juneteenth,
			us.IndependenceDay,
			us.LaborDay,
			us.ColumbusDay,
			us.VeteransDay,
			us.ThanksgivingDay,
			us.ChristmasDay,
		), nil
	case NONE:
		return NewRuleSource(string(NONE), calendar.WeekendSaturdaySunday), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMarket, id)
	}
}

func (s *RuleSource) Name() string                  { return s.name }
func (s *RuleSource) Weekend() calendar.WeekendMask { return s.mask }

// Holidays evaluates every rule on every day of the window.
func (s *RuleSource) Holidays(startYear, endYear int) ([]dates.Date, error) {
	first, err := dates.FromYMD(startYear, 1, 1)
	if err != nil {
		return nil, err
	}
	last, err := dates.FromYMD(endYear, 12, 31)
	if err != nil {
		return nil, err
	}
	var out []dates.Date
	for d := first; d <= last; d++ {
		if _, observed, _ := s.cal.IsHoliday(d.Time()); observed {
			out = append(out, d)
		}
	}
	return out, nil
}

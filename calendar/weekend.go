package calendar

import (
	"fmt"
	"strings"

	"github.com/meenmo/moschedule/dates"
)

// WeekendMask is a 7-bit set; bit i set means ISO weekday i (Monday == 0)
// is a non-business day.
type WeekendMask uint8

const (
	WeekendNone           WeekendMask = 0
	WeekendSaturdaySunday WeekendMask = 1<<dates.Saturday | 1<<dates.Sunday
	WeekendFridaySaturday WeekendMask = 1<<dates.Friday | 1<<dates.Saturday
	WeekendFridayOnly     WeekendMask = 1 << dates.Friday
	WeekendSundayOnly     WeekendMask = 1 << dates.Sunday

	allDays WeekendMask = 1<<7 - 1
)

// MaskFromDays builds a mask with the given weekdays set.
func MaskFromDays(days ...dates.Weekday) WeekendMask {
	var m WeekendMask
	for _, d := range days {
		m |= 1 << d
	}
	return m
}

// IsWeekend reports whether wd is in the mask.
func (m WeekendMask) IsWeekend(wd dates.Weekday) bool {
	return m&(1<<wd) != 0
}

// Days lists the weekdays in the mask, Monday first.
func (m WeekendMask) Days() []dates.Weekday {
	var out []dates.Weekday
	for wd := dates.Monday; wd <= dates.Sunday; wd++ {
		if m.IsWeekend(wd) {
			out = append(out, wd)
		}
	}
	return out
}

func (m WeekendMask) String() string {
	days := m.Days()
	if len(days) == 0 {
		return "none"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return strings.Join(names, "+")
}

// ParseWeekday accepts English day names or their three letter prefixes.
func ParseWeekday(s string) (dates.Weekday, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if len(t) >= 3 {
		for wd := dates.Monday; wd <= dates.Sunday; wd++ {
			if strings.HasPrefix(strings.ToLower(wd.String()), t[:3]) {
				return wd, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// ParseWeekendMask builds a mask from day names such as ["sat", "sun"].
func ParseWeekendMask(names []string) (WeekendMask, error) {
	var m WeekendMask
	for _, n := range names {
		wd, err := ParseWeekday(n)
		if err != nil {
			return 0, err
		}
		m |= 1 << wd
	}
	return m, nil
}

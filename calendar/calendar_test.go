package calendar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
	"github.com/meenmo/moschedule/period"
)

func ymd(y, m, d int) dates.Date { return dates.MustFromYMD(y, m, d) }

// newTestCalendar covers 2020-2021 with Sat/Sun weekends, Christmas 2020,
// New Year 2021 and a Monday holiday on 2020-06-01.
func newTestCalendar(t *testing.T) *calendar.HolidayCalendar {
	t.Helper()
	cal, err := calendar.New(calendar.WeekendSaturdaySunday, []dates.Date{
		ymd(2020, 12, 25),
		ymd(2021, 1, 1),
		ymd(2020, 6, 1),
		ymd(2020, 12, 26), // Saturday, already non-business
		ymd(2020, 12, 25), // duplicate
	}, 2020, 2021)
	require.NoError(t, err)
	return cal
}

func TestNew_ConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := calendar.New(calendar.WeekendSaturdaySunday, nil, 2021, 2020)
	require.ErrorIs(t, err, calendar.ErrConfig)

	_, err = calendar.New(calendar.WeekendSaturdaySunday, []dates.Date{ymd(2022, 1, 3)}, 2020, 2021)
	require.ErrorIs(t, err, calendar.ErrConfig)

	_, err = calendar.New(calendar.WeekendSaturdaySunday, []dates.Date{ymd(2019, 12, 31)}, 2020, 2021)
	require.ErrorIs(t, err, calendar.ErrConfig)

	_, err = calendar.New(calendar.WeekendMask(0xff), nil, 2020, 2021)
	require.ErrorIs(t, err, calendar.ErrConfig)
}

func TestNew_Metadata(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)
	assert.Equal(t, 2020, cal.StartYear())
	assert.Equal(t, 2021, cal.EndYear())
	assert.Equal(t, 4, cal.HolidayCount())
	first, last := cal.Bounds()
	assert.Equal(t, ymd(2020, 1, 1), first)
	assert.Equal(t, ymd(2021, 12, 31), last)
}

func TestIsBusinessDay(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)
	tests := []struct {
		date dates.Date
		want bool
	}{
		{ymd(2020, 1, 31), true},   // Friday
		{ymd(2020, 2, 29), false},  // Saturday
		{ymd(2020, 3, 1), false},   // Sunday
		{ymd(2020, 12, 25), false}, // holiday on a Friday
		{ymd(2020, 12, 26), false}, // holiday on a Saturday
		{ymd(2020, 12, 28), true},
	}
	for _, tt := range tests {
		got, err := cal.IsBusinessDay(tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.date.String())
	}

	_, err := cal.IsBusinessDay(ymd(2022, 3, 1))
	require.ErrorIs(t, err, calendar.ErrOutOfRange)
	_, err = cal.IsBusinessDay(ymd(2019, 12, 31))
	require.ErrorIs(t, err, calendar.ErrOutOfRange)
}

func TestRoll(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)
	tests := []struct {
		name string
		date dates.Date
		conv calendar.Convention
		want dates.Date
	}{
		{"none keeps weekend", ymd(2020, 2, 29), calendar.None, ymd(2020, 2, 29)},
		{"business day unchanged", ymd(2020, 1, 31), calendar.ModifiedFollowing, ymd(2020, 1, 31)},
		{"following over holiday and weekend", ymd(2020, 12, 25), calendar.Following, ymd(2020, 12, 28)},
		{"preceding over holiday", ymd(2021, 1, 2), calendar.Preceding, ymd(2020, 12, 31)},
		{"modified following stays in month", ymd(2021, 1, 2), calendar.ModifiedFollowing, ymd(2021, 1, 4)},
		{"modified following falls back at month end", ymd(2020, 5, 30), calendar.ModifiedFollowing, ymd(2020, 5, 29)},
		{"modified preceding falls forward at month start", ymd(2020, 8, 1), calendar.ModifiedPreceding, ymd(2020, 8, 3)},
		{"modified preceding stays in month", ymd(2020, 8, 9), calendar.ModifiedPreceding, ymd(2020, 8, 7)},
		{"nearest picks previous", ymd(2020, 2, 29), calendar.Nearest, ymd(2020, 2, 28)},
		{"nearest picks next", ymd(2020, 3, 1), calendar.Nearest, ymd(2020, 3, 2)},
		{"nearest tie goes following", ymd(2020, 5, 31), calendar.Nearest, ymd(2020, 6, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.Roll(tt.date, tt.conv)
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}

	_, err := cal.Roll(ymd(2022, 1, 1), calendar.None)
	require.ErrorIs(t, err, calendar.ErrOutOfRange)

	_, err = cal.Roll(ymd(2020, 2, 29), calendar.Convention("SIDEWAYS"))
	require.Error(t, err)
}

func TestRoll_WindowEdges(t *testing.T) {
	t.Parallel()

	// 2022-01-01 and 2022-12-31 are both Saturdays.
	cal, err := calendar.New(calendar.WeekendSaturdaySunday, nil, 2022, 2022)
	require.NoError(t, err)

	_, err = cal.Roll(ymd(2022, 12, 31), calendar.Following)
	require.ErrorIs(t, err, calendar.ErrOutOfRange)
	_, err = cal.Roll(ymd(2022, 1, 1), calendar.Preceding)
	require.ErrorIs(t, err, calendar.ErrOutOfRange)

	got, err := cal.Roll(ymd(2022, 12, 31), calendar.ModifiedFollowing)
	require.NoError(t, err)
	assert.Equal(t, ymd(2022, 12, 30), got)

	got, err = cal.Roll(ymd(2022, 1, 1), calendar.ModifiedPreceding)
	require.NoError(t, err)
	assert.Equal(t, ymd(2022, 1, 3), got)

	got, err = cal.Roll(ymd(2022, 12, 31), calendar.Nearest)
	require.NoError(t, err)
	assert.Equal(t, ymd(2022, 12, 30), got)
}

func TestRoll_Properties(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)
	first, last := cal.Bounds()
	for _, conv := range calendar.Conventions {
		for d := first; d <= last; d++ {
			r, err := cal.Roll(d, conv)
			require.NoError(t, err, "%s %s", conv, d)

			again, err := cal.Roll(r, conv)
			require.NoError(t, err)
			if again != r {
				t.Fatalf("%s not idempotent at %s: %s then %s", conv, d, r, again)
			}

			if conv == calendar.None {
				continue
			}
			ok, err := cal.IsBusinessDay(r)
			require.NoError(t, err)
			if !ok {
				t.Fatalf("%s rolled %s to non-business %s", conv, d, r)
			}
			if (conv == calendar.ModifiedFollowing || conv == calendar.ModifiedPreceding) && r.Month() != d.Month() {
				t.Fatalf("%s crossed month: %s -> %s", conv, d, r)
			}
		}
	}
}

func TestAddBusinessDays(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)

	got, err := cal.AddBusinessDays(ymd(2020, 12, 24), 1)
	require.NoError(t, err)
	assert.Equal(t, ymd(2020, 12, 28), got)

	got, err = cal.AddBusinessDays(ymd(2020, 12, 28), -1)
	require.NoError(t, err)
	assert.Equal(t, ymd(2020, 12, 24), got)

	got, err = cal.AddBusinessDays(ymd(2020, 12, 26), 0)
	require.NoError(t, err)
	assert.Equal(t, ymd(2020, 12, 26), got)

	got, err = cal.AddBusinessDays(ymd(2020, 12, 24), 5)
	require.NoError(t, err)
	assert.Equal(t, ymd(2021, 1, 4), got)

	_, err = cal.AddBusinessDays(ymd(2021, 12, 30), 5)
	require.ErrorIs(t, err, calendar.ErrOutOfRange)
}

func TestBusinessDaysBetween(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)

	n, err := cal.BusinessDaysBetween(ymd(2020, 12, 21), ymd(2020, 12, 28))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = cal.BusinessDaysBetween(ymd(2020, 12, 28), ymd(2020, 12, 21))
	require.NoError(t, err)
	assert.Equal(t, -4, n)

	// 262 weekdays in 2020 less two weekday holidays.
	n, err = cal.BusinessDaysBetween(ymd(2020, 1, 1), ymd(2021, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 260, n)

	_, last := cal.Bounds()
	n, err = cal.BusinessDaysBetween(ymd(2021, 12, 31), last+1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = cal.BusinessDaysBetween(ymd(2021, 12, 31), ymd(2022, 1, 5))
	require.ErrorIs(t, err, calendar.ErrOutOfRange)
}

func TestPeriodAndRoll(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)

	got, err := cal.AddPeriodAndRoll(ymd(2020, 1, 31), period.Months(4), calendar.ModifiedFollowing)
	require.NoError(t, err)
	assert.Equal(t, ymd(2020, 5, 29), got)

	got, err = cal.SubtractPeriodAndRoll(ymd(2021, 1, 25), period.Months(1), calendar.Following)
	require.NoError(t, err)
	assert.Equal(t, ymd(2020, 12, 28), got)
}

func TestLastBusinessDayOfMonth(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)
	got, err := cal.LastBusinessDayOfMonth(ymd(2020, 5, 10))
	require.NoError(t, err)
	assert.Equal(t, ymd(2020, 5, 29), got)

	ok, err := cal.IsLastBusinessDayOfMonth(ymd(2020, 5, 29))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVectors(t *testing.T) {
	t.Parallel()

	cal := newTestCalendar(t)
	v := dates.Vector{ymd(2020, 2, 29), ymd(2020, 5, 30), ymd(2020, 1, 31)}

	flags, err := cal.IsBusinessDayVector(v)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true}, flags)

	rolled, err := cal.RollVector(v, calendar.ModifiedFollowing)
	require.NoError(t, err)
	assert.Equal(t, dates.Vector{ymd(2020, 2, 28), ymd(2020, 5, 29), ymd(2020, 1, 31)}, rolled)

	_, err = cal.RollVector(dates.Vector{ymd(2020, 1, 1), ymd(2023, 1, 1)}, calendar.Following)
	require.ErrorIs(t, err, calendar.ErrOutOfRange)
	assert.Contains(t, err.Error(), "element 1")
}

func TestWeekendMask(t *testing.T) {
	t.Parallel()

	assert.Equal(t, calendar.WeekendSaturdaySunday, calendar.MaskFromDays(dates.Saturday, dates.Sunday))
	assert.True(t, calendar.WeekendFridaySaturday.IsWeekend(dates.Friday))
	assert.False(t, calendar.WeekendFridaySaturday.IsWeekend(dates.Sunday))
	assert.Equal(t, "Sat+Sun", calendar.WeekendSaturdaySunday.String())
	assert.Equal(t, "none", calendar.WeekendNone.String())

	m, err := calendar.ParseWeekendMask([]string{"Saturday", "sun"})
	require.NoError(t, err)
	assert.Equal(t, calendar.WeekendSaturdaySunday, m)

	_, err = calendar.ParseWeekendMask([]string{"funday"})
	require.Error(t, err)
}

func TestParseConvention(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]calendar.Convention{
		"modified_following": calendar.ModifiedFollowing,
		"Modified-Preceding": calendar.ModifiedPreceding,
		"MF":                 calendar.ModifiedFollowing,
		"nearest":            calendar.Nearest,
		"none":               calendar.None,
	} {
		got, err := calendar.ParseConvention(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := calendar.ParseConvention("backwards")
	require.Error(t, err)
}

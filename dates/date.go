// Package dates represents calendar dates as integer day ordinals so that
// batches of dates can be stored and compared as plain integers.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned for a (year, month, day) triple that does not
// exist in the proleptic Gregorian calendar.
var ErrInvalidDate = errors.New("invalid date")

const (
	MinYear = 1
	MaxYear = 9999

	// unixEpochOrdinal is the ordinal of 1970-01-01.
	unixEpochOrdinal = 719163
	secondsPerDay    = 24 * 60 * 60

	layout = "2006-01-02"
)

// Date is a day ordinal in the proleptic Gregorian calendar with
// 0001-01-01 == 1.
type Date int

// Weekday is an ISO aligned day of the week, Monday == 0 through Sunday == 6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// cumulative days before each month in a non-leap year, indexed 1..12.
var daysBeforeMonth = [13]int{0, 0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month. It returns 0
// for a month outside 1..12.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysInMonth[month]
}

func daysBeforeYear(year int) int {
	y := year - 1
	return y*365 + y/4 - y/100 + y/400
}

// FromYMD returns the ordinal of the given calendar date. Triples that do not
// name a real date fail with ErrInvalidDate; nothing is clamped.
func FromYMD(year, month, day int) (Date, error) {
	if year < MinYear || year > MaxYear {
		return 0, fmt.Errorf("%w: year %d outside %d..%d", ErrInvalidDate, year, MinYear, MaxYear)
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: %04d-%02d-%02d: month out of range", ErrInvalidDate, year, month, day)
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return 0, fmt.Errorf("%w: %04d-%02d-%02d: day out of range", ErrInvalidDate, year, month, day)
	}
	return ordinal(year, month, day), nil
}

func ordinal(year, month, day int) Date {
	ord := daysBeforeYear(year) + daysBeforeMonth[month] + day
	if month > 2 && IsLeapYear(year) {
		ord++
	}
	return Date(ord)
}

// FromValidYMD computes the ordinal without the MinYear..MaxYear bound.
// Month and day must already be valid for the year; arithmetic that steps
// just past MaxYear uses it so that range checks can happen later.
func FromValidYMD(year, month, day int) Date {
	return ordinal(year, month, day)
}

// MustFromYMD is like FromYMD but panics on an invalid triple. It is meant
// for literals.
func MustFromYMD(year, month, day int) Date {
	d, err := FromYMD(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the date of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return MustFromYMD(y, int(m), d)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Unix(int64(d-unixEpochOrdinal)*secondsPerDay, 0).UTC()
}

// YMD decomposes d into its calendar year, month and day.
func (d Date) YMD() (year, month, day int) {
	y, m, dd := d.Time().Date()
	return y, int(m), dd
}

func (d Date) Year() int {
	y, _, _ := d.YMD()
	return y
}

func (d Date) Month() int {
	_, m, _ := d.YMD()
	return m
}

func (d Date) Day() int {
	_, _, dd := d.YMD()
	return dd
}

// DayOfWeek returns the ISO day of the week, Monday == 0.
func (d Date) DayOfWeek() Weekday {
	// 0001-01-01 was a Monday.
	return Weekday(((int(d)-1)%7 + 7) % 7)
}

// IsEndOfMonth reports whether d is the last day of its month.
func (d Date) IsEndOfMonth() bool {
	y, m, dd := d.YMD()
	return dd == DaysInMonth(y, m)
}

// EndOfMonth returns the last day of the month containing d.
func (d Date) EndOfMonth() Date {
	y, m, dd := d.YMD()
	return d + Date(DaysInMonth(y, m)-dd)
}

func (d Date) String() string {
	return d.Time().Format(layout)
}

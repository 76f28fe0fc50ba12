package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// WEEKDAY - Canonical zero-based, Monday-first numbering
// =============================================================================

// Weekday is the only weekday numbering used inside the engine: 0=Monday ... 6=Sunday.
// Go's time.Weekday (0=Sunday) and the legacy 1=Sunday..7=Saturday numbering must be
// converted on the way in.
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

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// WeekdayFromGo converts Go's Sunday-first weekday.
func WeekdayFromGo(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % 7)
}

// WeekdayOf returns the canonical weekday of a date.
func WeekdayOf(t time.Time) Weekday { return WeekdayFromGo(t.Weekday()) }

// WeekdayFromSundayOneBased converts the 1=Sunday ... 7=Saturday numbering
// used by SQL week_day lookups.
func WeekdayFromSundayOneBased(n int) (Weekday, error) {
	if n < 1 || n > 7 {
		return 0, fmt.Errorf("%w: %d is outside 1..7", ErrInvalidWeekday, n)
	}
	return Weekday((n + 5) % 7), nil
}

// ParseWeekday validates an already-canonical weekday number.
func ParseWeekday(n int) (Weekday, error) {
	d := Weekday(n)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d is outside 0..6", ErrInvalidWeekday, n)
	}
	return d, nil
}

// =============================================================================
// CLOCK TIME - Time of day with minute granularity
// =============================================================================

// ClockTime is a time of day, in minutes since midnight.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

// ParseClock accepts "15:04" and "15:04:05". Seconds must be zero.
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
		nums[i] = n
	}
	if nums[0] > 23 || nums[1] > 59 || nums[2] != 0 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return NewClockTime(nums[0], nums[1]), nil
}

// MustParseClock panics on malformed input. Use in tests and fixtures.
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute()) }

// Sub returns c - other as a duration.
func (c ClockTime) Sub(other ClockTime) time.Duration {
	return time.Duration(c-other) * time.Minute
}

// =============================================================================
// DATES
// =============================================================================

const DateLayout = "2006-01-02"

// NewDate returns midnight UTC of the given day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time { return NewDate(t.Year(), t.Month(), t.Day()) }

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

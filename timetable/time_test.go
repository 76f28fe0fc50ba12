package timetable_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcal/timetable-engine/timetable"
)

func TestWeekdayFromGo(t *testing.T) {
	cases := map[time.Weekday]timetable.Weekday{
		time.Monday:    timetable.Monday,
		time.Wednesday: timetable.Wednesday,
		time.Saturday:  timetable.Saturday,
		time.Sunday:    timetable.Sunday,
	}
	for in, want := range cases {
		assert.Equal(t, want, timetable.WeekdayFromGo(in), in.String())
	}
}

func TestWeekdayOf_KnownDates(t *testing.T) {
	assert.Equal(t, timetable.Monday, timetable.WeekdayOf(timetable.NewDate(2024, time.September, 16)))
	assert.Equal(t, timetable.Sunday, timetable.WeekdayOf(timetable.NewDate(2024, time.September, 22)))
}

func TestWeekdayFromSundayOneBased(t *testing.T) {
	// 1=Sunday, 2=Monday ... 7=Saturday
	want := []timetable.Weekday{
		timetable.Sunday, timetable.Monday, timetable.Tuesday, timetable.Wednesday,
		timetable.Thursday, timetable.Friday, timetable.Saturday,
	}
	for n := 1; n <= 7; n++ {
		got, err := timetable.WeekdayFromSundayOneBased(n)
		require.NoError(t, err)
		assert.Equal(t, want[n-1], got, "week_day %d", n)
	}

	_, err := timetable.WeekdayFromSundayOneBased(0)
	assert.ErrorIs(t, err, timetable.ErrInvalidWeekday)
	_, err = timetable.WeekdayFromSundayOneBased(8)
	assert.ErrorIs(t, err, timetable.ErrInvalidWeekday)
}

func TestWeekdayConversions_Agree(t *testing.T) {
	// Every date converts to the same canonical weekday whichever numbering it came through
	for d := 0; d < 14; d++ {
		date := timetable.NewDate(2024, time.September, 1).AddDate(0, 0, d)
		sundayOneBased := int(date.Weekday()) + 1
		legacy, err := timetable.WeekdayFromSundayOneBased(sundayOneBased)
		require.NoError(t, err)
		assert.Equal(t, timetable.WeekdayOf(date), legacy, date.Format(timetable.DateLayout))
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := timetable.ParseWeekday(6)
	require.NoError(t, err)
	assert.Equal(t, timetable.Sunday, d)
	assert.Equal(t, "sunday", d.String())

	_, err = timetable.ParseWeekday(7)
	assert.ErrorIs(t, err, timetable.ErrInvalidWeekday)
}

func TestParseClock(t *testing.T) {
	c, err := timetable.ParseClock("08:05")
	require.NoError(t, err)
	assert.Equal(t, 8, c.Hour())
	assert.Equal(t, 5, c.Minute())
	assert.Equal(t, "08:05", c.String())

	c, err = timetable.ParseClock("13:30:00")
	require.NoError(t, err)
	assert.Equal(t, timetable.NewClockTime(13, 30), c)

	for _, bad := range []string{"", "8", "24:00", "12:60", "12:30:15", "ab:cd", "1:2:3:4"} {
		_, err := timetable.ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockTime_Sub(t *testing.T) {
	assert.Equal(t, 50*time.Minute, clock("08:50").Sub(clock("08:00")))
}

func TestOccurrence_Validate(t *testing.T) {
	o := lesson("t1", monday, "10:00", "09:00")
	err := o.Validate()

	var rangeErr *timetable.InvalidTimeRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.True(t, timetable.IsClientError(err))

	assert.NoError(t, lesson("t1", monday, "09:00", "09:00").Validate(), "start == end is allowed")
}

package factory_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcal/timetable-engine/factory"
	"github.com/schoolcal/timetable-engine/timetable"
)

func newFactory() *factory.GridFactory {
	f := factory.NewGridFactory()
	n := 0
	f.NewID = func() string {
		n++
		return fmt.Sprintf("slot-%d", n)
	}
	return f
}

func TestParseGrid_NumberedHours(t *testing.T) {
	slots, err := newFactory().ParseGrid(`{
		"school": "school-1",
		"school_year": "2024-25",
		"days": [{
			"week_day": 0,
			"hours": [
				{"hour_number": 2, "start": "09:00", "end": "10:00", "legal_duration_minutes": 55},
				{"hour_number": 1, "start": "08:00", "end": "09:00"}
			]
		}]
	}`)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, 1, slots[0].Ordinal)
	assert.Equal(t, time.Hour, slots[0].LegalDuration, "defaults to wall clock")
	assert.Equal(t, 2, slots[1].Ordinal)
	assert.Equal(t, 55*time.Minute, slots[1].LegalDuration)
	assert.Equal(t, timetable.Monday, slots[1].Day)
	assert.Equal(t, timetable.SchoolID("school-1"), slots[1].School)
}

func TestParseGrid_OrdinalsAssignedByStart(t *testing.T) {
	slots, err := newFactory().ParseGrid(`{
		"school": "s", "school_year": "y",
		"days": [{"week_day": 2, "hours": [
			{"start": "10:00", "end": "10:50", "legal_duration_minutes": 50.5},
			{"start": "08:00", "end": "09:00"},
			{"start": "09:00", "end": "10:00"}
		]}]
	}`)
	require.NoError(t, err)

	var starts []string
	for i, s := range slots {
		assert.Equal(t, i+1, s.Ordinal)
		starts = append(starts, s.Start.String())
	}
	assert.Equal(t, []string{"08:00", "09:00", "10:00"}, starts)
	assert.Equal(t, 50*time.Minute+30*time.Second, slots[2].LegalDuration)
	assert.Equal(t, timetable.SlotID("slot-1"), slots[2].ID, "IDs follow input order")
}

func TestParseGrid_SundayOneConvention(t *testing.T) {
	slots, err := newFactory().ParseGrid(`{
		"school": "s", "school_year": "y", "week_day_convention": "sunday_one",
		"days": [{"week_day": 2, "hours": [{"start": "08:00", "end": "09:00"}]}]
	}`)
	require.NoError(t, err)
	assert.Equal(t, timetable.Monday, slots[0].Day)
}

func TestParseGrid_Rejections(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"malformed json": {
			doc:  `{"school":`,
			want: timetable.ErrInvalidGrid,
		},
		"missing school": {
			doc:  `{"school_year": "y", "days": []}`,
			want: timetable.ErrInvalidGrid,
		},
		"weekday out of range": {
			doc:  `{"school": "s", "school_year": "y", "days": [{"week_day": 7, "hours": []}]}`,
			want: timetable.ErrInvalidWeekday,
		},
		"unknown convention": {
			doc:  `{"school": "s", "school_year": "y", "week_day_convention": "x", "days": [{"week_day": 1, "hours": []}]}`,
			want: timetable.ErrInvalidGrid,
		},
		"end before start": {
			doc:  `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [{"start": "10:00", "end": "09:00"}]}]}`,
			want: timetable.ErrInvalidTimeRange,
		},
		"bad clock": {
			doc:  `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [{"start": "8am", "end": "09:00"}]}]}`,
			want: timetable.ErrInvalidGrid,
		},
		"ordinals against start order": {
			doc: `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [
				{"hour_number": 1, "start": "09:00", "end": "10:00"},
				{"hour_number": 2, "start": "08:00", "end": "09:00"}]}]}`,
			want: timetable.ErrInvalidGrid,
		},
		"mixed numbering": {
			doc: `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [
				{"hour_number": 1, "start": "08:00", "end": "09:00"},
				{"start": "09:00", "end": "10:00"}]}]}`,
			want: timetable.ErrInvalidGrid,
		},
		"duplicate slot": {
			doc: `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [
				{"start": "08:00", "end": "09:00"},
				{"start": "08:00", "end": "09:00", "legal_duration_minutes": 45}]}]}`,
			want: timetable.ErrDuplicateSlot,
		},
		"negative legal duration": {
			doc:  `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [{"start": "08:00", "end": "09:00", "legal_duration_minutes": -5}]}]}`,
			want: timetable.ErrInvalidGrid,
		},
		"legal duration longer than a day": {
			doc:  `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [{"start": "08:00", "end": "09:00", "legal_duration_minutes": 200000000}]}]}`,
			want: timetable.ErrInvalidGrid,
		},
		"numbered hours sharing a start": {
			doc: `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [
				{"hour_number": 1, "start": "08:00", "end": "09:00"},
				{"hour_number": 2, "start": "08:00", "end": "08:50"}]}]}`,
			want: timetable.ErrInvalidGrid,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newFactory().ParseGrid(tc.doc)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, timetable.IsClientError(err) || timetable.IsConflict(err))
		})
	}
}

func TestToJSON_ReparsesToSameSlots(t *testing.T) {
	f := newFactory()
	slots, err := f.ParseGrid(`{
		"school": "s", "school_year": "y",
		"days": [
			{"week_day": 1, "hours": [{"start": "08:00", "end": "09:00", "legal_duration_minutes": 52.5}]},
			{"week_day": 0, "hours": [{"start": "08:00", "end": "09:00"}, {"start": "09:00", "end": "10:00"}]}
		]
	}`)
	require.NoError(t, err)

	doc, err := json.Marshal(f.ToJSON(slots))
	require.NoError(t, err)

	again, err := f.ParseGrid(string(doc))
	require.NoError(t, err)
	assert.Equal(t, slots, again)
}

func TestParseGrid_LegalDurationOfAFullDay(t *testing.T) {
	slots, err := newFactory().ParseGrid(`{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [
		{"start": "08:00", "end": "09:00", "legal_duration_minutes": 1440}]}]}`)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 24*time.Hour, slots[0].LegalDuration)
}

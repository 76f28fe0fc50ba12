/*
Package factory provides JSON to Go slot-grid conversion.

PURPOSE:
  Converts a school year's bell schedule, written as JSON, into validated
  timetable.Slot values. Secretaries maintain the schedule as a document;
  the factory turns it into the grid the engine indexes.

JSON SCHEMA:
  {
    "school": "liceo-galilei",
    "school_year": "2024-25",
    "week_day_convention": "monday_zero",
    "days": [
      {
        "week_day": 0,
        "hours": [
          {"hour_number": 1, "start": "08:00", "end": "09:00"},
          {"hour_number": 2, "start": "09:00", "end": "10:00", "legal_duration_minutes": 55},
          {"start": "10:00", "end": "10:50", "legal_duration_minutes": 50.5}
        ]
      }
    ]
  }

CONVENTIONS:
  week_day_convention selects how week_day is read:
    monday_zero (default): 0=Monday ... 6=Sunday
    sunday_one:            1=Sunday ... 7=Saturday
  hour_number is optional. When every hour of a day omits it, ordinals are
  assigned 1..n by start time. Mixing numbered and unnumbered hours in one
  day is rejected.
  legal_duration_minutes defaults to the wall-clock length and may be
  fractional; it is rounded to the second.

VALIDATION:
  - start must be strictly before end
  - ordinals must increase strictly with start time
  - the result is built into a SlotGrid, so duplicate (day, start, end)
    keys fail with timetable.DuplicateSlotError

USAGE:
  f := factory.NewGridFactory()
  slots, err := f.ParseGrid(jsonString)
  store.SaveSlots(ctx, slots)

SEE ALSO:
  - timetable/grid.go: SlotGrid and its invariants
  - api/handlers.go: POST /api/slots/import
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolcal/timetable-engine/timetable"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

const (
	ConventionMondayZero = "monday_zero"
	ConventionSundayOne  = "sunday_one"
)

// GridJSON is the JSON representation of a school year's slot grid.
type GridJSON struct {
	School            string    `json:"school"`
	SchoolYear        string    `json:"school_year"`
	WeekDayConvention string    `json:"week_day_convention,omitempty"`
	Days              []DayJSON `json:"days"`
}

// DayJSON lists the teaching hours of one weekday.
type DayJSON struct {
	WeekDay int        `json:"week_day"`
	Hours   []HourJSON `json:"hours"`
}

// HourJSON is one slot.
type HourJSON struct {
	ID                   string           `json:"id,omitempty"`
	HourNumber           *int             `json:"hour_number,omitempty"`
	Start                string           `json:"start"`
	End                  string           `json:"end"`
	LegalDurationMinutes *decimal.Decimal `json:"legal_duration_minutes,omitempty"`
}

// =============================================================================
// GRID FACTORY
// =============================================================================

// GridFactory converts JSON grids to slots.
type GridFactory struct {
	// NewID generates slot IDs for hours that carry none.
	NewID func() string
}

func NewGridFactory() *GridFactory {
	return &GridFactory{NewID: uuid.NewString}
}

// ParseGrid parses a JSON document into validated slots.
func (f *GridFactory) ParseGrid(jsonStr string) ([]timetable.Slot, error) {
	var gj GridJSON
	if err := json.Unmarshal([]byte(jsonStr), &gj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse grid JSON: %v", timetable.ErrInvalidGrid, err)
	}
	return f.FromJSON(gj)
}

// FromJSON converts GridJSON to slots, ordered by day then ordinal.
func (f *GridFactory) FromJSON(gj GridJSON) ([]timetable.Slot, error) {
	if gj.School == "" || gj.SchoolYear == "" {
		return nil, fmt.Errorf("%w: school and school_year are required", timetable.ErrInvalidGrid)
	}

	var slots []timetable.Slot
	for _, dj := range gj.Days {
		day, err := parseWeekDay(dj.WeekDay, gj.WeekDayConvention)
		if err != nil {
			return nil, err
		}
		daySlots, err := f.parseDay(gj, day, dj.Hours)
		if err != nil {
			return nil, err
		}
		slots = append(slots, daySlots...)
	}

	// Building the grid is the duplicate check
	if _, err := timetable.BuildSlotGrid(slots); err != nil {
		return nil, err
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return slots[i].Ordinal < slots[j].Ordinal
	})
	return slots, nil
}

func (f *GridFactory) parseDay(gj GridJSON, day timetable.Weekday, hours []HourJSON) ([]timetable.Slot, error) {
	numbered := 0
	slots := make([]timetable.Slot, 0, len(hours))
	for _, hj := range hours {
		start, err := timetable.ParseClock(hj.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", timetable.ErrInvalidGrid, day, err)
		}
		end, err := timetable.ParseClock(hj.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", timetable.ErrInvalidGrid, day, err)
		}
		if start >= end {
			return nil, &timetable.InvalidTimeRangeError{Start: start, End: end}
		}

		legal := end.Sub(start)
		if hj.LegalDurationMinutes != nil {
			legal, err = minutesToDuration(*hj.LegalDurationMinutes)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %s-%s: %v", timetable.ErrInvalidGrid, day, start, end, err)
			}
		}

		s := timetable.Slot{
			ID:            timetable.SlotID(hj.ID),
			School:        timetable.SchoolID(gj.School),
			SchoolYear:    timetable.SchoolYearID(gj.SchoolYear),
			Day:           day,
			Start:         start,
			End:           end,
			LegalDuration: legal,
		}
		if s.ID == "" {
			s.ID = timetable.SlotID(f.NewID())
		}
		if hj.HourNumber != nil {
			numbered++
			s.Ordinal = *hj.HourNumber
		}
		slots = append(slots, s)
	}

	if numbered != 0 && numbered != len(slots) {
		return nil, fmt.Errorf("%w: %s mixes numbered and unnumbered hours", timetable.ErrInvalidGrid, day)
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	for i := range slots {
		if numbered == 0 {
			slots[i].Ordinal = i + 1
			continue
		}
		if slots[i].Ordinal < 1 {
			return nil, fmt.Errorf("%w: %s hour_number %d must be positive", timetable.ErrInvalidGrid, day, slots[i].Ordinal)
		}
		if i > 0 && (slots[i].Ordinal <= slots[i-1].Ordinal || slots[i].Start == slots[i-1].Start) {
			return nil, fmt.Errorf("%w: %s hour_number %d at %s does not follow %d at %s",
				timetable.ErrInvalidGrid, day, slots[i].Ordinal, slots[i].Start, slots[i-1].Ordinal, slots[i-1].Start)
		}
	}
	return slots, nil
}

// ToJSON converts slots back to the canonical document. Slots must share a
// school year; hour numbers and legal durations are always written.
func (f *GridFactory) ToJSON(slots []timetable.Slot) GridJSON {
	gj := GridJSON{WeekDayConvention: ConventionMondayZero}
	if len(slots) == 0 {
		return gj
	}
	gj.School = string(slots[0].School)
	gj.SchoolYear = string(slots[0].SchoolYear)

	sorted := make([]timetable.Slot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Day != sorted[j].Day {
			return sorted[i].Day < sorted[j].Day
		}
		return sorted[i].Ordinal < sorted[j].Ordinal
	})

	for _, s := range sorted {
		if len(gj.Days) == 0 || gj.Days[len(gj.Days)-1].WeekDay != int(s.Day) {
			gj.Days = append(gj.Days, DayJSON{WeekDay: int(s.Day)})
		}
		ordinal := s.Ordinal
		minutes := decimal.NewFromInt(int64(s.LegalDuration / time.Second)).Div(decimal.NewFromInt(60))
		d := &gj.Days[len(gj.Days)-1]
		d.Hours = append(d.Hours, HourJSON{
			ID:                   string(s.ID),
			HourNumber:           &ordinal,
			Start:                s.Start.String(),
			End:                  s.End.String(),
			LegalDurationMinutes: &minutes,
		})
	}
	return gj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseWeekDay(n int, convention string) (timetable.Weekday, error) {
	switch convention {
	case "", ConventionMondayZero:
		return timetable.ParseWeekday(n)
	case ConventionSundayOne:
		return timetable.WeekdayFromSundayOneBased(n)
	default:
		return 0, fmt.Errorf("%w: unknown week_day_convention %q", timetable.ErrInvalidGrid, convention)
	}
}

// maxLegalMinutes caps a slot's legal duration at one day.
var maxLegalMinutes = decimal.NewFromInt(24 * 60)

func minutesToDuration(minutes decimal.Decimal) (time.Duration, error) {
	if minutes.IsNegative() {
		return 0, fmt.Errorf("legal_duration_minutes %s is negative", minutes)
	}
	if minutes.GreaterThan(maxLegalMinutes) {
		return 0, fmt.Errorf("legal_duration_minutes %s exceeds %s", minutes, maxLegalMinutes)
	}
	seconds := minutes.Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	return time.Duration(seconds) * time.Second, nil
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the timetable model from the external contract: weekdays travel as
  0=Monday ... 6=Sunday, clock times as "15:04", dates as "2006-01-02" and
  fractional hours as decimal strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Teachers:     TeacherDTO, CreateTeacherRequest
  Slots:        SlotDTO
  Assignments:  AssignmentDTO, CreateAssignmentRequest
  Substitutes:  SubstituteDTO, SubstitutesResponse
  Hours:        HoursDTO, RequiredHoursRequest
  Holidays:     HolidayDTO, CreateHolidayRequest
  Scenarios:    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/grid.go: Slot import document
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/schoolcal/timetable-engine/store/sqlite"
	"github.com/schoolcal/timetable-engine/timetable"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TeacherDTO represents a teacher in API responses.
type TeacherDTO struct {
	ID     string `json:"id"`
	School string `json:"school"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// CreateTeacherRequest is the request body for creating a teacher.
// A missing ID is generated.
type CreateTeacherRequest struct {
	ID     string `json:"id,omitempty"`
	School string `json:"school"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// SlotDTO represents one slot of a grid.
type SlotDTO struct {
	ID                   string          `json:"id"`
	School               string          `json:"school"`
	SchoolYear           string          `json:"school_year"`
	WeekDay              int             `json:"week_day"`
	WeekDayName          string          `json:"week_day_name"`
	HourNumber           int             `json:"hour_number"`
	Start                string          `json:"start"`
	End                  string          `json:"end"`
	LegalDurationMinutes decimal.Decimal `json:"legal_duration_minutes"`
}

// AssignmentDTO represents an assignment (a dated occurrence).
// HourSlot is the grid slot it falls on, null when off the grid.
type AssignmentDTO struct {
	ID           string  `json:"id"`
	Teacher      string  `json:"teacher"`
	Course       string  `json:"course"`
	Subject      string  `json:"subject"`
	School       string  `json:"school"`
	SchoolYear   string  `json:"school_year"`
	Date         string  `json:"date"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Kind         string  `json:"kind"`
	Substitution bool    `json:"substitution"`
	HourSlot     *string `json:"hour_slot"`
}

// CreateAssignmentRequest is the request body for creating an assignment.
type CreateAssignmentRequest struct {
	ID           string `json:"id,omitempty"`
	Teacher      string `json:"teacher"`
	Course       string `json:"course"`
	Subject      string `json:"subject"`
	School       string `json:"school"`
	SchoolYear   string `json:"school_year"`
	Date         string `json:"date"`  // YYYY-MM-DD
	Start        string `json:"start"` // HH:MM
	End          string `json:"end"`   // HH:MM
	Kind         string `json:"kind,omitempty"`
	Substitution bool   `json:"substitution,omitempty"`
}

// SubstituteDTO carries the screening signals for one candidate teacher.
type SubstituteDTO struct {
	Teacher                string `json:"teacher"`
	Name                   string `json:"name"`
	HasHourBefore          bool   `json:"has_hour_before"`
	HasHourAfter           bool   `json:"has_hour_after"`
	SubstitutionsMadeSoFar int    `json:"substitutions_made_so_far"`
}

// SubstitutesResponse is the screening result for one absence.
type SubstitutesResponse struct {
	Assignment AssignmentDTO   `json:"assignment"`
	Candidates []SubstituteDTO `json:"candidates"`
}

// HoursDTO is one required-hours row reconciled against the timetable.
// The *_bes fields are the special-kind counterparts.
type HoursDTO struct {
	Teacher             string          `json:"teacher"`
	Course              string          `json:"course"`
	Subject             string          `json:"subject"`
	School              string          `json:"school"`
	SchoolYear          string          `json:"school_year"`
	RequiredHours       int             `json:"required_hours"`
	RequiredHoursBES    int             `json:"required_hours_bes"`
	CreditedHours       decimal.Decimal `json:"credited_hours"`
	CreditedHoursBES    decimal.Decimal `json:"credited_hours_bes"`
	MissingHours        int             `json:"missing_hours"`
	MissingHoursBES     int             `json:"missing_hours_bes"`
	UnmatchedLessons    int             `json:"unmatched_lessons"`
	UnmatchedLessonsBES int             `json:"unmatched_lessons_bes"`
}

// RequiredHoursRequest creates or replaces a required-hours row.
type RequiredHoursRequest struct {
	Teacher    string `json:"teacher"`
	Course     string `json:"course"`
	Subject    string `json:"subject"`
	School     string `json:"school"`
	SchoolYear string `json:"school_year"`
	Hours      int    `json:"hours"`
	HoursBES   int    `json:"hours_bes"`
}

// HolidayDTO represents a holiday. When listed with a date filter the range
// is clipped to it.
type HolidayDTO struct {
	ID        string `json:"id"`
	School    string `json:"school"`
	Name      string `json:"name"`
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`
}

// CreateHolidayRequest is the request body for creating a holiday.
type CreateHolidayRequest struct {
	School    string `json:"school"`
	Name      string `json:"name"`
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTeacherDTO(t sqlite.Teacher) TeacherDTO {
	return TeacherDTO{
		ID:     string(t.ID),
		School: string(t.School),
		Name:   t.Name,
		Email:  t.Email,
	}
}

func toSlotDTO(s timetable.Slot) SlotDTO {
	seconds := decimal.NewFromInt(int64(s.LegalDuration / time.Second))
	return SlotDTO{
		ID:                   string(s.ID),
		School:               string(s.School),
		SchoolYear:           string(s.SchoolYear),
		WeekDay:              int(s.Day),
		WeekDayName:          s.Day.String(),
		HourNumber:           s.Ordinal,
		Start:                s.Start.String(),
		End:                  s.End.String(),
		LegalDurationMinutes: seconds.Div(decimal.NewFromInt(60)).Truncate(2),
	}
}

func toAssignmentDTO(o timetable.Occurrence, slot *timetable.SlotID) AssignmentDTO {
	dto := AssignmentDTO{
		ID:           string(o.ID),
		Teacher:      string(o.Teacher),
		Course:       string(o.Course),
		Subject:      string(o.Subject),
		School:       string(o.School),
		SchoolYear:   string(o.SchoolYear),
		Date:         o.Date.Format(timetable.DateLayout),
		Start:        o.Start.String(),
		End:          o.End.String(),
		Kind:         string(o.Kind),
		Substitution: o.Substitution,
	}
	if slot != nil {
		id := string(*slot)
		dto.HourSlot = &id
	}
	return dto
}

func toHoursDTO(report timetable.HoursReport) HoursDTO {
	r := report.Required
	return HoursDTO{
		Teacher:             string(r.Teacher),
		Course:              string(r.Course),
		Subject:             string(r.Subject),
		School:              string(r.School),
		SchoolYear:          string(r.SchoolYear),
		RequiredHours:       r.Regular,
		RequiredHoursBES:    r.Special,
		CreditedHours:       report.Regular.CreditedHours(),
		CreditedHoursBES:    report.Special.CreditedHours(),
		MissingHours:        report.MissingRegular(),
		MissingHoursBES:     report.MissingSpecial(),
		UnmatchedLessons:    report.Regular.Unmatched,
		UnmatchedLessonsBES: report.Special.Unmatched,
	}
}

// toHolidayDTO renders a holiday clipped to the window.
func toHolidayDTO(h sqlite.Holiday, window timetable.DateWindow) HolidayDTO {
	start, end := window.Clip(h.Start, h.End)
	return HolidayDTO{
		ID:        h.ID,
		School:    string(h.School),
		Name:      h.Name,
		DateStart: start.Format(timetable.DateLayout),
		DateEnd:   end.Format(timetable.DateLayout),
	}
}

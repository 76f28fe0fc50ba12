/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with a
	realistic school: a slot grid with reduced hours, teachers, required
	hours, two weeks of lessons and the school holidays.

AVAILABLE SCENARIOS:

	weekly-grid:       One class, three teachers, two weeks of lessons.
	                   Reduced 50-minute hours are credited as full hours;
	                   an afternoon lesson off the grid is credited at its
	                   wall-clock length.
	substitution-day:  weekly-grid plus an absence on Monday 7 October
	                   (assignment "absence-rossi-2024-10-07") with one
	                   candidate teaching the hour before, one the hour
	                   after, and a substitution history.

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Import the slot grid via factory
 3. Create teachers and required hours
 4. Create assignments

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "substitution-day"}

	GET /api/hours?school=liceo-galilei&school_year=2024-25
	GET /api/assignments/absence-rossi-2024-10-07/substitutes

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - factory/grid.go: Grid JSON format
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolcal/timetable-engine/store/sqlite"
	"github.com/schoolcal/timetable-engine/timetable"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const (
	demoSchool     = timetable.SchoolID("liceo-galilei")
	demoSchoolYear = timetable.SchoolYearID("2024-25")

	// AbsenceAssignmentID is the assignment screened in substitution-day.
	AbsenceAssignmentID = timetable.OccurrenceID("absence-rossi-2024-10-07")
)

var scenarios = []ScenarioDTO{
	{
		ID:          "weekly-grid",
		Name:        "Weekly Grid",
		Description: "One class, three teachers, two weeks of lessons with reduced hours and an off-grid afternoon lesson",
	},
	{
		ID:          "substitution-day",
		Name:        "Substitution Day",
		Description: "Weekly grid plus an absence with adjacent-hour candidates and a substitution history",
	},
}

// demoGridJSON: hours 3 and 5 are 50 minutes long but legally count as 60.
var demoGridJSON = func() string {
	hours := `[
		{"hour_number": 1, "start": "08:00", "end": "09:00"},
		{"hour_number": 2, "start": "09:00", "end": "10:00"},
		{"hour_number": 3, "start": "10:10", "end": "11:00", "legal_duration_minutes": 60},
		{"hour_number": 4, "start": "11:00", "end": "12:00"},
		{"hour_number": 5, "start": "12:00", "end": "12:50", "legal_duration_minutes": 60}
	]`
	doc := fmt.Sprintf(`{"school": %q, "school_year": %q, "days": [`, demoSchool, demoSchoolYear)
	for day := 0; day < 5; day++ {
		if day > 0 {
			doc += ","
		}
		doc += fmt.Sprintf(`{"week_day": %d, "hours": %s}`, day, hours)
	}
	return doc + "]}"
}()

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "weekly-grid":
		load = h.loadWeeklyGridScenario
	case "substitution-day":
		load = h.loadSubstitutionDayScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", req.ScenarioID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	h.currentScenario = ""
	if err := h.Store.Reset(ctx); err != nil {
		h.writeDomainError(w, "Failed to reset database", err)
		return
	}
	if err := load(ctx); err != nil {
		h.writeDomainError(w, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}
	h.currentScenario = req.ScenarioID
	h.Logger.Info("scenario loaded", zap.String("scenario", req.ScenarioID))

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

var demoTeachers = []sqlite.Teacher{
	{ID: "rossi", School: demoSchool, Name: "Maria Rossi", Email: "m.rossi@galilei.example.org"},
	{ID: "verdi", School: demoSchool, Name: "Luca Verdi", Email: "l.verdi@galilei.example.org"},
	{ID: "bianchi", School: demoSchool, Name: "Anna Bianchi"},
}

func (h *Handler) loadWeeklyGridScenario(ctx context.Context) error {
	slots, err := h.Grids.ParseGrid(demoGridJSON)
	if err != nil {
		return err
	}
	if err := h.Store.SaveSlots(ctx, slots); err != nil {
		return err
	}

	for _, t := range demoTeachers {
		if err := h.Store.SaveTeacher(ctx, t); err != nil {
			return err
		}
	}

	required := []timetable.RequiredHours{
		{Teacher: "rossi", Course: "3A", Subject: "math", Regular: 8, Special: 1},
		{Teacher: "verdi", Course: "3A", Subject: "italian", Regular: 7},
		{Teacher: "bianchi", Course: "3A", Subject: "english", Regular: 3},
	}
	for _, r := range required {
		r.School, r.SchoolYear = demoSchool, demoSchoolYear
		if err := h.Store.SaveRequiredHours(ctx, r); err != nil {
			return err
		}
	}

	// Two teaching weeks starting Monday 16 and 23 September 2024
	var lessons []timetable.Occurrence
	for _, monday := range []time.Time{
		timetable.NewDate(2024, time.September, 16),
		timetable.NewDate(2024, time.September, 23),
	} {
		lessons = append(lessons,
			demoLesson("rossi", "math", monday, "08:00", "09:00"),
			demoLesson("rossi", "math", monday.AddDate(0, 0, 1), "10:10", "11:00"),
			demoLesson("rossi", "math", monday.AddDate(0, 0, 2), "09:00", "10:00"),
			demoLesson("verdi", "italian", monday, "09:00", "10:00"),
			demoLesson("verdi", "italian", monday, "10:10", "11:00"),
			demoLesson("verdi", "italian", monday.AddDate(0, 0, 4), "11:00", "12:00"),
		)
	}
	special := demoLesson("rossi", "math", timetable.NewDate(2024, time.September, 19), "12:00", "12:50")
	special.Kind = timetable.KindSpecial
	lessons = append(lessons,
		special,
		demoLesson("verdi", "italian", timetable.NewDate(2024, time.September, 18), "14:00", "15:30"),
		demoLesson("bianchi", "english", timetable.NewDate(2024, time.September, 17), "08:00", "09:00"),
	)
	if err := h.saveLessons(ctx, lessons); err != nil {
		return err
	}

	holidays := []sqlite.Holiday{
		{ID: uuid.NewString(), School: demoSchool, Name: "Christmas break",
			Start: timetable.NewDate(2024, time.December, 23), End: timetable.NewDate(2025, time.January, 6)},
		{ID: uuid.NewString(), School: demoSchool, Name: "Easter break",
			Start: timetable.NewDate(2025, time.April, 17), End: timetable.NewDate(2025, time.April, 22)},
	}
	for _, hol := range holidays {
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadSubstitutionDayScenario(ctx context.Context) error {
	if err := h.loadWeeklyGridScenario(ctx); err != nil {
		return err
	}

	absenceDay := timetable.NewDate(2024, time.October, 7)
	absence := demoLesson("rossi", "math", absenceDay, "09:00", "10:00")
	absence.ID = AbsenceAssignmentID

	// verdi has covered twice already, bianchi never
	pastCover := func(date time.Time, start, end string) timetable.Occurrence {
		o := demoLesson("verdi", "math", date, start, end)
		o.Substitution = true
		return o
	}

	return h.saveLessons(ctx, []timetable.Occurrence{
		absence,
		demoLesson("bianchi", "english", absenceDay, "08:00", "09:00"),
		demoLesson("verdi", "italian", absenceDay, "10:10", "11:00"),
		pastCover(timetable.NewDate(2024, time.September, 30), "08:00", "09:00"),
		pastCover(timetable.NewDate(2024, time.October, 2), "11:00", "12:00"),
	})
}

func (h *Handler) saveLessons(ctx context.Context, lessons []timetable.Occurrence) error {
	for _, o := range lessons {
		if err := h.Store.SaveOccurrence(ctx, o); err != nil {
			return fmt.Errorf("lesson %s %s %s: %w", o.Teacher, o.Date.Format(timetable.DateLayout), o.Start, err)
		}
	}
	return nil
}

func demoLesson(teacher timetable.TeacherID, subject timetable.SubjectID, date time.Time, start, end string) timetable.Occurrence {
	return timetable.Occurrence{
		ID:         timetable.OccurrenceID(uuid.NewString()),
		Teacher:    teacher,
		Course:     "3A",
		Subject:    subject,
		School:     demoSchool,
		SchoolYear: demoSchoolYear,
		Date:       date,
		Start:      timetable.MustParseClock(start),
		End:        timetable.MustParseClock(end),
		Kind:       timetable.KindRegular,
	}
}

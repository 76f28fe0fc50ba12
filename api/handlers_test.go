/*
handlers_test.go - HTTP tests for the API handlers

Requests go through the real chi router against an in-memory SQLite store.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcal/timetable-engine/config"
)

func setupRouter(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	h := setupTestHandler(t)
	return h, NewRouter(h, config.ServerConfig{CORS: config.CORSConfig{AllowOrigins: []string{"*"}}})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func loadScenario(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// =============================================================================
// HOURS
// =============================================================================

func TestListHours_ReportsMissingHours(t *testing.T) {
	// GIVEN: The weekly-grid scenario
	// WHEN: GET /api/hours for the school year
	// THEN: missing_hours / missing_hours_bes per required row

	_, router := setupRouter(t)
	loadScenario(t, router, "weekly-grid")

	rec := do(t, router, http.MethodGet, "/api/hours?school=liceo-galilei&school_year=2024-25&teacher=rossi", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	hours := decode[[]map[string]any](t, rec)
	require.Len(t, hours, 1)
	assert.Equal(t, "rossi", hours[0]["teacher"])
	assert.Equal(t, float64(2), hours[0]["missing_hours"])
	assert.Equal(t, float64(0), hours[0]["missing_hours_bes"])
	assert.Equal(t, "6", hours[0]["credited_hours"])
}

func TestListHours_DateWindow(t *testing.T) {
	_, router := setupRouter(t)
	loadScenario(t, router, "weekly-grid")

	// First week only: rossi has 3 of 8 hours
	rec := do(t, router, http.MethodGet,
		"/api/hours?school=liceo-galilei&school_year=2024-25&teacher=rossi&start_date=2024-09-16&end_date=2024-09-22", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hours := decode[[]HoursDTO](t, rec)
	require.Len(t, hours, 1)
	assert.Equal(t, 5, hours[0].MissingHours)
}

func TestListHours_BadRequests(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/hours?school=liceo-galilei", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/hours?school=s&school_year=y&start_date=2025-02-01&end_date=2025-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveRequiredHours(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/hours", RequiredHoursRequest{
		Teacher: "t1", Course: "3A", Subject: "math", School: "s", SchoolYear: "y", Hours: 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/hours?school=s&school_year=y", nil)
	hours := decode[[]HoursDTO](t, rec)
	require.Len(t, hours, 1)
	assert.Equal(t, 2, hours[0].MissingHours, "no lessons, no grid")

	rec = do(t, router, http.MethodPost, "/api/hours", RequiredHoursRequest{
		Teacher: "t1", Course: "3A", Subject: "math", School: "s", SchoolYear: "y", Hours: -1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SLOTS & ASSIGNMENTS
// =============================================================================

const smallGrid = `{
	"school": "s", "school_year": "y",
	"days": [{"week_day": 0, "hours": [
		{"start": "08:00", "end": "09:00"},
		{"start": "09:00", "end": "10:00", "legal_duration_minutes": 55}
	]}]
}`

func TestImportSlots(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/slots/import", smallGrid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/slots?school=s&school_year=y", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decode[[]SlotDTO](t, rec)
	require.Len(t, slots, 2)
	assert.Equal(t, "monday", slots[1].WeekDayName)
	assert.Equal(t, 2, slots[1].HourNumber)
	assert.Equal(t, "55", slots[1].LegalDurationMinutes.String())
}

func TestImportSlots_Errors(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/slots/import", `{"school": "s", "school_year": "y", "days": [{"week_day": 0, "hours": [
		{"start": "08:00", "end": "09:00"}, {"start": "08:00", "end": "09:00"}]}]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/slots/import", `{"school": "s", "school_year": "y", "days": [{"week_day": 9, "hours": []}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.NotEmpty(t, errResp.Details)
}

func TestCreateAssignment_AndListWithHourSlot(t *testing.T) {
	h, router := setupRouter(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/slots/import", smallGrid).Code)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/teachers",
		CreateTeacherRequest{ID: "t1", School: "s", Name: "Rossi"}).Code)

	onGrid := CreateAssignmentRequest{
		ID: "a1", Teacher: "t1", Course: "3A", Subject: "math", School: "s", SchoolYear: "y",
		Date: "2024-09-16", Start: "09:00", End: "10:00",
	}
	rec := do(t, router, http.MethodPost, "/api/assignments", onGrid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[AssignmentDTO](t, rec)
	require.NotNil(t, created.HourSlot)
	assert.Equal(t, "regular", created.Kind)

	offGrid := onGrid
	offGrid.ID, offGrid.Start, offGrid.End = "a2", "14:00", "15:00"
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/assignments", offGrid).Code)

	rec = do(t, router, http.MethodGet, "/api/assignments?school=s&school_year=y&teacher=t1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]AssignmentDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, created.HourSlot, list[0].HourSlot)
	assert.Nil(t, list[1].HourSlot)

	stored, err := h.Store.GetOccurrence(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.Start.String())
}

func TestCreateAssignment_Validation(t *testing.T) {
	_, router := setupRouter(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/teachers",
		CreateTeacherRequest{ID: "t1", School: "s", Name: "Rossi"}).Code)

	base := CreateAssignmentRequest{
		Teacher: "t1", Course: "3A", Subject: "math", School: "s", SchoolYear: "y",
		Date: "2024-09-16", Start: "09:00", End: "10:00",
	}

	inverted := base
	inverted.Start, inverted.End = "10:00", "09:00"
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/assignments", inverted).Code)

	badKind := base
	badKind.Kind = "weekend"
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/assignments", badKind).Code)

	otherSchool := base
	otherSchool.School = "s2"
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/assignments", otherSchool).Code)

	unknown := base
	unknown.Teacher = "ghost"
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/api/assignments", unknown).Code)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/assignments", "{").Code)
}

// =============================================================================
// SUBSTITUTES
// =============================================================================

func TestListSubstitutes(t *testing.T) {
	// GIVEN: The substitution-day scenario
	// WHEN: Screening substitutes for the absence
	// THEN: The absent teacher is excluded; adjacency and load come back per candidate

	_, router := setupRouter(t)
	loadScenario(t, router, "substitution-day")

	rec := do(t, router, http.MethodGet, "/api/assignments/"+string(AbsenceAssignmentID)+"/substitutes", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[SubstitutesResponse](t, rec)
	assert.Equal(t, "rossi", resp.Assignment.Teacher)
	assert.Equal(t, []SubstituteDTO{
		{Teacher: "bianchi", Name: "Anna Bianchi", HasHourBefore: true, HasHourAfter: false, SubstitutionsMadeSoFar: 0},
		{Teacher: "verdi", Name: "Luca Verdi", HasHourBefore: false, HasHourAfter: true, SubstitutionsMadeSoFar: 2},
	}, resp.Candidates)
}

func TestListSubstitutes_UnknownAssignment(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/assignments/nope/substitutes", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// TEACHERS, HOLIDAYS, SCENARIOS
// =============================================================================

func TestTeachers(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/teachers", CreateTeacherRequest{School: "s", Name: "  Verdi "})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[TeacherDTO](t, rec)
	assert.NotEmpty(t, created.ID, "generated")
	assert.Equal(t, "Verdi", created.Name)

	rec = do(t, router, http.MethodGet, "/api/teachers?school=s", nil)
	assert.Len(t, decode[[]TeacherDTO](t, rec), 1)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/teachers", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/teachers", CreateTeacherRequest{School: "s"}).Code)
}

func TestListHolidays_ClippedToFilter(t *testing.T) {
	// GIVEN: Christmas break 23 Dec - 6 Jan
	// WHEN: Listing with a 1-31 January filter
	// THEN: Displayed as 1 Jan - 6 Jan

	_, router := setupRouter(t)
	loadScenario(t, router, "weekly-grid")

	rec := do(t, router, http.MethodGet, "/api/holidays?school=liceo-galilei&from_date=2025-01-01&to_date=2025-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	holidays := decode[[]HolidayDTO](t, rec)
	require.Len(t, holidays, 1)
	assert.Equal(t, "2025-01-01", holidays[0].DateStart)
	assert.Equal(t, "2025-01-06", holidays[0].DateEnd)

	rec = do(t, router, http.MethodGet, "/api/holidays?school=liceo-galilei", nil)
	assert.Len(t, decode[[]HolidayDTO](t, rec), 2)
}

func TestCreateHoliday(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/holidays", CreateHolidayRequest{
		School: "s", Name: "Carnival", DateStart: "2025-03-03", DateEnd: "2025-03-04",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/holidays", CreateHolidayRequest{
		School: "s", Name: "Backwards", DateStart: "2025-03-04", DateEnd: "2025-03-03",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenarios(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), 2)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	loadScenario(t, router, "weekly-grid")
	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "weekly-grid", decode[ScenarioDTO](t, rec).ID)
}

func TestHealth(t *testing.T) {
	_, router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

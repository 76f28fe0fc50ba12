/*
handlers.go - HTTP API handlers for the timetable engine

PURPOSE:
  Exposes the hour reconciliation and substitute screening of the
  timetable engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to timetable.Engine and the SQLite store.

ENDPOINTS:
  Teachers:
    GET    /api/teachers?school=                   List a school's teachers
    POST   /api/teachers                           Create teacher

  Slots:
    GET    /api/slots?school=&school_year=         The slot grid
    POST   /api/slots/import                       Replace a grid from JSON

  Assignments:
    GET    /api/assignments?school=&school_year=   List, with hour_slot
           [&teacher=&start_date=&end_date=]
    POST   /api/assignments                        Create assignment
    GET    /api/assignments/{id}/substitutes       Screen substitutes

  Hours:
    GET    /api/hours?school=&school_year=         Missing hours per row
           [&teacher=&start_date=&end_date=]
    POST   /api/hours                              Create/replace required hours

  Holidays:
    GET    /api/holidays?school=[&from_date=&to_date=]
    POST   /api/holidays

  Scenarios:
    GET    /api/scenarios                          List demo scenarios
    POST   /api/scenarios/load                     Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access and writes
  - Engine: Batched reads + the pure timetable computations
  - Grids: JSON to slot grid conversion

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, malformed grids
  - 404: Teacher or assignment not found
  - 409: Duplicate slot in a grid
  - 500: Internal errors (logged)

SECURITY NOTE:
  No authentication or per-school authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolcal/timetable-engine/factory"
	"github.com/schoolcal/timetable-engine/store/sqlite"
	"github.com/schoolcal/timetable-engine/timetable"
)

// maxGridDocument bounds POST /api/slots/import bodies.
const maxGridDocument = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *timetable.Engine
	Grids  *factory.GridFactory
	Logger *zap.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:  store,
		Engine: timetable.NewEngine(store, store, logger.Named("engine")),
		Grids:  factory.NewGridFactory(),
		Logger: logger,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// TEACHER HANDLERS
// =============================================================================

// ListTeachers returns the teachers of a school.
func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	q, err := requireQuery(r, "school")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing query parameter", err)
		return
	}

	teachers, err := h.Store.ListTeachers(r.Context(), timetable.SchoolID(q["school"]))
	if err != nil {
		h.writeDomainError(w, "Failed to list teachers", err)
		return
	}

	dtos := make([]TeacherDTO, len(teachers))
	for i, t := range teachers {
		dtos[i] = toTeacherDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTeacher creates or updates a teacher.
func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req CreateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.School == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "school and name are required", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	teacher := sqlite.Teacher{
		ID:     timetable.TeacherID(req.ID),
		School: timetable.SchoolID(req.School),
		Name:   strings.TrimSpace(req.Name),
		Email:  req.Email,
	}
	if err := h.Store.SaveTeacher(r.Context(), teacher); err != nil {
		h.writeDomainError(w, "Failed to create teacher", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTeacherDTO(teacher))
}

// =============================================================================
// SLOT HANDLERS
// =============================================================================

// ListSlots returns the slot grid of a school year.
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	q, err := requireQuery(r, "school", "school_year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing query parameter", err)
		return
	}

	slots, err := h.Store.ListSlots(r.Context(), timetable.SchoolID(q["school"]), timetable.SchoolYearID(q["school_year"]))
	if err != nil {
		h.writeDomainError(w, "Failed to list slots", err)
		return
	}

	dtos := make([]SlotDTO, len(slots))
	for i, s := range slots {
		dtos[i] = toSlotDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ImportSlots replaces a school year's grid with the posted grid document.
func (h *Handler) ImportSlots(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxGridDocument))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	slots, err := h.Grids.ParseGrid(string(body))
	if err != nil {
		h.writeDomainError(w, "Invalid slot grid", err)
		return
	}
	if err := h.Store.SaveSlots(r.Context(), slots); err != nil {
		h.writeDomainError(w, "Failed to save slot grid", err)
		return
	}

	dtos := make([]SlotDTO, len(slots))
	for i, s := range slots {
		dtos[i] = toSlotDTO(s)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// ListAssignments lists a school year's assignments, each with the grid slot
// it falls on. One grid build serves the whole listing.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	q, err := requireQuery(r, "school", "school_year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing query parameter", err)
		return
	}
	window, err := timetable.ParseDateWindow(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date filter", err)
		return
	}

	filter := timetable.OccurrenceFilter{
		School:     timetable.SchoolID(q["school"]),
		SchoolYear: timetable.SchoolYearID(q["school_year"]),
		Window:     window,
	}
	if teacher := r.URL.Query().Get("teacher"); teacher != "" {
		filter.Teacher = timetable.Ptr(timetable.TeacherID(teacher))
	}

	ctx := r.Context()
	occurrences, err := h.Store.ListOccurrences(ctx, filter)
	if err != nil {
		h.writeDomainError(w, "Failed to list assignments", err)
		return
	}
	slots, err := h.Engine.ResolveSlots(ctx, occurrences)
	if err != nil {
		h.writeDomainError(w, "Failed to resolve hour slots", err)
		return
	}

	dtos := make([]AssignmentDTO, len(occurrences))
	for i, o := range occurrences {
		var slot *timetable.SlotID
		if id, ok := slots[o.ID]; ok {
			slot = &id
		}
		dtos[i] = toAssignmentDTO(o, slot)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAssignment validates and stores an assignment.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	o, err := parseAssignment(req)
	if err != nil {
		h.writeDomainError(w, "Invalid assignment", err)
		return
	}

	ctx := r.Context()
	teacher, err := h.Store.GetTeacher(ctx, o.Teacher)
	if err != nil {
		h.writeDomainError(w, "Unknown teacher", err)
		return
	}
	if teacher.School != o.School {
		writeError(w, http.StatusBadRequest, "Teacher belongs to another school",
			fmt.Sprintf("teacher %s teaches at %s, not %s", teacher.ID, teacher.School, o.School))
		return
	}

	if err := h.Store.SaveOccurrence(ctx, o); err != nil {
		h.writeDomainError(w, "Failed to create assignment", err)
		return
	}

	var slot *timetable.SlotID
	if resolved, err := h.Engine.ResolveSlots(ctx, []timetable.Occurrence{o}); err == nil {
		if id, ok := resolved[o.ID]; ok {
			slot = &id
		}
	} else {
		h.Logger.Warn("assignment stored but slot unresolved", zap.String("assignment", string(o.ID)), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(o, slot))
}

// ListSubstitutes screens every other teacher of the school as a substitute
// for the given assignment.
func (h *Handler) ListSubstitutes(w http.ResponseWriter, r *http.Request) {
	id := timetable.OccurrenceID(chi.URLParam(r, "id"))
	ctx := r.Context()

	target, err := h.Store.GetOccurrence(ctx, id)
	if err != nil {
		h.writeDomainError(w, "Assignment not found", err)
		return
	}

	teachers, err := h.Store.ListTeachers(ctx, target.School)
	if err != nil {
		h.writeDomainError(w, "Failed to list teachers", err)
		return
	}
	names := make(map[timetable.TeacherID]string, len(teachers))
	candidates := make([]timetable.TeacherID, 0, len(teachers))
	for _, t := range teachers {
		if t.ID == target.Teacher {
			continue
		}
		names[t.ID] = t.Name
		candidates = append(candidates, t.ID)
	}

	signals, err := h.Engine.ScreenOccurrence(ctx, target, candidates)
	if err != nil {
		h.writeDomainError(w, "Failed to screen substitutes", err)
		return
	}

	resp := SubstitutesResponse{
		Assignment: toAssignmentDTO(target, nil),
		Candidates: make([]SubstituteDTO, len(signals)),
	}
	for i, s := range signals {
		resp.Candidates[i] = SubstituteDTO{
			Teacher:                string(s.Teacher),
			Name:                   names[s.Teacher],
			HasHourBefore:          s.HasHourBefore,
			HasHourAfter:           s.HasHourAfter,
			SubstitutionsMadeSoFar: s.SubstitutionsSoFar,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HOURS HANDLERS
// =============================================================================

// ListHours reconciles every matching required-hours row against the
// timetable, one grid per school year.
func (h *Handler) ListHours(w http.ResponseWriter, r *http.Request) {
	q, err := requireQuery(r, "school", "school_year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing query parameter", err)
		return
	}
	window, err := timetable.ParseDateWindow(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date filter", err)
		return
	}

	filter := timetable.RequiredHoursFilter{
		School:     timetable.SchoolID(q["school"]),
		SchoolYear: timetable.Ptr(timetable.SchoolYearID(q["school_year"])),
	}
	if teacher := r.URL.Query().Get("teacher"); teacher != "" {
		filter.Teacher = timetable.Ptr(timetable.TeacherID(teacher))
	}

	ctx := r.Context()
	rows, err := h.Store.ListRequiredHours(ctx, filter)
	if err != nil {
		h.writeDomainError(w, "Failed to list required hours", err)
		return
	}
	reports, err := h.Engine.HoursReports(ctx, rows, window)
	if err != nil {
		h.writeDomainError(w, "Failed to compute hours", err)
		return
	}

	dtos := make([]HoursDTO, len(reports))
	for i, report := range reports {
		dtos[i] = toHoursDTO(report)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveRequiredHours creates or replaces a required-hours row.
func (h *Handler) SaveRequiredHours(w http.ResponseWriter, r *http.Request) {
	var req RequiredHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Teacher == "" || req.Course == "" || req.Subject == "" || req.School == "" || req.SchoolYear == "" {
		writeError(w, http.StatusBadRequest, "teacher, course, subject, school and school_year are required", nil)
		return
	}
	if req.Hours < 0 || req.HoursBES < 0 {
		writeError(w, http.StatusBadRequest, "hours must not be negative", nil)
		return
	}

	row := timetable.RequiredHours{
		Teacher:    timetable.TeacherID(req.Teacher),
		Course:     timetable.CourseID(req.Course),
		Subject:    timetable.SubjectID(req.Subject),
		School:     timetable.SchoolID(req.School),
		SchoolYear: timetable.SchoolYearID(req.SchoolYear),
		Regular:    req.Hours,
		Special:    req.HoursBES,
	}
	if err := h.Store.SaveRequiredHours(r.Context(), row); err != nil {
		h.writeDomainError(w, "Failed to save required hours", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns a school's holidays overlapping the date filter,
// clipped to it.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	q, err := requireQuery(r, "school")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing query parameter", err)
		return
	}
	window, err := timetable.ParseDateWindow(r.URL.Query().Get("from_date"), r.URL.Query().Get("to_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date filter", err)
		return
	}

	holidays, err := h.Store.ListHolidays(r.Context(), timetable.SchoolID(q["school"]), window)
	if err != nil {
		h.writeDomainError(w, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayDTO(hol, window)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday creates a holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.School == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "school and name are required", nil)
		return
	}
	start, err := timetable.ParseDate(req.DateStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_start format (use YYYY-MM-DD)", err)
		return
	}
	end, err := timetable.ParseDate(req.DateEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_end format (use YYYY-MM-DD)", err)
		return
	}

	holiday := sqlite.Holiday{
		ID:     uuid.NewString(),
		School: timetable.SchoolID(req.School),
		Name:   req.Name,
		Start:  start,
		End:    end,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.writeDomainError(w, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday, timetable.DateWindow{}))
}

// =============================================================================
// HELPERS
// =============================================================================

func parseAssignment(req CreateAssignmentRequest) (timetable.Occurrence, error) {
	if req.Teacher == "" || req.Course == "" || req.Subject == "" || req.School == "" || req.SchoolYear == "" {
		return timetable.Occurrence{}, errMissingFields
	}
	date, err := timetable.ParseDate(req.Date)
	if err != nil {
		return timetable.Occurrence{}, fmt.Errorf("%w: date: %v", errInvalidInput, err)
	}
	start, err := timetable.ParseClock(req.Start)
	if err != nil {
		return timetable.Occurrence{}, fmt.Errorf("%w: start: %v", errInvalidInput, err)
	}
	end, err := timetable.ParseClock(req.End)
	if err != nil {
		return timetable.Occurrence{}, fmt.Errorf("%w: end: %v", errInvalidInput, err)
	}

	kind := timetable.Kind(req.Kind)
	switch kind {
	case "":
		kind = timetable.KindRegular
	case timetable.KindRegular, timetable.KindSpecial:
	default:
		return timetable.Occurrence{}, fmt.Errorf("%w: kind must be %q or %q", errInvalidInput, timetable.KindRegular, timetable.KindSpecial)
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	o := timetable.Occurrence{
		ID:           timetable.OccurrenceID(id),
		Teacher:      timetable.TeacherID(req.Teacher),
		Course:       timetable.CourseID(req.Course),
		Subject:      timetable.SubjectID(req.Subject),
		School:       timetable.SchoolID(req.School),
		SchoolYear:   timetable.SchoolYearID(req.SchoolYear),
		Date:         date,
		Start:        start,
		End:          end,
		Kind:         kind,
		Substitution: req.Substitution,
	}
	return o, o.Validate()
}

var (
	errInvalidInput  = errors.New("invalid input")
	errMissingFields = fmt.Errorf("%w: teacher, course, subject, school and school_year are required", errInvalidInput)
)

// requireQuery returns the named query parameters, failing on the first missing one.
func requireQuery(r *http.Request, names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	for _, name := range names {
		v := strings.TrimSpace(r.URL.Query().Get(name))
		if v == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
		values[name] = v
	}
	return values, nil
}

// writeDomainError maps timetable and store errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, errInvalidInput), timetable.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case timetable.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case timetable.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, details any) {
	resp := ErrorResponse{Error: message}
	switch d := details.(type) {
	case nil:
	case error:
		resp.Details = d.Error()
	default:
		resp.Details = d
	}
	writeJSON(w, status, resp)
}

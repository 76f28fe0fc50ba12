/*
errors.go - Error types for the timetable engine

PURPOSE:
  All error types in one place. Callers branch with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Grid errors - A slot grid that cannot be indexed
  2. Validation errors - Malformed occurrences, weekdays, windows
  3. Lookup errors - Missing occurrences or teachers in a repository

NOT ERRORS:
  Adjacency questions that cannot be answered (off-grid target, gap in the
  grid) resolve to false. See adjacency.go.

SEE ALSO:
  - grid.go: Raises DuplicateSlotError
  - api/handlers.go: Maps errors to HTTP status codes
*/
package timetable

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateSlot is returned when two slots share (day, start, end) in one grid.
	ErrDuplicateSlot = errors.New("duplicate slot in grid")

	// ErrInvalidGrid is returned for slot definitions that break grid invariants.
	ErrInvalidGrid = errors.New("invalid slot grid")

	ErrInvalidTimeRange = errors.New("invalid time range: start after end")
	ErrInvalidWeekday   = errors.New("invalid weekday")
	ErrInvalidPeriod    = errors.New("invalid period: end before start")

	ErrOccurrenceNotFound = errors.New("occurrence not found")
	ErrTeacherNotFound    = errors.New("teacher not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DuplicateSlotError names the composite key that appeared twice.
type DuplicateSlotError struct {
	School     SchoolID
	SchoolYear SchoolYearID
	Day        Weekday
	Start      ClockTime
	End        ClockTime
}

func (e *DuplicateSlotError) Error() string {
	return fmt.Sprintf("duplicate slot %s %s-%s (school %s, year %s)",
		e.Day, e.Start, e.End, e.School, e.SchoolYear)
}

func (e *DuplicateSlotError) Unwrap() error { return ErrDuplicateSlot }

// InvalidTimeRangeError is returned when an occurrence or slot starts after it ends.
type InvalidTimeRangeError struct {
	Start ClockTime
	End   ClockTime
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("start %s is after end %s", e.Start, e.End)
}

func (e *InvalidTimeRangeError) Unwrap() error { return ErrInvalidTimeRange }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidWeekday) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidGrid)
}

// IsConflict returns true if the error reports a clash with existing data.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateSlot)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOccurrenceNotFound) ||
		errors.Is(err, ErrTeacherNotFound)
}

/*
Package timetable provides the hour-accounting and substitution engine.

PURPOSE:
  This package reconciles dated teaching occurrences against the recurring
  slot grid of a school year. It answers two questions:
  - How many hours has a teacher been credited with, against a target?
  - Is a teacher a good substitute for a specific missed class?

KEY CONCEPTS IN THIS FILE (types.go):
  - Slot: A recurring weekly period with an ordinal and a legal duration
  - Occurrence: A concrete, dated teaching event (an "assignment")
  - RequiredHours: Regular and special-needs targets per teacher/course/subject
  - Identifiers: Type-safe IDs for schools, years, teachers, courses, subjects

DESIGN PRINCIPLES:
  1. Read-only: The engine never mutates slots or occurrences
  2. Batched: One SlotGrid per (school, school year) per request
  3. Conservative: "Cannot determine" answers false, never an error
  4. Explicit weekdays: One canonical Weekday, converted at every boundary

USAGE:
  grid, err := timetable.BuildSlotGrid(slots)
  missing := timetable.MissingHours(required.Regular, occurrences, grid)

SEE ALSO:
  - grid.go: Slot grid index
  - hours.go: Hour reconciliation
  - adjacency.go: Adjacent-slot resolution
  - substitution.go: Substitution load counting
  - engine.go: Repository-backed orchestration
*/
package timetable

import (
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SchoolID string
type SchoolYearID string
type TeacherID string
type CourseID string
type SubjectID string
type SlotID string
type OccurrenceID string

// =============================================================================
// KIND - Regular teaching vs special-needs support
// =============================================================================

type Kind string

const (
	KindRegular Kind = "regular"
	KindSpecial Kind = "special" // special educational needs ("BES")
)

// =============================================================================
// SLOT - Recurring grid period
// =============================================================================

// Slot is one period of the weekly grid of a school year.
// Within a (school, school year, day), ordinals are unique and increase with Start.
type Slot struct {
	ID            SlotID
	School        SchoolID
	SchoolYear    SchoolYearID
	Day           Weekday
	Start         ClockTime
	End           ClockTime
	Ordinal       int
	LegalDuration time.Duration
}

// =============================================================================
// OCCURRENCE - Dated teaching event
// =============================================================================

// Occurrence is an actual scheduled lesson. It may or may not line up with a Slot;
// the match is by value on (weekday, start, end), never by reference.
type Occurrence struct {
	ID           OccurrenceID
	Teacher      TeacherID
	Course       CourseID
	Subject      SubjectID
	School       SchoolID
	SchoolYear   SchoolYearID
	Date         time.Time
	Start        ClockTime
	End          ClockTime
	Kind         Kind
	Substitution bool
}

// Day returns the canonical weekday of the occurrence date.
func (o Occurrence) Day() Weekday { return WeekdayOf(o.Date) }

// Elapsed is the wall-clock length of the occurrence.
func (o Occurrence) Elapsed() time.Duration { return o.End.Sub(o.Start) }

// Validate checks Start <= End.
func (o Occurrence) Validate() error {
	if o.Start > o.End {
		return &InvalidTimeRangeError{Start: o.Start, End: o.End}
	}
	return nil
}

// =============================================================================
// REQUIRED HOURS - Targets per teacher in a class
// =============================================================================

// RequiredHours holds the contractual totals for a teacher teaching a subject in a course.
type RequiredHours struct {
	Teacher    TeacherID
	Course     CourseID
	Subject    SubjectID
	School     SchoolID
	SchoolYear SchoolYearID
	Regular    int
	Special    int
}

// Target returns the required total for the given kind.
func (r RequiredHours) Target(kind Kind) int {
	if kind == KindSpecial {
		return r.Special
	}
	return r.Regular
}

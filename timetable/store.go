/*
store.go - Read-only repository interfaces consumed by the engine

PURPOSE:
  Defines what the engine needs from persistence. The engine only reads;
  writes belong to the scheduling workflows around it.

KEY INTERFACES:
  SlotRepository:          The slot grid of a (school, school year)
  OccurrenceRepository:    Filtered occurrence listing + lookup by ID
  RequiredHoursRepository: Required totals per teacher/course/subject

ERRORS:
  Repository errors are returned to callers unchanged. Whether a failure is
  fatal or retryable is the caller's call.

IMPLEMENTATIONS:
  - timetable/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go: SQLite
*/
package timetable

import "context"

// =============================================================================
// FILTERS
// =============================================================================

// OccurrenceFilter selects occurrences. School and SchoolYear are required;
// nil fields do not constrain.
type OccurrenceFilter struct {
	School       SchoolID
	SchoolYear   SchoolYearID
	Teacher      *TeacherID
	Course       *CourseID
	Subject      *SubjectID
	Kind         *Kind
	Substitution *bool
	Window       DateWindow
}

// Matches applies the filter in memory.
func (f OccurrenceFilter) Matches(o Occurrence) bool {
	if o.School != f.School || o.SchoolYear != f.SchoolYear {
		return false
	}
	if f.Teacher != nil && o.Teacher != *f.Teacher {
		return false
	}
	if f.Course != nil && o.Course != *f.Course {
		return false
	}
	if f.Subject != nil && o.Subject != *f.Subject {
		return false
	}
	if f.Kind != nil && o.Kind != *f.Kind {
		return false
	}
	if f.Substitution != nil && o.Substitution != *f.Substitution {
		return false
	}
	return f.Window.Contains(o.Date)
}

// RequiredHoursFilter selects RequiredHours rows. Nil fields do not constrain.
type RequiredHoursFilter struct {
	School     SchoolID
	SchoolYear *SchoolYearID
	Teacher    *TeacherID
}

func (f RequiredHoursFilter) Matches(r RequiredHours) bool {
	if r.School != f.School {
		return false
	}
	if f.SchoolYear != nil && r.SchoolYear != *f.SchoolYear {
		return false
	}
	return f.Teacher == nil || r.Teacher == *f.Teacher
}

// =============================================================================
// REPOSITORIES
// =============================================================================

type SlotRepository interface {
	// ListSlots returns every slot of the school year's grid.
	ListSlots(ctx context.Context, school SchoolID, year SchoolYearID) ([]Slot, error)
}

type OccurrenceRepository interface {
	ListOccurrences(ctx context.Context, filter OccurrenceFilter) ([]Occurrence, error)

	// GetOccurrence returns ErrOccurrenceNotFound (possibly wrapped) when absent.
	GetOccurrence(ctx context.Context, id OccurrenceID) (Occurrence, error)
}

type RequiredHoursRepository interface {
	ListRequiredHours(ctx context.Context, filter RequiredHoursFilter) ([]RequiredHours, error)
}

// Ptr is a helper for building filters.
func Ptr[T any](v T) *T { return &v }

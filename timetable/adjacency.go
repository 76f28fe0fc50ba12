/*
adjacency.go - Adjacent-slot resolution for substitutes

PURPOSE:
  A teacher already at school in the period right before or right after a
  missed lesson is a natural substitute. This file answers, for one
  candidate, "do they teach in the neighbouring slot on that date?"

ALGORITHM:
  1. Find the grid slot of the target occurrence (weekday, start, end).
     None -> false: off-grid lessons have no neighbours.
  2. BEFORE on ordinal 1, or AFTER on the day's last ordinal -> false.
  3. Find the neighbouring slot (ordinal -1 / +1). Missing -> false.
  4. True iff the candidate has an occurrence on the same date, school and
     school year whose start and end equal the neighbour's.

CONSERVATIVE:
  Every "cannot determine" case is false, not an error. Screening prefers
  false negatives: a human reviews the candidates that are not flagged.

SEE ALSO:
  - grid.go: SlotFor, MaxOrdinal, SlotBefore, SlotAfter
  - engine.go: ScreenSubstitutes
*/
package timetable

// Direction selects the neighbouring slot to inspect.
type Direction int

const (
	Before Direction = iota
	After
)

func (d Direction) String() string {
	if d == Before {
		return "before"
	}
	return "after"
}

// Neighbour returns the grid slot adjacent to the target occurrence in the
// given direction, or false when there is none or it cannot be determined.
func Neighbour(dir Direction, target Occurrence, grid *SlotGrid) (Slot, bool) {
	if grid == nil {
		return Slot{}, false
	}
	day := target.Day()
	slot, ok := grid.Slot(day, target.Start, target.End)
	if !ok {
		return Slot{}, false
	}

	switch dir {
	case Before:
		if slot.Ordinal == 1 {
			return Slot{}, false
		}
		return grid.SlotBefore(day, slot.Ordinal)
	case After:
		if last, ok := grid.MaxOrdinal(day); ok && slot.Ordinal == last {
			return Slot{}, false
		}
		return grid.SlotAfter(day, slot.Ordinal)
	default:
		return Slot{}, false
	}
}

// HasAdjacent reports whether the candidate teaches in the slot adjacent to the
// target occurrence. candidateOccurrences may contain other teachers' or other
// dates' occurrences; only the candidate's on the target date are considered.
func HasAdjacent(dir Direction, target Occurrence, candidate TeacherID, candidateOccurrences []Occurrence, grid *SlotGrid) bool {
	neighbour, ok := Neighbour(dir, target, grid)
	if !ok {
		return false
	}
	for _, o := range candidateOccurrences {
		if o.Teacher != candidate {
			continue
		}
		if !SameDay(o.Date, target.Date) {
			continue
		}
		if o.School != target.School || o.SchoolYear != target.SchoolYear {
			continue
		}
		if o.Start == neighbour.Start && o.End == neighbour.End {
			return true
		}
	}
	return false
}

/*
grid.go - Slot grid index

PURPOSE:
  Indexes the recurring slots of one (school, school year) so that every
  question the engine asks of the grid is a map lookup:
  - legal duration of (day, start, end)
  - ordinal of (day, start, end)
  - last ordinal of a day
  - the slot immediately before / after an ordinal

BATCHING:
  Build the grid ONCE per request from a single repository fetch and reuse it
  for every occurrence. Never look slots up per occurrence.

INVARIANTS:
  - No two slots share (day, start, end). BuildSlotGrid rejects duplicates with
    DuplicateSlotError; it never overwrites.
  - All slots belong to the same (school, school year).
  - Ordinals are unique within a day. A second slot claiming the same ordinal on
    the same day is rejected as an invalid grid.

SEE ALSO:
  - hours.go: Uses Lookup for crediting
  - adjacency.go: Uses OrdinalOf / SlotBefore / SlotAfter
*/
package timetable

import (
	"fmt"
	"time"
)

// =============================================================================
// KEYS
// =============================================================================

type slotKey struct {
	Day   Weekday
	Start ClockTime
	End   ClockTime
}

type ordinalKey struct {
	Day     Weekday
	Ordinal int
}

// =============================================================================
// SLOT GRID
// =============================================================================

// SlotGrid is an immutable index over one school year's slots.
// Safe for concurrent reads.
type SlotGrid struct {
	School     SchoolID
	SchoolYear SchoolYearID

	byKey      map[slotKey]Slot
	byOrdinal  map[ordinalKey]Slot
	maxOrdinal map[Weekday]int
}

// BuildSlotGrid indexes slots in O(len(slots)).
// School and school year are taken from the first slot.
func BuildSlotGrid(slots []Slot) (*SlotGrid, error) {
	g := &SlotGrid{
		byKey:      make(map[slotKey]Slot, len(slots)),
		byOrdinal:  make(map[ordinalKey]Slot, len(slots)),
		maxOrdinal: make(map[Weekday]int),
	}
	if len(slots) > 0 {
		g.School = slots[0].School
		g.SchoolYear = slots[0].SchoolYear
	}

	for _, s := range slots {
		if s.School != g.School || s.SchoolYear != g.SchoolYear {
			return nil, fmt.Errorf("%w: slot %s %s-%s belongs to school %s year %s, grid is %s/%s",
				ErrInvalidGrid, s.Day, s.Start, s.End, s.School, s.SchoolYear, g.School, g.SchoolYear)
		}
		k := slotKey{Day: s.Day, Start: s.Start, End: s.End}
		if _, exists := g.byKey[k]; exists {
			return nil, &DuplicateSlotError{
				School:     s.School,
				SchoolYear: s.SchoolYear,
				Day:        s.Day,
				Start:      s.Start,
				End:        s.End,
			}
		}
		ok := ordinalKey{Day: s.Day, Ordinal: s.Ordinal}
		if other, exists := g.byOrdinal[ok]; exists {
			return nil, fmt.Errorf("%w: ordinal %d on %s used by %s-%s and %s-%s",
				ErrInvalidGrid, s.Ordinal, s.Day, other.Start, other.End, s.Start, s.End)
		}

		g.byKey[k] = s
		g.byOrdinal[ok] = s
		if s.Ordinal > g.maxOrdinal[s.Day] {
			g.maxOrdinal[s.Day] = s.Ordinal
		}
	}
	return g, nil
}

// Len returns the number of indexed slots.
func (g *SlotGrid) Len() int { return len(g.byKey) }

// Slot returns the slot with exactly this (day, start, end).
func (g *SlotGrid) Slot(day Weekday, start, end ClockTime) (Slot, bool) {
	s, ok := g.byKey[slotKey{Day: day, Start: start, End: end}]
	return s, ok
}

// Lookup returns the legal duration credited for (day, start, end).
func (g *SlotGrid) Lookup(day Weekday, start, end ClockTime) (time.Duration, bool) {
	s, ok := g.Slot(day, start, end)
	if !ok {
		return 0, false
	}
	return s.LegalDuration, true
}

// OrdinalOf returns the ordinal of (day, start, end).
func (g *SlotGrid) OrdinalOf(day Weekday, start, end ClockTime) (int, bool) {
	s, ok := g.Slot(day, start, end)
	if !ok {
		return 0, false
	}
	return s.Ordinal, true
}

// MaxOrdinal returns the ordinal of the last slot of the day.
func (g *SlotGrid) MaxOrdinal(day Weekday) (int, bool) {
	m, ok := g.maxOrdinal[day]
	return m, ok
}

// SlotAt returns the slot with the given ordinal on a day.
func (g *SlotGrid) SlotAt(day Weekday, ordinal int) (Slot, bool) {
	s, ok := g.byOrdinal[ordinalKey{Day: day, Ordinal: ordinal}]
	return s, ok
}

// SlotBefore returns the slot with ordinal-1 on the same day, if registered.
func (g *SlotGrid) SlotBefore(day Weekday, ordinal int) (Slot, bool) {
	return g.SlotAt(day, ordinal-1)
}

// SlotAfter returns the slot with ordinal+1 on the same day, if registered.
func (g *SlotGrid) SlotAfter(day Weekday, ordinal int) (Slot, bool) {
	return g.SlotAt(day, ordinal+1)
}

// SlotFor resolves the slot an occurrence falls on, if any.
func (g *SlotGrid) SlotFor(o Occurrence) (Slot, bool) {
	return g.Slot(o.Day(), o.Start, o.End)
}

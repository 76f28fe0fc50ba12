// Package store provides in-memory repository implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/schoolcal/timetable-engine/timetable"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements SlotRepository, OccurrenceRepository and RequiredHoursRepository.
type Memory struct {
	mu          sync.RWMutex
	slots       map[key][]timetable.Slot
	occurrences map[key][]timetable.Occurrence
	byID        map[timetable.OccurrenceID]timetable.Occurrence
	required    []timetable.RequiredHours
}

type key struct {
	School     timetable.SchoolID
	SchoolYear timetable.SchoolYearID
}

var (
	_ timetable.SlotRepository          = (*Memory)(nil)
	_ timetable.OccurrenceRepository    = (*Memory)(nil)
	_ timetable.RequiredHoursRepository = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		slots:       make(map[key][]timetable.Slot),
		occurrences: make(map[key][]timetable.Occurrence),
		byID:        make(map[timetable.OccurrenceID]timetable.Occurrence),
	}
}

// AddSlots appends slots to their school year's grid. No duplicate check:
// the grid build is where duplicates are rejected.
func (m *Memory) AddSlots(slots ...timetable.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range slots {
		k := key{School: s.School, SchoolYear: s.SchoolYear}
		m.slots[k] = append(m.slots[k], s)
	}
}

// AddOccurrences stores occurrences, keeping each school year sorted by date then start.
func (m *Memory) AddOccurrences(occurrences ...timetable.Occurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range occurrences {
		if err := o.Validate(); err != nil {
			return err
		}
		if _, exists := m.byID[o.ID]; exists && o.ID != "" {
			return fmt.Errorf("occurrence %s already stored", o.ID)
		}
		k := key{School: o.School, SchoolYear: o.SchoolYear}
		list := m.occurrences[k]

		// Binary search for insertion point
		i := sort.Search(len(list), func(i int) bool {
			if !list[i].Date.Equal(o.Date) {
				return list[i].Date.After(o.Date)
			}
			return list[i].Start > o.Start
		})
		list = append(list, timetable.Occurrence{})
		copy(list[i+1:], list[i:])
		list[i] = o
		m.occurrences[k] = list

		if o.ID != "" {
			m.byID[o.ID] = o
		}
	}
	return nil
}

func (m *Memory) AddRequiredHours(rows ...timetable.RequiredHours) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.required = append(m.required, rows...)
}

func (m *Memory) ListSlots(_ context.Context, school timetable.SchoolID, year timetable.SchoolYearID) ([]timetable.Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.slots[key{School: school, SchoolYear: year}]
	result := make([]timetable.Slot, len(src))
	copy(result, src)
	return result, nil
}

func (m *Memory) ListOccurrences(_ context.Context, filter timetable.OccurrenceFilter) ([]timetable.Occurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []timetable.Occurrence
	for _, o := range m.occurrences[key{School: filter.School, SchoolYear: filter.SchoolYear}] {
		if filter.Matches(o) {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *Memory) GetOccurrence(_ context.Context, id timetable.OccurrenceID) (timetable.Occurrence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.byID[id]
	if !ok {
		return timetable.Occurrence{}, fmt.Errorf("%w: %s", timetable.ErrOccurrenceNotFound, id)
	}
	return o, nil
}

func (m *Memory) ListRequiredHours(_ context.Context, filter timetable.RequiredHoursFilter) ([]timetable.RequiredHours, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []timetable.RequiredHours
	for _, r := range m.required {
		if filter.Matches(r) {
			result = append(result, r)
		}
	}
	return result, nil
}

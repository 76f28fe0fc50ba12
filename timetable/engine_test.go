package timetable_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/schoolcal/timetable-engine/timetable"
	"github.com/schoolcal/timetable-engine/timetable/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// countingStore counts slot fetches so tests can assert batching.
type countingStore struct {
	*store.Memory
	slotFetches atomic.Int32
	failSlots   error
	failList    error
}

func (c *countingStore) ListSlots(ctx context.Context, school timetable.SchoolID, year timetable.SchoolYearID) ([]timetable.Slot, error) {
	c.slotFetches.Add(1)
	if c.failSlots != nil {
		return nil, c.failSlots
	}
	return c.Memory.ListSlots(ctx, school, year)
}

func (c *countingStore) ListOccurrences(ctx context.Context, filter timetable.OccurrenceFilter) ([]timetable.Occurrence, error) {
	if c.failList != nil {
		return nil, c.failList
	}
	return c.Memory.ListOccurrences(ctx, filter)
}

func newEngine(t *testing.T) (*timetable.Engine, *countingStore) {
	t.Helper()
	mem := store.NewMemory()
	mem.AddSlots(
		slot(timetable.Monday, 1, "08:00", "09:00", 60),
		slot(timetable.Monday, 2, "09:00", "10:00", 55),
	)
	cs := &countingStore{Memory: mem}
	return timetable.NewEngine(cs, cs, zaptest.NewLogger(t)), cs
}

func required(teacher timetable.TeacherID, regular, special int) timetable.RequiredHours {
	return timetable.RequiredHours{
		Teacher: teacher, Course: "3A", Subject: "math",
		School: school, SchoolYear: year,
		Regular: regular, Special: special,
	}
}

// =============================================================================
// HOURS
// =============================================================================

func TestEngine_MissingHours(t *testing.T) {
	engine, cs := newEngine(t)
	require.NoError(t, cs.AddOccurrences(
		lesson("t1", monday, "08:00", "09:00"),
		lesson("t1", monday, "09:00", "10:00"),
		lesson("t2", monday, "08:00", "09:00"),
	))

	missing, err := engine.MissingHours(context.Background(), required("t1", 3, 0), timetable.KindRegular, timetable.DateWindow{})
	require.NoError(t, err)
	// 60 + 55 = 115 minutes -> 1 whole hour
	assert.Equal(t, 2, missing)
	assert.Equal(t, int32(1), cs.slotFetches.Load())
}

func TestEngine_HoursReports_OneGridPerSchoolYear(t *testing.T) {
	// GIVEN: Three RequiredHours rows in the same school year
	// WHEN: Reconciling them in one call
	// THEN: The slot grid is fetched exactly once; reports keep input order

	engine, cs := newEngine(t)
	require.NoError(t, cs.AddOccurrences(
		lesson("t1", monday, "08:00", "09:00"),
		lesson("t2", monday, "08:00", "09:00"),
		lesson("t2", monday.AddDate(0, 0, 7), "08:00", "09:00"),
	))

	rows := []timetable.RequiredHours{required("t1", 2, 0), required("t2", 2, 0), required("t3", 4, 1)}
	reports, err := engine.HoursReports(context.Background(), rows, timetable.DateWindow{})
	require.NoError(t, err)

	require.Len(t, reports, 3)
	assert.Equal(t, 1, reports[0].MissingRegular())
	assert.Equal(t, 0, reports[1].MissingRegular())
	assert.Equal(t, 4, reports[2].MissingRegular())
	assert.Equal(t, 1, reports[2].MissingSpecial())
	assert.Equal(t, timetable.TeacherID("t2"), reports[1].Required.Teacher)
	assert.Equal(t, int32(1), cs.slotFetches.Load())
}

func TestEngine_HoursReport_WindowApplies(t *testing.T) {
	engine, cs := newEngine(t)
	require.NoError(t, cs.AddOccurrences(
		lesson("t1", monday, "08:00", "09:00"),
		lesson("t1", monday.AddDate(0, 0, 7), "08:00", "09:00"),
	))

	report, err := engine.HoursReport(context.Background(), required("t1", 2, 0), timetable.NewDateWindow(monday, monday))
	require.NoError(t, err)
	assert.Equal(t, 1, report.MissingRegular())
}

func TestEngine_DuplicateSlotAbortsCall(t *testing.T) {
	engine, cs := newEngine(t)
	cs.AddSlots(slot(timetable.Monday, 3, "08:00", "09:00", 45))

	_, err := engine.HoursReport(context.Background(), required("t1", 2, 0), timetable.DateWindow{})
	assert.ErrorIs(t, err, timetable.ErrDuplicateSlot)
}

func TestEngine_RepositoryErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")

	engine, cs := newEngine(t)
	cs.failSlots = boom
	_, err := engine.MissingHours(context.Background(), required("t1", 2, 0), timetable.KindRegular, timetable.DateWindow{})
	assert.ErrorIs(t, err, boom)

	engine, cs = newEngine(t)
	cs.failList = boom
	_, err = engine.HoursReports(context.Background(), []timetable.RequiredHours{required("t1", 1, 0)}, timetable.DateWindow{})
	assert.ErrorIs(t, err, boom)
}

// =============================================================================
// SLOTS & SUBSTITUTES
// =============================================================================

func TestEngine_ResolveSlots(t *testing.T) {
	engine, cs := newEngine(t)
	onGrid := lesson("t1", monday, "09:00", "10:00")
	offGrid := lesson("t1", monday, "11:00", "12:00")

	resolved, err := engine.ResolveSlots(context.Background(), []timetable.Occurrence{onGrid, offGrid, lesson("t2", monday, "08:00", "09:00")})
	require.NoError(t, err)

	assert.Equal(t, timetable.SlotID("monday-09:00"), resolved[onGrid.ID])
	assert.NotContains(t, resolved, offGrid.ID)
	assert.Len(t, resolved, 2)
	assert.Equal(t, int32(1), cs.slotFetches.Load())
}

func TestEngine_HasAdjacentAndCount(t *testing.T) {
	engine, cs := newEngine(t)
	target := lesson("absent", monday, "09:00", "10:00")
	sub := lesson("cand", monday.AddDate(0, 0, -7), "08:00", "09:00")
	sub.Substitution = true
	require.NoError(t, cs.AddOccurrences(target, lesson("cand", monday, "08:00", "09:00"), sub))

	ctx := context.Background()
	before, err := engine.HasAdjacent(ctx, timetable.Before, target, "cand")
	require.NoError(t, err)
	assert.True(t, before)

	after, err := engine.HasAdjacent(ctx, timetable.After, target, "cand")
	require.NoError(t, err)
	assert.False(t, after)

	n, err := engine.CountSubstitutions(ctx, "cand", school, year)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEngine_ScreenSubstitutes(t *testing.T) {
	engine, cs := newEngine(t)
	target := lesson("absent", monday, "08:00", "09:00")
	sub := lesson("late", monday.AddDate(0, 0, -7), "09:00", "10:00")
	sub.Substitution = true
	require.NoError(t, cs.AddOccurrences(target, lesson("late", monday, "09:00", "10:00"), sub))

	got, signals, err := engine.ScreenSubstitutes(context.Background(), target.ID, []timetable.TeacherID{"late", "free"})
	require.NoError(t, err)

	assert.Equal(t, target.ID, got.ID)
	assert.Equal(t, []timetable.SubstituteSignal{
		{Teacher: "late", HasHourBefore: false, HasHourAfter: true, SubstitutionsSoFar: 1},
		{Teacher: "free"},
	}, signals)
	assert.Equal(t, int32(1), cs.slotFetches.Load())
}

func TestEngine_ScreenSubstitutes_UnknownOccurrence(t *testing.T) {
	engine, _ := newEngine(t)

	_, _, err := engine.ScreenSubstitutes(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, timetable.ErrOccurrenceNotFound)
	assert.True(t, timetable.IsNotFound(err))
}

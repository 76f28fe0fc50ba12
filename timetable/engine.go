/*
engine.go - Repository-backed orchestration of the pure components

PURPOSE:
  Fetches what one request needs, in as few round trips as possible, and
  hands the results to the pure functions in grid.go, hours.go,
  adjacency.go and substitution.go.

BATCHING RULES:
  - One slot fetch and one SlotGrid per (school, school year) per call.
  - Independent fetches (grid, occurrences, substitution history) run
    concurrently with errgroup.
  - Occurrences for many RequiredHours rows are fetched once per
    (school, school year) and grouped in memory.

ERRORS:
  Repository errors propagate unchanged. Grid errors (DuplicateSlotError)
  abort the call.

EXAMPLE:
  engine := timetable.NewEngine(store, store, logger)
  report, err := engine.HoursReport(ctx, required, window)
  fmt.Println(report.MissingRegular(), report.MissingSpecial())

SEE ALSO:
  - store.go: Repository interfaces
  - api/handlers.go: HTTP presentation of the results
*/
package timetable

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs the hour and substitution computations against repositories.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	Slots       SlotRepository
	Occurrences OccurrenceRepository
	Logger      *zap.Logger
}

func NewEngine(slots SlotRepository, occurrences OccurrenceRepository, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Slots: slots, Occurrences: occurrences, Logger: logger}
}

// Grid fetches and indexes the slot grid of a school year.
func (e *Engine) Grid(ctx context.Context, school SchoolID, year SchoolYearID) (*SlotGrid, error) {
	slots, err := e.Slots.ListSlots(ctx, school, year)
	if err != nil {
		return nil, err
	}
	grid, err := BuildSlotGrid(slots)
	if err != nil {
		e.Logger.Warn("slot grid rejected",
			zap.String("school", string(school)),
			zap.String("school_year", string(year)),
			zap.Error(err))
		return nil, err
	}
	if grid.Len() == 0 {
		grid.School, grid.SchoolYear = school, year
	}
	e.Logger.Debug("slot grid built",
		zap.String("school", string(school)),
		zap.String("school_year", string(year)),
		zap.Int("slots", grid.Len()))
	return grid, nil
}

// =============================================================================
// HOURS
// =============================================================================

// MissingHours is the single-kind entry point: required(kind) minus floored
// credited hours of that kind inside the window.
func (e *Engine) MissingHours(ctx context.Context, required RequiredHours, kind Kind, window DateWindow) (int, error) {
	var (
		grid        *SlotGrid
		occurrences []Occurrence
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		grid, err = e.Grid(gctx, required.School, required.SchoolYear)
		return err
	})
	g.Go(func() error {
		var err error
		occurrences, err = e.Occurrences.ListOccurrences(gctx, OccurrenceFilter{
			School:     required.School,
			SchoolYear: required.SchoolYear,
			Teacher:    &required.Teacher,
			Course:     &required.Course,
			Subject:    &required.Subject,
			Kind:       &kind,
			Window:     window,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return Reconcile(occurrences, grid, window).Missing(required.Target(kind)), nil
}

// HoursReport reconciles both kinds for one RequiredHours row.
func (e *Engine) HoursReport(ctx context.Context, required RequiredHours, window DateWindow) (HoursReport, error) {
	reports, err := e.HoursReports(ctx, []RequiredHours{required}, window)
	if err != nil {
		return HoursReport{}, err
	}
	return reports[0], nil
}

type classKey struct {
	Teacher TeacherID
	Course  CourseID
	Subject SubjectID
}

type yearKey struct {
	School     SchoolID
	SchoolYear SchoolYearID
}

// HoursReports reconciles many rows, one grid and one occurrence fetch per
// (school, school year). Reports come back in input order.
func (e *Engine) HoursReports(ctx context.Context, rows []RequiredHours, window DateWindow) ([]HoursReport, error) {
	byYear := make(map[yearKey][]int)
	var order []yearKey
	for i, r := range rows {
		k := yearKey{School: r.School, SchoolYear: r.SchoolYear}
		if _, seen := byYear[k]; !seen {
			order = append(order, k)
		}
		byYear[k] = append(byYear[k], i)
	}

	reports := make([]HoursReport, len(rows))
	for _, k := range order {
		var (
			grid        *SlotGrid
			occurrences []Occurrence
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			grid, err = e.Grid(gctx, k.School, k.SchoolYear)
			return err
		})
		g.Go(func() error {
			var err error
			occurrences, err = e.Occurrences.ListOccurrences(gctx, OccurrenceFilter{
				School:     k.School,
				SchoolYear: k.SchoolYear,
				Window:     window,
			})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		byClass := make(map[classKey][]Occurrence)
		for _, o := range occurrences {
			ck := classKey{Teacher: o.Teacher, Course: o.Course, Subject: o.Subject}
			byClass[ck] = append(byClass[ck], o)
		}
		for _, i := range byYear[k] {
			r := rows[i]
			ck := classKey{Teacher: r.Teacher, Course: r.Course, Subject: r.Subject}
			reports[i] = BuildHoursReport(r, byClass[ck], grid, window)
		}
		e.Logger.Debug("hours reconciled",
			zap.String("school", string(k.School)),
			zap.String("school_year", string(k.SchoolYear)),
			zap.String("window", window.String()),
			zap.Int("rows", len(byYear[k])),
			zap.Int("occurrences", len(occurrences)))
	}
	return reports, nil
}

// =============================================================================
// SLOT RESOLUTION
// =============================================================================

// ResolveSlots maps each occurrence to the grid slot it falls on. Occurrences
// off the grid are absent from the result.
func (e *Engine) ResolveSlots(ctx context.Context, occurrences []Occurrence) (map[OccurrenceID]SlotID, error) {
	grids := make(map[yearKey]*SlotGrid)
	resolved := make(map[OccurrenceID]SlotID, len(occurrences))
	for _, o := range occurrences {
		k := yearKey{School: o.School, SchoolYear: o.SchoolYear}
		grid, ok := grids[k]
		if !ok {
			var err error
			grid, err = e.Grid(ctx, k.School, k.SchoolYear)
			if err != nil {
				return nil, err
			}
			grids[k] = grid
		}
		if s, ok := grid.SlotFor(o); ok {
			resolved[o.ID] = s.ID
		}
	}
	return resolved, nil
}

// =============================================================================
// SUBSTITUTES
// =============================================================================

// HasAdjacent loads what HasAdjacent needs for one candidate.
func (e *Engine) HasAdjacent(ctx context.Context, dir Direction, target Occurrence, candidate TeacherID) (bool, error) {
	grid, err := e.Grid(ctx, target.School, target.SchoolYear)
	if err != nil {
		return false, err
	}
	if _, ok := Neighbour(dir, target, grid); !ok {
		return false, nil
	}
	occurrences, err := e.Occurrences.ListOccurrences(ctx, OccurrenceFilter{
		School:     target.School,
		SchoolYear: target.SchoolYear,
		Teacher:    &candidate,
		Window:     NewDateWindow(DateOf(target.Date), DateOf(target.Date)),
	})
	if err != nil {
		return false, err
	}
	return HasAdjacent(dir, target, candidate, occurrences, grid), nil
}

// CountSubstitutions counts the candidate's substitutions in a school year.
func (e *Engine) CountSubstitutions(ctx context.Context, candidate TeacherID, school SchoolID, year SchoolYearID) (int, error) {
	occurrences, err := e.Occurrences.ListOccurrences(ctx, OccurrenceFilter{
		School:       school,
		SchoolYear:   year,
		Teacher:      &candidate,
		Substitution: Ptr(true),
	})
	if err != nil {
		return 0, err
	}
	return CountSubstitutions(candidate, school, year, occurrences), nil
}

// ScreenSubstitutes loads the target occurrence and reports adjacency and load
// signals for every candidate. Three batched fetches regardless of how many
// candidates are screened.
func (e *Engine) ScreenSubstitutes(ctx context.Context, targetID OccurrenceID, candidates []TeacherID) (Occurrence, []SubstituteSignal, error) {
	target, err := e.Occurrences.GetOccurrence(ctx, targetID)
	if err != nil {
		return Occurrence{}, nil, err
	}
	signals, err := e.ScreenOccurrence(ctx, target, candidates)
	if err != nil {
		return Occurrence{}, nil, err
	}
	return target, signals, nil
}

// ScreenOccurrence is ScreenSubstitutes for a target the caller already loaded.
func (e *Engine) ScreenOccurrence(ctx context.Context, target Occurrence, candidates []TeacherID) ([]SubstituteSignal, error) {
	var (
		grid          *SlotGrid
		sameDay       []Occurrence
		substitutions []Occurrence
	)
	day := DateOf(target.Date)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		grid, err = e.Grid(gctx, target.School, target.SchoolYear)
		return err
	})
	g.Go(func() error {
		var err error
		sameDay, err = e.Occurrences.ListOccurrences(gctx, OccurrenceFilter{
			School:     target.School,
			SchoolYear: target.SchoolYear,
			Window:     NewDateWindow(day, day),
		})
		return err
	})
	g.Go(func() error {
		var err error
		substitutions, err = e.Occurrences.ListOccurrences(gctx, OccurrenceFilter{
			School:       target.School,
			SchoolYear:   target.SchoolYear,
			Substitution: Ptr(true),
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	signals := Screen(target, candidates, sameDay, substitutions, grid)
	e.Logger.Debug("substitutes screened",
		zap.String("occurrence", string(target.ID)),
		zap.Int("candidates", len(candidates)))
	return signals, nil
}

/*
Package sqlite provides a SQLite-backed implementation of the timetable repositories.

PURPOSE:
  Implements the engine's read interfaces (SlotRepository,
  OccurrenceRepository, RequiredHoursRepository) and the writes the HTTP
  layer needs around them. The engine never writes; the Save* methods are
  driven by api/handlers.go and the demo scenarios.

INTERFACES IMPLEMENTED:
  timetable.SlotRepository:          hour_slots by (school, school year)
  timetable.OccurrenceRepository:    assignments, filtered in SQL
  timetable.RequiredHoursRepository: required_hours rows

KEY TABLES:
  teachers:       Teacher records, each bound to one school
  hour_slots:     The slot grid (week_day is 0=Monday ... 6=Sunday)
  assignments:    Dated occurrences (regular or special, substitution flag)
  required_hours: Required totals per teacher/course/subject/school year
  holidays:       Closed date ranges per school

ENCODING:
  Dates are TEXT "2006-01-02", clock times TEXT "15:04", legal durations
  INTEGER seconds. Text dates compare correctly, so window filters run in SQL.

INDEXES:
  - idx_hour_slots_key (UNIQUE): one slot per (school, year, day, start, end)
  - idx_hour_slots_ordinal (UNIQUE): one slot per (school, year, day, hour_number)
  - idx_assignments_school_date: day and window scans (hot path)
  - idx_assignments_teacher_date: per-teacher reconciliation

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Reads share the lock, so the
  engine's concurrent fetches proceed in parallel.

USAGE:
  store, err := sqlite.New("./data/timetable.db", logger)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := timetable.NewEngine(store, store, logger)

SEE ALSO:
  - timetable/store.go: Interface definitions
  - timetable/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/schoolcal/timetable-engine/timetable"
)

// Store implements the timetable repositories using SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

var (
	_ timetable.SlotRepository          = (*Store)(nil)
	_ timetable.OccurrenceRepository    = (*Store)(nil)
	_ timetable.RequiredHoursRepository = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("sqlite store ready", zap.String("path", dbPath))

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teachers (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_teachers_school
		ON teachers(school_id);

	CREATE TABLE IF NOT EXISTS hour_slots (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		school_year_id TEXT NOT NULL,
		week_day INTEGER NOT NULL CHECK (week_day BETWEEN 0 AND 6),
		hour_start TEXT NOT NULL,
		hour_end TEXT NOT NULL,
		hour_number INTEGER NOT NULL,
		legal_duration_seconds INTEGER NOT NULL,
		CHECK (hour_start < hour_end)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_hour_slots_key
		ON hour_slots(school_id, school_year_id, week_day, hour_start, hour_end);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_hour_slots_ordinal
		ON hour_slots(school_id, school_year_id, week_day, hour_number);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		teacher_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		school_id TEXT NOT NULL,
		school_year_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hour_start TEXT NOT NULL,
		hour_end TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'regular',
		substitution BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		CHECK (hour_start <= hour_end)
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_school_date
		ON assignments(school_id, school_year_id, date, hour_start);
	CREATE INDEX IF NOT EXISTS idx_assignments_teacher_date
		ON assignments(teacher_id, date);

	CREATE TABLE IF NOT EXISTS required_hours (
		teacher_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		school_id TEXT NOT NULL,
		school_year_id TEXT NOT NULL,
		regular INTEGER NOT NULL DEFAULT 0,
		special INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (teacher_id, course_id, subject_id, school_id, school_year_id)
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		name TEXT NOT NULL,
		date_start TEXT NOT NULL,
		date_end TEXT NOT NULL,
		created_at TEXT NOT NULL,
		CHECK (date_start <= date_end)
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_school_dates
		ON holidays(school_id, date_start, date_end);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SLOT REPOSITORY (timetable.SlotRepository interface)
// =============================================================================

// ListSlots returns the grid of a school year ordered by day and hour number.
func (s *Store) ListSlots(ctx context.Context, school timetable.SchoolID, year timetable.SchoolYearID) ([]timetable.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, school_id, school_year_id, week_day, hour_start, hour_end, hour_number, legal_duration_seconds
		FROM hour_slots
		WHERE school_id = ? AND school_year_id = ?
		ORDER BY week_day, hour_number
	`, string(school), string(year))
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []timetable.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// SaveSlots replaces the grid of every (school, school year) present in slots.
// A duplicate key surfaces as *timetable.DuplicateSlotError; a repeated hour
// number or a slot ID held by another grid wraps timetable.ErrInvalidGrid.
// Either way the previous grid is left untouched.
func (s *Store) SaveSlots(ctx context.Context, slots []timetable.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cleared := make(map[[2]string]bool)
	for _, slot := range slots {
		k := [2]string{string(slot.School), string(slot.SchoolYear)}
		if cleared[k] {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM hour_slots WHERE school_id = ? AND school_year_id = ?", k[0], k[1]); err != nil {
			return fmt.Errorf("failed to clear slots: %w", err)
		}
		cleared[k] = true
	}

	for _, slot := range slots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hour_slots (id, school_id, school_year_id, week_day, hour_start, hour_end, hour_number, legal_duration_seconds)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			string(slot.ID), string(slot.School), string(slot.SchoolYear), int(slot.Day),
			slot.Start.String(), slot.End.String(), slot.Ordinal,
			int64(slot.LegalDuration/time.Second),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				// SQLite names the violated columns, not the index
				msg := err.Error()
				switch {
				case strings.Contains(msg, "hour_slots.hour_start"):
					return &timetable.DuplicateSlotError{
						School: slot.School, SchoolYear: slot.SchoolYear,
						Day: slot.Day, Start: slot.Start, End: slot.End,
					}
				case strings.Contains(msg, "hour_slots.hour_number"):
					return fmt.Errorf("%w: hour %d on %s registered twice", timetable.ErrInvalidGrid, slot.Ordinal, slot.Day)
				case strings.Contains(msg, "hour_slots.id"):
					return fmt.Errorf("%w: slot id %s is already taken", timetable.ErrInvalidGrid, slot.ID)
				}
			}
			return fmt.Errorf("failed to insert slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("slot grid replaced", zap.Int("slots", len(slots)), zap.Int("school_years", len(cleared)))
	return nil
}

func scanSlot(rows *sql.Rows) (timetable.Slot, error) {
	var (
		slot                 timetable.Slot
		id, school, year     string
		weekDay, ordinal     int
		start, end           string
		legalDurationSeconds int64
	)
	if err := rows.Scan(&id, &school, &year, &weekDay, &start, &end, &ordinal, &legalDurationSeconds); err != nil {
		return slot, err
	}

	day, err := timetable.ParseWeekday(weekDay)
	if err != nil {
		return slot, fmt.Errorf("slot %s: %w", id, err)
	}
	startClock, err := timetable.ParseClock(start)
	if err != nil {
		return slot, fmt.Errorf("slot %s: %w", id, err)
	}
	endClock, err := timetable.ParseClock(end)
	if err != nil {
		return slot, fmt.Errorf("slot %s: %w", id, err)
	}

	return timetable.Slot{
		ID:            timetable.SlotID(id),
		School:        timetable.SchoolID(school),
		SchoolYear:    timetable.SchoolYearID(year),
		Day:           day,
		Start:         startClock,
		End:           endClock,
		Ordinal:       ordinal,
		LegalDuration: time.Duration(legalDurationSeconds) * time.Second,
	}, nil
}

// =============================================================================
// OCCURRENCE REPOSITORY (timetable.OccurrenceRepository interface)
// =============================================================================

const occurrenceColumns = `id, teacher_id, course_id, subject_id, school_id, school_year_id, date, hour_start, hour_end, kind, substitution`

// ListOccurrences applies the filter in SQL, ordered by date then start.
func (s *Store) ListOccurrences(ctx context.Context, filter timetable.OccurrenceFilter) ([]timetable.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := []string{"school_id = ?", "school_year_id = ?"}
	args := []any{string(filter.School), string(filter.SchoolYear)}

	if filter.Teacher != nil {
		where = append(where, "teacher_id = ?")
		args = append(args, string(*filter.Teacher))
	}
	if filter.Course != nil {
		where = append(where, "course_id = ?")
		args = append(args, string(*filter.Course))
	}
	if filter.Subject != nil {
		where = append(where, "subject_id = ?")
		args = append(args, string(*filter.Subject))
	}
	if filter.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.Substitution != nil {
		where = append(where, "substitution = ?")
		args = append(args, *filter.Substitution)
	}
	if filter.Window.From != nil {
		where = append(where, "date >= ?")
		args = append(args, filter.Window.From.Format(timetable.DateLayout))
	}
	if filter.Window.To != nil {
		where = append(where, "date <= ?")
		args = append(args, filter.Window.To.Format(timetable.DateLayout))
	}

	query := "SELECT " + occurrenceColumns + " FROM assignments WHERE " +
		strings.Join(where, " AND ") + " ORDER BY date, hour_start, id"
	return s.queryOccurrences(ctx, query, args...)
}

// GetOccurrence retrieves one assignment by ID.
func (s *Store) GetOccurrence(ctx context.Context, id timetable.OccurrenceID) (timetable.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occurrences, err := s.queryOccurrences(ctx,
		"SELECT "+occurrenceColumns+" FROM assignments WHERE id = ?", string(id))
	if err != nil {
		return timetable.Occurrence{}, err
	}
	if len(occurrences) == 0 {
		return timetable.Occurrence{}, fmt.Errorf("%w: %s", timetable.ErrOccurrenceNotFound, id)
	}
	return occurrences[0], nil
}

// SaveOccurrence inserts or updates an assignment.
func (s *Store) SaveOccurrence(ctx context.Context, o timetable.Occurrence) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.Kind == "" {
		o.Kind = timetable.KindRegular
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (id, teacher_id, course_id, subject_id, school_id, school_year_id,
			date, hour_start, hour_end, kind, substitution, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			teacher_id = excluded.teacher_id,
			course_id = excluded.course_id,
			subject_id = excluded.subject_id,
			school_id = excluded.school_id,
			school_year_id = excluded.school_year_id,
			date = excluded.date,
			hour_start = excluded.hour_start,
			hour_end = excluded.hour_end,
			kind = excluded.kind,
			substitution = excluded.substitution
	`,
		string(o.ID), string(o.Teacher), string(o.Course), string(o.Subject),
		string(o.School), string(o.SchoolYear),
		o.Date.Format(timetable.DateLayout), o.Start.String(), o.End.String(),
		string(o.Kind), o.Substitution,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}
	return nil
}

func (s *Store) queryOccurrences(ctx context.Context, query string, args ...any) ([]timetable.Occurrence, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var occurrences []timetable.Occurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}

func scanOccurrence(rows *sql.Rows) (timetable.Occurrence, error) {
	var (
		o                                          timetable.Occurrence
		id, teacher, course, subject, school, year string
		date, start, end, kind                     string
	)
	if err := rows.Scan(&id, &teacher, &course, &subject, &school, &year, &date, &start, &end, &kind, &o.Substitution); err != nil {
		return o, err
	}

	d, err := timetable.ParseDate(date)
	if err != nil {
		return o, fmt.Errorf("assignment %s: %w", id, err)
	}
	startClock, err := timetable.ParseClock(start)
	if err != nil {
		return o, fmt.Errorf("assignment %s: %w", id, err)
	}
	endClock, err := timetable.ParseClock(end)
	if err != nil {
		return o, fmt.Errorf("assignment %s: %w", id, err)
	}

	o.ID = timetable.OccurrenceID(id)
	o.Teacher = timetable.TeacherID(teacher)
	o.Course = timetable.CourseID(course)
	o.Subject = timetable.SubjectID(subject)
	o.School = timetable.SchoolID(school)
	o.SchoolYear = timetable.SchoolYearID(year)
	o.Date = d
	o.Start = startClock
	o.End = endClock
	o.Kind = timetable.Kind(kind)
	return o, nil
}

// =============================================================================
// REQUIRED HOURS (timetable.RequiredHoursRepository interface)
// =============================================================================

// ListRequiredHours returns the rows matching the filter.
func (s *Store) ListRequiredHours(ctx context.Context, filter timetable.RequiredHoursFilter) ([]timetable.RequiredHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := []string{"school_id = ?"}
	args := []any{string(filter.School)}
	if filter.SchoolYear != nil {
		where = append(where, "school_year_id = ?")
		args = append(args, string(*filter.SchoolYear))
	}
	if filter.Teacher != nil {
		where = append(where, "teacher_id = ?")
		args = append(args, string(*filter.Teacher))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT teacher_id, course_id, subject_id, school_id, school_year_id, regular, special
		FROM required_hours
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY school_year_id, teacher_id, course_id, subject_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list required hours: %w", err)
	}
	defer rows.Close()

	var result []timetable.RequiredHours
	for rows.Next() {
		var (
			r                                      timetable.RequiredHours
			teacher, course, subject, school, year string
		)
		if err := rows.Scan(&teacher, &course, &subject, &school, &year, &r.Regular, &r.Special); err != nil {
			return nil, err
		}
		r.Teacher = timetable.TeacherID(teacher)
		r.Course = timetable.CourseID(course)
		r.Subject = timetable.SubjectID(subject)
		r.School = timetable.SchoolID(school)
		r.SchoolYear = timetable.SchoolYearID(year)
		result = append(result, r)
	}
	return result, rows.Err()
}

// SaveRequiredHours upserts one row keyed by teacher/course/subject/school/year.
func (s *Store) SaveRequiredHours(ctx context.Context, r timetable.RequiredHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO required_hours (teacher_id, course_id, subject_id, school_id, school_year_id, regular, special)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(teacher_id, course_id, subject_id, school_id, school_year_id) DO UPDATE SET
			regular = excluded.regular,
			special = excluded.special
	`,
		string(r.Teacher), string(r.Course), string(r.Subject),
		string(r.School), string(r.SchoolYear), r.Regular, r.Special,
	)
	if err != nil {
		return fmt.Errorf("failed to save required hours: %w", err)
	}
	return nil
}

// =============================================================================
// TEACHER STORE
// =============================================================================

// Teacher represents a teacher record.
type Teacher struct {
	ID        timetable.TeacherID
	School    timetable.SchoolID
	Name      string
	Email     string
	CreatedAt time.Time
}

// SaveTeacher saves a teacher.
func (s *Store) SaveTeacher(ctx context.Context, t Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teachers (id, school_id, name, email, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			school_id = excluded.school_id,
			name = excluded.name,
			email = excluded.email
	`,
		string(t.ID), string(t.School), t.Name, nullString(t.Email),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetTeacher retrieves a teacher by ID.
func (s *Store) GetTeacher(ctx context.Context, id timetable.TeacherID) (*Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teachers, err := s.queryTeachers(ctx,
		"SELECT id, school_id, name, email, created_at FROM teachers WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(teachers) == 0 {
		return nil, fmt.Errorf("%w: %s", timetable.ErrTeacherNotFound, id)
	}
	return &teachers[0], nil
}

// ListTeachers returns the teachers of a school ordered by name.
func (s *Store) ListTeachers(ctx context.Context, school timetable.SchoolID) ([]Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTeachers(ctx,
		"SELECT id, school_id, name, email, created_at FROM teachers WHERE school_id = ? ORDER BY name, id",
		string(school))
}

func (s *Store) queryTeachers(ctx context.Context, query string, args ...any) ([]Teacher, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	var teachers []Teacher
	for rows.Next() {
		var (
			t                   Teacher
			id, school, created string
			email               sql.NullString
		)
		if err := rows.Scan(&id, &school, &t.Name, &email, &created); err != nil {
			return nil, err
		}
		t.ID = timetable.TeacherID(id)
		t.School = timetable.SchoolID(school)
		t.Email = email.String
		t.CreatedAt, _ = time.Parse(time.RFC3339, created)
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

// Holiday is a closed, inclusive date range during which a school has no lessons.
type Holiday struct {
	ID     string
	School timetable.SchoolID
	Name   string
	Start  time.Time
	End    time.Time
}

// SaveHoliday inserts or updates a holiday.
func (s *Store) SaveHoliday(ctx context.Context, h Holiday) error {
	if h.End.Before(h.Start) {
		return fmt.Errorf("%w: holiday %q ends before it starts", timetable.ErrInvalidPeriod, h.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, school_id, name, date_start, date_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			school_id = excluded.school_id,
			name = excluded.name,
			date_start = excluded.date_start,
			date_end = excluded.date_end
	`,
		h.ID, string(h.School), h.Name,
		h.Start.Format(timetable.DateLayout), h.End.Format(timetable.DateLayout),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// ListHolidays returns the school's holidays overlapping the window, ordered by start.
// The stored ranges are returned as-is; display clipping is the caller's concern.
func (s *Store) ListHolidays(ctx context.Context, school timetable.SchoolID, window timetable.DateWindow) ([]Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, school_id, name, date_start, date_end FROM holidays WHERE school_id = ?"
	args := []any{string(school)}
	if window.From != nil {
		query += " AND date_end >= ?"
		args = append(args, window.From.Format(timetable.DateLayout))
	}
	if window.To != nil {
		query += " AND date_start <= ?"
		args = append(args, window.To.Format(timetable.DateLayout))
	}
	query += " ORDER BY date_start, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var (
			h                    Holiday
			schoolID, start, end string
		)
		if err := rows.Scan(&h.ID, &schoolID, &h.Name, &start, &end); err != nil {
			return nil, err
		}
		h.School = timetable.SchoolID(schoolID)
		if h.Start, err = timetable.ParseDate(start); err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		if h.End, err = timetable.ParseDate(end); err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"assignments", "required_hours", "hour_slots", "holidays", "teachers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	s.logger.Info("store reset")
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

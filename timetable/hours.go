/*
hours.go - Credited hours and missing hours

PURPOSE:
  Answers "how many hours has this teacher actually been credited with in
  this class, and how many are still missing against the target?"

CREDITING (left outer join, slot side authoritative):
  For each occurrence:
    - a slot with the same (weekday, start, end) exists -> its legal duration
    - otherwise (ad-hoc or off-grid lesson)             -> end - start

MISSING HOURS:
  missing = required - floor(total credited hours)

  Floor, never round: 89 credited minutes count as 1 hour. Downstream
  reporting depends on this. A negative result means over-assignment.

KIND:
  The computation is kind-agnostic. Regular and special-needs totals are
  computed by feeding the matching occurrence sets separately.

EXAMPLE:
  Grid Monday #1 08:00-09:00 (legal 60m), #2 09:00-10:00 (legal 55m)
  Required = 2, one Monday 08:00-09:00 lesson -> 2 - floor(60m/60m) = 1
  Required = 2, one Monday 08:00-08:50 lesson -> off-grid, 50m -> 2 - 0 = 2

SEE ALSO:
  - grid.go: Lookup
  - engine.go: Fetches occurrences per kind and builds the grid once
*/
package timetable

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECONCILIATION RESULT
// =============================================================================

// Reconciliation is the outcome of crediting a set of occurrences against a grid.
type Reconciliation struct {
	Credited    time.Duration
	Occurrences int
	Matched     int // credited at a slot's legal duration
	Unmatched   int // credited at wall-clock duration
}

// CreditedWholeHours is the credited total truncated to whole hours.
func (r Reconciliation) CreditedWholeHours() int {
	return int(r.Credited / time.Hour)
}

// CreditedHours is the credited total as a decimal number of hours, two places.
func (r Reconciliation) CreditedHours() decimal.Decimal {
	minutes := decimal.NewFromInt(int64(r.Credited / time.Minute))
	return minutes.Div(decimal.NewFromInt(60)).Truncate(2)
}

// Missing returns required minus the floored credited hours.
func (r Reconciliation) Missing(required int) int {
	return required - r.CreditedWholeHours()
}

// =============================================================================
// CREDITING
// =============================================================================

// CreditedDuration returns the duration credited for a single occurrence.
// The second result reports whether a slot supplied it.
func CreditedDuration(o Occurrence, grid *SlotGrid) (time.Duration, bool) {
	if grid != nil {
		if legal, ok := grid.Lookup(o.Day(), o.Start, o.End); ok {
			return legal, true
		}
	}
	return o.Elapsed(), false
}

// Reconcile credits the occurrences inside the window against the grid.
func Reconcile(occurrences []Occurrence, grid *SlotGrid, window DateWindow) Reconciliation {
	var r Reconciliation
	for _, o := range window.Filter(occurrences) {
		d, matched := CreditedDuration(o, grid)
		r.Credited += d
		r.Occurrences++
		if matched {
			r.Matched++
		} else {
			r.Unmatched++
		}
	}
	return r
}

// TotalCredited sums credited durations without a window.
func TotalCredited(occurrences []Occurrence, grid *SlotGrid) time.Duration {
	return Reconcile(occurrences, grid, DateWindow{}).Credited
}

// MissingHours computes required - floor(credited hours) for an already
// filtered occurrence set. An empty set yields required.
func MissingHours(required int, occurrences []Occurrence, grid *SlotGrid) int {
	return Reconcile(occurrences, grid, DateWindow{}).Missing(required)
}

// =============================================================================
// HOURS REPORT - Both kinds for one RequiredHours row
// =============================================================================

// HoursReport pairs a RequiredHours row with its regular and special reconciliations.
type HoursReport struct {
	Required RequiredHours
	Window   DateWindow
	Regular  Reconciliation
	Special  Reconciliation
}

func (h HoursReport) MissingRegular() int { return h.Regular.Missing(h.Required.Regular) }
func (h HoursReport) MissingSpecial() int { return h.Special.Missing(h.Required.Special) }

// BuildHoursReport splits occurrences by kind and reconciles both against one grid.
func BuildHoursReport(required RequiredHours, occurrences []Occurrence, grid *SlotGrid, window DateWindow) HoursReport {
	var regular, special []Occurrence
	for _, o := range occurrences {
		if o.Kind == KindSpecial {
			special = append(special, o)
		} else {
			regular = append(regular, o)
		}
	}
	return HoursReport{
		Required: required,
		Window:   window,
		Regular:  Reconcile(regular, grid, window),
		Special:  Reconcile(special, grid, window),
	}
}

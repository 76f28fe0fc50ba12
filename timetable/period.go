package timetable

import "time"

// =============================================================================
// DATE WINDOW - Optional inclusive [From, To] filter
// =============================================================================

// DateWindow bounds a computation to an inclusive range of days.
// A nil bound is open. The zero value matches every date.
type DateWindow struct {
	From *time.Time
	To   *time.Time
}

// NewDateWindow builds a closed window. Use the zero value for an open one.
func NewDateWindow(from, to time.Time) DateWindow {
	return DateWindow{From: &from, To: &to}
}

// ParseDateWindow reads optional YYYY-MM-DD bounds; empty strings leave the bound open.
func ParseDateWindow(from, to string) (DateWindow, error) {
	var w DateWindow
	if from != "" {
		t, err := ParseDate(from)
		if err != nil {
			return DateWindow{}, err
		}
		w.From = &t
	}
	if to != "" {
		t, err := ParseDate(to)
		if err != nil {
			return DateWindow{}, err
		}
		w.To = &t
	}
	if w.From != nil && w.To != nil && w.To.Before(*w.From) {
		return DateWindow{}, ErrInvalidPeriod
	}
	return w, nil
}

func (w DateWindow) IsOpen() bool { return w.From == nil && w.To == nil }

// Contains reports whether the day of t lies inside the window.
func (w DateWindow) Contains(t time.Time) bool {
	day := DateOf(t)
	if w.From != nil && day.Before(DateOf(*w.From)) {
		return false
	}
	if w.To != nil && day.After(DateOf(*w.To)) {
		return false
	}
	return true
}

// Filter returns the occurrences whose date lies inside the window.
func (w DateWindow) Filter(occurrences []Occurrence) []Occurrence {
	if w.IsOpen() {
		return occurrences
	}
	kept := make([]Occurrence, 0, len(occurrences))
	for _, o := range occurrences {
		if w.Contains(o.Date) {
			kept = append(kept, o)
		}
	}
	return kept
}

// Clip intersects [start, end] with the window: the later of the starts and the
// earlier of the ends. Open bounds leave the corresponding side unchanged.
func (w DateWindow) Clip(start, end time.Time) (time.Time, time.Time) {
	if w.From != nil && w.From.After(start) {
		start = *w.From
	}
	if w.To != nil && w.To.Before(end) {
		end = *w.To
	}
	return start, end
}

// String renders the window for logs.
func (w DateWindow) String() string {
	from, to := "-inf", "+inf"
	if w.From != nil {
		from = w.From.Format(DateLayout)
	}
	if w.To != nil {
		to = w.To.Format(DateLayout)
	}
	return "[" + from + ", " + to + "]"
}

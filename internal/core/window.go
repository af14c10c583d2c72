package core

import (
	"errors"
	"fmt"
	"time"
)

// Window is the reporting date range, inclusive on both ends.
// Start and End are normalized to midnight UTC; the window is partitioned
// into whole calendar months for bucketing.
type Window struct {
	Start time.Time
	End   time.Time
}

var ErrWindowInverted = errors.New("window end is before start")

// NewWindow builds a window from two dates. Time-of-day and location are
// discarded; only the calendar date matters.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: dateOf(start), End: dateOf(end)}
	if w.End.Before(w.Start) {
		return Window{}, ErrWindowInverted
	}
	return w, nil
}

// Key identifies the window, e.g. "2024-01-01..2024-06-30". Cache entries
// are keyed on it.
func (w Window) Key() string {
	return fmt.Sprintf("%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// Contains reports whether the given instant falls on a date inside the
// window, inclusive of both boundary dates.
func (w Window) Contains(t time.Time) bool {
	d := dateOf(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// MonthStarts returns the first day of every calendar month the window
// touches, in chronological order. The slice is never empty for a valid
// window.
func (w Window) MonthStarts() []time.Time {
	var months []time.Time
	cur := MonthStart(w.Start)
	last := MonthStart(w.End)
	for !cur.After(last) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// Months returns the number of calendar months the window spans. Always >= 1
// for a valid window, so dividing totals by it is safe.
func (w Window) Months() int {
	return len(w.MonthStarts())
}

// MonthStart returns the first day of t's month at midnight UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

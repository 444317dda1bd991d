package calendar

import (
	"fmt"
	"time"

	"couchage/internal/models"
)

// Week is the fixed sequence of nights the house is rented for. It is
// built once at startup and never mutated afterwards.
type Week struct {
	nights []time.Time
	index  map[string]int
}

// New enumerates the nights in [start, end), one per calendar day, in
// ascending order. Both dates are truncated to midnight UTC so the
// sequence is independent of the host timezone.
func New(start, end time.Time) (*Week, error) {
	start = Midnight(start)
	end = Midnight(end)

	if !start.Before(end) {
		return nil, fmt.Errorf("invalid week: start %s is not before end %s",
			start.Format(models.DateLayout), end.Format(models.DateLayout))
	}

	w := &Week{index: make(map[string]int)}
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		w.index[d.Format(models.DateLayout)] = len(w.nights)
		w.nights = append(w.nights, d)
	}
	return w, nil
}

// Parse builds a Week from YYYY-MM-DD boundaries.
func Parse(start, end string) (*Week, error) {
	s, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("failed to parse week start %q: %w", start, err)
	}
	e, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("failed to parse week end %q: %w", end, err)
	}
	return New(s, e)
}

// Nights returns the ordered night sequence. Callers must not modify the
// returned slice.
func (w *Week) Nights() []time.Time {
	return w.nights
}

func (w *Week) Len() int {
	return len(w.nights)
}

// Contains reports whether the night falls inside the rented week.
func (w *Week) Contains(night time.Time) bool {
	_, ok := w.index[Midnight(night).Format(models.DateLayout)]
	return ok
}

// Start returns the first night (inclusive).
func (w *Week) Start() time.Time {
	return w.nights[0]
}

// End returns the day after the last night (exclusive boundary).
func (w *Week) End() time.Time {
	return w.nights[len(w.nights)-1].AddDate(0, 0, 1)
}

// Midnight truncates a timestamp to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingWeekday   = errors.New("no availability entry for weekday")
	ErrInvalidGrid      = errors.New("invalid weekly availability")
	ErrDuplicateWeekday = errors.New("duplicate weekday in availability")
)

// TimeRange is a daily window with "HH:MM" 24-hour bounds. Bounds are kept
// as entered; nothing enforces Start < End.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultTimeRange seeds newly opened days and new rows.
var DefaultTimeRange = TimeRange{Start: "09:00", End: "17:00"}

type DayAvailability struct {
	Day        string      `json:"day"`
	Available  bool        `json:"available"`
	TimeRanges []TimeRange `json:"timeRanges"`
}

// Weekday resolves the entry's label; ok is false for unknown labels.
func (d DayAvailability) Weekday() (Weekday, bool) {
	return ParseWeekdayKey(d.Day)
}

// OfferedRanges is what consumers may offer: nothing when the day is closed,
// whatever ranges it carries otherwise.
func (d DayAvailability) OfferedRanges() []TimeRange {
	if !d.Available {
		return nil
	}
	return d.TimeRanges
}

// WeeklyAvailability is the seven-entry recurring grid of a session, in
// Sunday..Saturday order.
type WeeklyAvailability []DayAvailability

// NewWeeklyAvailability returns a grid with every day closed.
func NewWeeklyAvailability() WeeklyAvailability {
	grid := make(WeeklyAvailability, DaysPerWeek)
	for i := range grid {
		grid[i] = DayAvailability{
			Day:        Weekday(i).Key(),
			TimeRanges: []TimeRange{},
		}
	}
	return grid
}

// Entry finds the entry for day by its label.
func (w WeeklyAvailability) Entry(day Weekday) (DayAvailability, error) {
	key := day.Key()
	for _, e := range w {
		if e.Day == key {
			return e, nil
		}
	}
	return DayAvailability{}, fmt.Errorf("%w: %s", ErrMissingWeekday, key)
}

// Index returns the slice position of day, or -1.
func (w WeeklyAvailability) Index(day Weekday) int {
	key := day.Key()
	for i, e := range w {
		if e.Day == key {
			return i
		}
	}
	return -1
}

func (w WeeklyAvailability) Validate() error {
	if len(w) != DaysPerWeek {
		return fmt.Errorf("%w: want %d days, got %d", ErrInvalidGrid, DaysPerWeek, len(w))
	}
	seen := make(map[Weekday]bool, DaysPerWeek)
	for _, e := range w {
		day, ok := e.Weekday()
		if !ok {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidGrid, e.Day)
		}
		if seen[day] {
			return fmt.Errorf("%w: %s", ErrDuplicateWeekday, e.Day)
		}
		seen[day] = true
	}
	return nil
}

// Clone deep-copies the grid so wizards can edit without aliasing.
func (w WeeklyAvailability) Clone() WeeklyAvailability {
	if w == nil {
		return nil
	}
	out := make(WeeklyAvailability, len(w))
	for i, e := range w {
		ranges := make([]TimeRange, len(e.TimeRanges))
		copy(ranges, e.TimeRanges)
		out[i] = DayAvailability{Day: e.Day, Available: e.Available, TimeRanges: ranges}
	}
	return out
}

// AvailableDays lists open entries, used by the review step.
func (w WeeklyAvailability) AvailableDays() []DayAvailability {
	var out []DayAvailability
	for _, e := range w {
		if e.Available {
			out = append(out, e)
		}
	}
	return out
}

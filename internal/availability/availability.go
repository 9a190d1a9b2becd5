// Package availability answers which calendar dates and start times a
// session's weekly grid offers. The grid carries no timezone; dates are
// resolved by their own calendar weekday.
package availability

import (
	"sort"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

// DefaultWindowDays is the forward booking window.
const DefaultWindowDays = 14

// WeekdayKeyOf maps a date to its weekday using fixed numbering.
func WeekdayKeyOf(date time.Time) domain.Weekday {
	return domain.WeekdayOf(date)
}

// Lookup returns the grid entry for the date's weekday. A missing entry is
// a data error and is returned as domain.ErrMissingWeekday.
func Lookup(session domain.Session, date time.Time) (domain.DayAvailability, error) {
	return session.TimeSlots.Entry(WeekdayKeyOf(date))
}

// IsDateAvailable reports the entry's available flag. Missing entries are
// logged and treated as unavailable.
func IsDateAvailable(session domain.Session, date time.Time) bool {
	entry, err := Lookup(session, date)
	if err != nil {
		logger.Warn("Availability grid missing weekday",
			"session_id", session.ID,
			"weekday", WeekdayKeyOf(date).Key(),
			"error", err,
		)
		return false
	}
	return entry.Available
}

// TimeRangesFor returns the ranges offered on date in stored order, or nil
// when the day is closed or missing.
func TimeRangesFor(session domain.Session, date time.Time) []domain.TimeRange {
	if !IsDateAvailable(session, date) {
		return nil
	}
	entry, _ := Lookup(session, date)
	return entry.TimeRanges
}

// SlotStarts lists the selectable start times for date.
func SlotStarts(session domain.Session, date time.Time) []string {
	ranges := TimeRangesFor(session, date)
	if len(ranges) == 0 {
		return nil
	}
	starts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		starts = append(starts, r.Start)
	}
	return starts
}

// IsSlotStart reports whether t is one of the start times offered on date.
func IsSlotStart(session domain.Session, date time.Time, t string) bool {
	for _, s := range SlotStarts(session, date) {
		if s == t {
			return true
		}
	}
	return false
}

// BookingWindow returns the calendar dates from tomorrow through
// tomorrow+days-1, each at midnight in now's location.
func BookingWindow(now time.Time, days int) []time.Time {
	if days <= 0 {
		days = DefaultWindowDays
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	out := make([]time.Time, 0, days)
	for i := 1; i <= days; i++ {
		out = append(out, today.AddDate(0, 0, i))
	}
	return out
}

// InWindow reports whether date's calendar day falls inside the window.
func InWindow(now, date time.Time, days int) bool {
	for _, d := range BookingWindow(now, days) {
		if domain.SameDay(d, date) {
			return true
		}
	}
	return false
}

// BookableDates filters the booking window down to open days.
func BookableDates(session domain.Session, now time.Time, days int) []time.Time {
	var out []time.Time
	for _, d := range BookingWindow(now, days) {
		if IsDateAvailable(session, d) {
			out = append(out, d)
		}
	}
	return out
}

// SortedTimeRanges returns a chronologically ordered copy. Ranges whose
// start is not HH:MM keep their relative order after the parsable ones.
func SortedTimeRanges(ranges []domain.TimeRange) []domain.TimeRange {
	out := make([]domain.TimeRange, len(ranges))
	copy(out, ranges)
	sort.SliceStable(out, func(i, j int) bool {
		ti, errI := time.Parse("15:04", out[i].Start)
		tj, errJ := time.Parse("15:04", out[j].Start)
		switch {
		case errI != nil:
			return false
		case errJ != nil:
			return true
		}
		return ti.Before(tj)
	})
	return out
}

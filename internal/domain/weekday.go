package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Weekday numbers days 0=Sunday..6=Saturday, matching time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DaysPerWeek is the number of entries in a WeeklyAvailability grid.
const DaysPerWeek = 7

var weekdayKeys = [DaysPerWeek]string{
	"SUNDAYS", "MONDAYS", "TUESDAYS", "WEDNESDAYS",
	"THURSDAYS", "FRIDAYS", "SATURDAYS",
}

var titleCaser = cases.Title(language.English)

// WeekdayOf returns the weekday of t's calendar date in t's own location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Key is the wire label stored in availability grids, e.g. "MONDAYS".
func (d Weekday) Key() string {
	if !d.Valid() {
		return ""
	}
	return weekdayKeys[d]
}

// Label is the human form of Key, e.g. "Mondays".
func (d Weekday) Label() string {
	return titleCaser.String(strings.ToLower(d.Key()))
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday(d).String()
}

// ParseWeekdayKey maps a wire label back to its Weekday.
func ParseWeekdayKey(key string) (Weekday, bool) {
	for i, k := range weekdayKeys {
		if k == key {
			return Weekday(i), true
		}
	}
	return 0, false
}

package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BookingDateLayout is the calendar-date form used on the wire.
const BookingDateLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid booking date")
	ErrInvalidTime = errors.New("invalid booking time")
)

// SessionSnapshot is the denormalized session copy a booking carries for
// confirmation emails and receipts.
type SessionSnapshot struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    string        `json:"duration"`
	Tag         string        `json:"tag"`
	Mentor      MentorProfile `json:"mentor"`
}

type BookingRequest struct {
	SessionID   string          `json:"session_id"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Timezone    string          `json:"timezone"`
	Email       string          `json:"email"`
	SessionData SessionSnapshot `json:"session_data"`
}

type Booking struct {
	ID          string    `json:"_id"`
	SessionID   string    `json:"session_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Timezone    string    `json:"timezone"`
	Email       string    `json:"email"`
	MeetingID   string    `json:"meeting_id"`
	MeetingLink string    `json:"meeting_link"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookingResponse is what the booking wizard consumes; the server returns
// the full Booking, of which only the meeting link matters here.
type BookingResponse struct {
	ID          string `json:"_id,omitempty"`
	MeetingLink string `json:"meeting_link"`
}

type BookingCheck struct {
	HasBookings bool      `json:"has_bookings"`
	Bookings    []Booking `json:"bookings"`
}

// BookedDates returns the calendar dates in the check result; unparsable
// dates are skipped.
func (c BookingCheck) BookedDates() []time.Time {
	var out []time.Time
	for _, b := range c.Bookings {
		if d, err := ParseBookingDate(b.Date); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// FormatBookingDate renders the calendar date of t as YYYY-MM-DD.
func FormatBookingDate(t time.Time) string {
	return t.Format(BookingDateLayout)
}

// ParseBookingDate accepts a plain date or a full ISO-8601 timestamp and
// returns midnight UTC of the calendar date as written. A timestamp is not
// shifted to UTC first, so "2025-01-06T00:00:00+05:30" stays on the 6th.
func ParseBookingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(BookingDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// SameDay compares calendar dates, ignoring clock and location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (r BookingRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("session_id is required")
	}
	if _, err := ParseBookingDate(r.Date); err != nil {
		return err
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, r.Time)
	}
	if _, ok := LookupTimezone(r.Timezone); !ok {
		return fmt.Errorf("unknown timezone %q", r.Timezone)
	}
	return nil
}

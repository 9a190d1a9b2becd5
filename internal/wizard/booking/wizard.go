// Package booking drives a mentee through picking a date and start time for
// a session and submitting the booking once.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mentorhood/mentorhood/internal/availability"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

type State int

const (
	SelectingDate State = iota
	SelectingTime
	Submitting
	Confirmed
)

func (s State) String() string {
	switch s {
	case SelectingDate:
		return "selecting_date"
	case SelectingTime:
		return "selecting_time"
	case Submitting:
		return "submitting"
	case Confirmed:
		return "confirmed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrDateUnavailable = errors.New("date is not available for booking")
	ErrNoDate          = errors.New("select a date first")
	ErrTimeUnavailable = errors.New("time is not offered on the selected date")
	ErrUnknownTimezone = errors.New("unknown timezone")
	ErrIncomplete      = errors.New("date, time and timezone are required")
	ErrInFlight        = errors.New("booking is already being submitted")
	ErrConfirmed       = errors.New("booking already confirmed")
	ErrStale           = errors.New("booking result arrived after reset")
)

// Booker creates bookings on the server. The key stays the same across
// resubmits of an unchanged selection so a retry cannot create a second
// booking.
type Booker interface {
	CreateBooking(ctx context.Context, req domain.BookingRequest, idempotencyKey string) (domain.BookingResponse, error)
}

type Options struct {
	WindowDays int
	Now        func() time.Time
	// AlreadyBooked are dates the requester holds for this session. They
	// are shown to the user but never block a selection.
	AlreadyBooked []time.Time
}

type Wizard struct {
	mu sync.Mutex

	session    domain.Session
	booker     Booker
	identity   domain.Identity
	now        func() time.Time
	windowDays int
	booked     []time.Time

	state          State
	date           time.Time
	hasDate        bool
	slot           string
	timezone       domain.Timezone
	idempotencyKey string
	keyFor         string
	generation     uint64
	meetingLink    string
	lastErr        error
}

func New(session domain.Session, booker Booker, identity domain.Identity, opts Options) *Wizard {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = availability.DefaultWindowDays
	}
	return &Wizard{
		session:        session,
		booker:         booker,
		identity:       identity,
		now:            opts.Now,
		windowDays:     opts.WindowDays,
		booked:         opts.AlreadyBooked,
		state:          SelectingDate,
		timezone:       domain.DefaultTimezone(),
	}
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Dates lists the bookable dates in the current window.
func (w *Wizard) Dates() []time.Time {
	return availability.BookableDates(w.session, w.now(), w.windowDays)
}

// Times lists start times for the selected date, nil before a date is chosen.
func (w *Wizard) Times() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.hasDate {
		return nil
	}
	return availability.SlotStarts(w.session, w.date)
}

func (w *Wizard) Selection() (date time.Time, slot string, tz domain.Timezone, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.date, w.slot, w.timezone, w.hasDate
}

func (w *Wizard) MeetingLink() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.meetingLink
}

// LastError is the failure from the most recent submit, if any.
func (w *Wizard) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

func (w *Wizard) IsDateAlreadyBooked(date time.Time) bool {
	for _, d := range w.booked {
		if domain.SameDay(d, date) {
			return true
		}
	}
	return false
}

func (w *Wizard) editable() error {
	switch w.state {
	case Submitting:
		return ErrInFlight
	case Confirmed:
		return ErrConfirmed
	}
	return nil
}

// SelectDate accepts a date inside the window whose weekday is open. Any
// previously chosen time is cleared.
func (w *Wizard) SelectDate(date time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	if !availability.InWindow(w.now(), date, w.windowDays) || !availability.IsDateAvailable(w.session, date) {
		return ErrDateUnavailable
	}

	w.date = date
	w.hasDate = true
	w.slot = ""
	w.state = SelectingTime
	return nil
}

func (w *Wizard) SelectTime(slot string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	if !w.hasDate {
		return ErrNoDate
	}
	if !availability.IsSlotStart(w.session, w.date, slot) {
		return ErrTimeUnavailable
	}
	w.slot = slot
	return nil
}

func (w *Wizard) SelectTimezone(value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	tz, ok := domain.LookupTimezone(value)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTimezone, value)
	}
	w.timezone = tz
	return nil
}

// Submit sends the booking exactly once. On failure the wizard returns to
// SelectingTime with its selections intact.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if err := w.editable(); err != nil {
		w.mu.Unlock()
		return err
	}
	if !w.hasDate || w.slot == "" || w.timezone.Value == "" ||
		!availability.IsDateAvailable(w.session, w.date) {
		w.mu.Unlock()
		return ErrIncomplete
	}

	req := domain.BookingRequest{
		SessionID:   w.session.ID,
		Date:        domain.FormatBookingDate(w.date),
		Time:        w.slot,
		Timezone:    w.timezone.Value,
		Email:       w.identity.Email,
		SessionData: w.session.Snapshot(),
	}
	key := w.keyForRequest(req)
	gen := w.generation
	w.state = Submitting
	w.lastErr = nil
	w.mu.Unlock()

	resp, err := w.booker.CreateBooking(ctx, req, key)

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		logger.InfoContext(ctx, "Discarding stale booking result", "session_id", req.SessionID)
		return ErrStale
	}
	if err != nil {
		w.state = SelectingTime
		w.lastErr = err
		logger.WarnContext(ctx, "Booking submit failed", "session_id", req.SessionID, "error", err)
		return fmt.Errorf("create booking: %w", err)
	}

	w.state = Confirmed
	w.meetingLink = resp.MeetingLink
	logger.InfoContext(ctx, "Booking confirmed", "session_id", req.SessionID, "date", req.Date, "time", req.Time)
	return nil
}

// keyForRequest returns the idempotency key for req, minting a new one
// whenever date, time or timezone differ from the last submitted selection.
func (w *Wizard) keyForRequest(req domain.BookingRequest) string {
	fp := req.Date + "|" + req.Time + "|" + req.Timezone
	if w.idempotencyKey == "" || w.keyFor != fp {
		w.idempotencyKey = uuid.NewString()
		w.keyFor = fp
	}
	return w.idempotencyKey
}

// Reset returns an unconfirmed wizard to SelectingDate. A submit still in
// flight is abandoned and its result discarded. The next submit uses a
// fresh idempotency key.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Confirmed {
		return ErrConfirmed
	}
	w.generation++
	w.state = SelectingDate
	w.date = time.Time{}
	w.hasDate = false
	w.slot = ""
	w.lastErr = nil
	w.idempotencyKey = ""
	w.keyFor = ""
	return nil
}

// Package authoring is the three-step editor mentors use to create or edit
// a session offering: details, weekly availability grid, review. Create and
// edit differ only in the injected Loader and Submitter.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

type Step int

const (
	Details Step = iota
	Availability
	Review
	Submitting
	Done
)

var stepNames = [...]string{"details", "availability", "review", "submitting", "done"}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
)

var (
	ErrDescriptionRequired = errors.New("description is required")
	ErrWrongStep           = errors.New("operation not allowed in this step")
	ErrLastRange           = errors.New("a day must keep at least one time range")
	ErrRangeIndex          = errors.New("time range index out of bounds")
	ErrUnknownDay          = errors.New("unknown weekday")
	ErrUnknownField        = errors.New("time range field must be start or end")
	ErrNotConfirmed        = errors.New("delete requires confirmation")
	ErrNotEditing          = errors.New("only saved sessions can be deleted")
	ErrInFlight            = errors.New("a save is already in progress")
)

// DetailsForm is the editable first step.
type DetailsForm struct {
	Name              string
	Description       string
	Duration          int
	Kind              domain.SessionKind
	NumberOfSessions  int
	Occurrence        string
	Topics            []string
	AllowMenteeTopics bool
	ShowOnProfile     bool
	IsPaid            bool
	Price             int
}

type Options struct {
	// Deleter enables Delete; leave nil when creating.
	Deleter SessionDeleter
}

type Wizard struct {
	mu sync.Mutex

	submitter Submitter
	deleter   SessionDeleter

	step    Step
	session domain.Session
	lastErr error
	deleted bool
}

// New loads the initial session and opens the wizard on Details.
func New(ctx context.Context, loader Loader, submitter Submitter, opts Options) (*Wizard, error) {
	s, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.TimeSlots == nil {
		s.TimeSlots = domain.NewWeeklyAvailability()
	}
	return &Wizard{
		submitter: submitter,
		deleter:   opts.Deleter,
		step:      Details,
		session:   s,
	}, nil
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

func (w *Wizard) Deleted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deleted
}

// Session returns a copy of the session as currently edited.
func (w *Wizard) Session() domain.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Clone()
}

func (w *Wizard) Form() DetailsForm {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.session
	return DetailsForm{
		Name:              s.Name,
		Description:       s.Description,
		Duration:          s.Duration,
		Kind:              s.Kind,
		NumberOfSessions:  s.NumberOfSessions,
		Occurrence:        s.Occurrence,
		Topics:            append([]string(nil), s.Topics...),
		AllowMenteeTopics: s.AllowMenteeTopics,
		ShowOnProfile:     s.ShowOnProfile,
		IsPaid:            s.IsPaid,
		Price:             s.Price,
	}
}

// SetDetails replaces the details step fields. Validation happens on Next.
func (w *Wizard) SetDetails(f DetailsForm) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != Details {
		return ErrWrongStep
	}
	w.session.Name = f.Name
	w.session.Description = f.Description
	w.session.Duration = f.Duration
	w.session.Kind = f.Kind
	w.session.NumberOfSessions = f.NumberOfSessions
	w.session.Occurrence = f.Occurrence
	w.session.Topics = append([]string(nil), f.Topics...)
	w.session.AllowMenteeTopics = f.AllowMenteeTopics
	w.session.ShowOnProfile = f.ShowOnProfile
	w.session.IsPaid = f.IsPaid
	w.session.Price = f.Price
	return nil
}

// Next advances one step. Leaving Details needs a description and sane
// duration, kind and price; topics are optional.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case Details:
		if err := validateDetails(w.session); err != nil {
			return err
		}
		w.step = Availability
	case Availability:
		w.step = Review
	default:
		return ErrWrongStep
	}
	return nil
}

func validateDetails(s domain.Session) error {
	if strings.TrimSpace(s.Description) == "" {
		return ErrDescriptionRequired
	}
	if s.Duration <= 0 {
		return domain.ErrInvalidDuration
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidKind, s.Kind)
	}
	if s.Price < 0 {
		return domain.ErrNegativePrice
	}
	return nil
}

func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case Availability:
		w.step = Details
	case Review:
		w.step = Availability
	default:
		return ErrWrongStep
	}
	return nil
}

// entry returns a pointer into the grid for day; caller holds the lock.
func (w *Wizard) entry(day domain.Weekday) (*domain.DayAvailability, error) {
	if w.step != Availability {
		return nil, ErrWrongStep
	}
	i := w.session.TimeSlots.Index(day)
	if i < 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDay, day)
	}
	return &w.session.TimeSlots[i], nil
}

// ToggleDay flips a day open or closed. Opening a day with no ranges seeds
// the default 09:00-17:00 range; closing keeps ranges for a later reopen.
func (w *Wizard) ToggleDay(day domain.Weekday) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.entry(day)
	if err != nil {
		return err
	}
	e.Available = !e.Available
	if e.Available && len(e.TimeRanges) == 0 {
		e.TimeRanges = []domain.TimeRange{domain.DefaultTimeRange}
	}
	return nil
}

func (w *Wizard) AddTimeRange(day domain.Weekday) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.entry(day)
	if err != nil {
		return err
	}
	e.TimeRanges = append(e.TimeRanges, domain.DefaultTimeRange)
	return nil
}

// RemoveTimeRange deletes one range. The last range of a day cannot be
// removed; close the day instead.
func (w *Wizard) RemoveTimeRange(day domain.Weekday, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.entry(day)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(e.TimeRanges) {
		return ErrRangeIndex
	}
	if len(e.TimeRanges) < 2 {
		return ErrLastRange
	}
	e.TimeRanges = append(e.TimeRanges[:index:index], e.TimeRanges[index+1:]...)
	return nil
}

// UpdateTimeRange replaces one bound verbatim. Values are not checked for
// format or ordering.
func (w *Wizard) UpdateTimeRange(day domain.Weekday, index int, field Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, err := w.entry(day)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(e.TimeRanges) {
		return ErrRangeIndex
	}
	switch field {
	case FieldStart:
		e.TimeRanges[index].Start = value
	case FieldEnd:
		e.TimeRanges[index].End = value
	default:
		return ErrUnknownField
	}
	return nil
}

// ReviewDay is one open day as shown on the review step.
type ReviewDay struct {
	Label  string
	Ranges []domain.TimeRange
}

// Review returns the read-only session and its open days.
func (w *Wizard) Review() (domain.Session, []ReviewDay, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != Review {
		return domain.Session{}, nil, ErrWrongStep
	}
	s := w.session.Clone()
	var days []ReviewDay
	for _, e := range s.TimeSlots.AvailableDays() {
		label := e.Day
		if d, ok := e.Weekday(); ok {
			label = d.Label()
		}
		days = append(days, ReviewDay{Label: label, Ranges: e.TimeRanges})
	}
	return s, days, nil
}

// Submit saves the reviewed session with one call. Failure returns the
// wizard to Review.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.step == Submitting {
		w.mu.Unlock()
		return ErrInFlight
	}
	if w.step != Review {
		w.mu.Unlock()
		return ErrWrongStep
	}
	payload := w.session.Clone()
	w.step = Submitting
	w.lastErr = nil
	w.mu.Unlock()

	saved, err := w.submitter.Submit(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.step = Review
		w.lastErr = err
		logger.WarnContext(ctx, "Session save failed", "session_id", payload.ID, "error", err)
		return fmt.Errorf("save session: %w", err)
	}
	if saved.ID != "" {
		w.session = saved
		if w.session.TimeSlots == nil {
			w.session.TimeSlots = payload.TimeSlots
		}
	}
	w.step = Done
	logger.InfoContext(ctx, "Session saved", "session_id", w.session.ID)
	return nil
}

// Delete removes a saved session after explicit confirmation. Failures are
// logged and returned with the wizard left as it was.
func (w *Wizard) Delete(ctx context.Context, confirmed bool) error {
	w.mu.Lock()
	id := w.session.ID
	step := w.step
	w.mu.Unlock()

	if w.deleter == nil || id == "" {
		return ErrNotEditing
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if step == Submitting {
		return ErrInFlight
	}

	if err := w.deleter.DeleteSession(ctx, id); err != nil {
		logger.ErrorContext(ctx, "Failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	w.mu.Lock()
	w.deleted = true
	w.step = Done
	w.mu.Unlock()
	return nil
}

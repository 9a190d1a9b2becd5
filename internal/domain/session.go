package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type SessionKind string

const (
	SessionOneTime   SessionKind = "one-time"
	SessionRecurring SessionKind = "recurring"
	SessionWorkshop  SessionKind = "workshop"
)

func (k SessionKind) Valid() bool {
	switch k {
	case SessionOneTime, SessionRecurring, SessionWorkshop:
		return true
	}
	return false
}

var (
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrInvalidKind     = errors.New("unknown session kind")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrMissingMentor   = errors.New("session has no mentor")
	ErrNotOwner        = errors.New("session belongs to another mentor")
)

// MentorProfile is the mentor display snapshot carried with a session.
type MentorProfile struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Company string `json:"company"`
	Image   string `json:"image"`
}

type Session struct {
	ID                string             `json:"_id"`
	MentorID          string             `json:"mentorId"`
	Name              string             `json:"sessionName"`
	Description       string             `json:"description"`
	Duration          int                `json:"duration"`
	Kind              SessionKind        `json:"sessionType"`
	NumberOfSessions  int                `json:"numberOfSessions"`
	Occurrence        string             `json:"occurrence,omitempty"`
	Topics            []string           `json:"topics"`
	AllowMenteeTopics bool               `json:"allowMenteeTopics"`
	ShowOnProfile     bool               `json:"showOnProfile"`
	IsPaid            bool               `json:"isPaid"`
	Price             int                `json:"price"`
	Mentor            MentorProfile      `json:"mentor"`
	TimeSlots         WeeklyAvailability `json:"timeSlots"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// NewSession is the blank offering the authoring wizard starts from.
func NewSession(mentorID string) Session {
	return Session{
		MentorID:         mentorID,
		Duration:         30,
		Kind:             SessionOneTime,
		NumberOfSessions: 1,
		Topics:           []string{},
		ShowOnProfile:    true,
		TimeSlots:        NewWeeklyAvailability(),
	}
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.MentorID) == "" {
		return ErrMissingMentor
	}
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, s.Kind)
	}
	if s.Price < 0 {
		return ErrNegativePrice
	}
	return s.TimeSlots.Validate()
}

// EffectivePrice is zero for free sessions regardless of the stored price.
func (s Session) EffectivePrice() int {
	if !s.IsPaid {
		return 0
	}
	return s.Price
}

func (s Session) Owner(mentorID string) bool {
	return s.MentorID != "" && s.MentorID == mentorID
}

// Clone copies the session with its own topics and grid.
func (s Session) Clone() Session {
	out := s
	out.Topics = append([]string(nil), s.Topics...)
	out.TimeSlots = s.TimeSlots.Clone()
	return out
}

// Snapshot builds the denormalized display copy sent along with bookings.
func (s Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:          s.ID,
		Title:       s.Name,
		Description: s.Description,
		Duration:    fmt.Sprintf("%d min", s.Duration),
		Tag:         string(s.Kind),
		Mentor:      s.Mentor,
	}
}

package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrAlreadyRegistered = errors.New("you are already registered for this session")
	ErrSessionFull       = errors.New("session is full")
	ErrAMANotFound       = errors.New("ama session not found")
	ErrNotHost           = errors.New("ama session belongs to another host")
)

// AMASession is a scheduled group "ask me anything" session with a fixed
// number of seats.
type AMASession struct {
	ID             string        `json:"_id"`
	HostID         string        `json:"hostId"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Mentor         MentorProfile `json:"mentor"`
	Date           string        `json:"date"`
	Time           string        `json:"time"`
	Duration       string        `json:"duration"`
	Registrants    int           `json:"registrants"`
	MaxRegistrants int           `json:"maxRegistrants"`
	Questions      []string      `json:"questions"`
	IsWomanTech    bool          `json:"isWomanTech"`
	SessionName    string        `json:"sessionName,omitempty"`
	SessionType    string        `json:"sessionType,omitempty"`
	IsPaid         bool          `json:"isPaid"`
	Price          int           `json:"price"`
	TokenPrice     int           `json:"tokenPrice"`
	Topics         []string      `json:"topics"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (a *AMASession) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	if a.Questions == nil {
		a.Questions = []string{}
	}
	if a.Topics == nil {
		a.Topics = []string{}
	}
}

func (a AMASession) Validate() error {
	switch {
	case a.Title == "":
		return errors.New("title is required")
	case a.Description == "":
		return errors.New("description is required")
	case a.MaxRegistrants <= 0:
		return errors.New("maxRegistrants must be positive")
	case a.Price < 0 || a.TokenPrice < 0:
		return ErrNegativePrice
	}
	return nil
}

func (a AMASession) Full() bool {
	return a.Registrants >= a.MaxRegistrants
}

type RegistrationRequest struct {
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	Name      string `json:"name,omitempty"`
	Company   string `json:"company,omitempty"`
	Role      string `json:"role,omitempty"`
}

func (r RegistrationRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("session_id is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	return nil
}

// Registration is one seat in an AMA session. Session and host details are
// copied in at registration time.
type Registration struct {
	ID              string    `json:"_id"`
	SessionID       string    `json:"session_id"`
	Email           string    `json:"email"`
	Name            string    `json:"name,omitempty"`
	Company         string    `json:"company,omitempty"`
	Role            string    `json:"role,omitempty"`
	MeetingID       string    `json:"meeting_id"`
	MeetingLink     string    `json:"meeting_link"`
	SessionTitle    string    `json:"session_title"`
	SessionDate     string    `json:"session_date"`
	SessionTime     string    `json:"session_time"`
	SessionDuration string    `json:"session_duration"`
	MentorName      string    `json:"mentor_name"`
	MentorRole      string    `json:"mentor_role"`
	MentorCompany   string    `json:"mentor_company"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FillFrom copies the session snapshot onto the registration.
func (r *Registration) FillFrom(a AMASession) {
	r.SessionTitle = a.Title
	r.SessionDate = a.Date
	r.SessionTime = a.Time
	r.SessionDuration = a.Duration
	r.MentorName = a.Mentor.Name
	r.MentorRole = a.Mentor.Role
	r.MentorCompany = a.Mentor.Company
}

package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrMentorNameRequired = errors.New("mentor name is required")

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Resource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	LinkText    string `json:"linkText"`
}

// MentorService is a priced offering listed on a profile.
type MentorService struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Duration  string   `json:"duration"`
	Type      string   `json:"type"`
	Frequency string   `json:"frequency"`
	Sessions  int      `json:"sessions"`
	Price     float64  `json:"price"`
	Rating    *float64 `json:"rating,omitempty"`
}

type GroupSession struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	Participants    int     `json:"participants"`
	MaxParticipants int     `json:"maxParticipants"`
	Price           float64 `json:"price"`
}

type Achievement struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type ReviewUser struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Role  string `json:"role"`
}

type Review struct {
	ID      int        `json:"id"`
	User    ReviewUser `json:"user"`
	Rating  float64    `json:"rating"`
	Comment string     `json:"comment"`
	Date    string     `json:"date"`
}

type Testimonial struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	Comment string `json:"comment"`
}

// MentorDetails is the free-form part of a profile, stored as one document.
type MentorDetails struct {
	Image         string          `json:"image,omitempty"`
	Experience    []Experience    `json:"experience"`
	Projects      []Project       `json:"projects"`
	Resources     []Resource      `json:"resources"`
	Services      []MentorService `json:"services"`
	GroupSessions []GroupSession  `json:"groupSessions"`
	Achievements  []Achievement   `json:"achievements"`
	Reviews       []Review        `json:"reviews"`
	Testimonials  []Testimonial   `json:"testimonials"`
}

// Mentor is the public profile keyed by the owning user's id.
type Mentor struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Headline   string `json:"headline"`
	Membership string `json:"membership"`
	MentorDetails
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims the header fields and replaces nil lists with empty ones
// so the profile always serializes with arrays.
func (m *Mentor) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Headline = strings.TrimSpace(m.Headline)
	m.Membership = strings.TrimSpace(m.Membership)
	d := &m.MentorDetails
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Resources == nil {
		d.Resources = []Resource{}
	}
	if d.Services == nil {
		d.Services = []MentorService{}
	}
	if d.GroupSessions == nil {
		d.GroupSessions = []GroupSession{}
	}
	if d.Achievements == nil {
		d.Achievements = []Achievement{}
	}
	if d.Reviews == nil {
		d.Reviews = []Review{}
	}
	if d.Testimonials == nil {
		d.Testimonials = []Testimonial{}
	}
}

func (m Mentor) Validate() error {
	if m.Name == "" {
		return ErrMentorNameRequired
	}
	return nil
}

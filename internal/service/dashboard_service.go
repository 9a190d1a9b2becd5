package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
	"github.com/mentorhood/mentorhood/internal/utils"
)

const (
	dashboardListLimit      = 5
	defaultDashboardMinutes = 45
)

type DashboardService interface {
	MenteeDashboard(ctx context.Context, email string) (*domain.MenteeDashboard, error)
}

type dashboardService struct {
	userRepo    postgres.UserRepository
	bookingRepo postgres.BookingRepository
	sessionRepo postgres.SessionRepository
	now         func() time.Time
}

func NewDashboardService(userRepo postgres.UserRepository, bookingRepo postgres.BookingRepository, sessionRepo postgres.SessionRepository) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		sessionRepo: sessionRepo,
		now:         time.Now,
	}
}

// MenteeDashboard splits the mentee's bookings around today (UTC): bookings
// dated today or later are upcoming, earlier ones count as completed.
func (s *dashboardService) MenteeDashboard(ctx context.Context, email string) (*domain.MenteeDashboard, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return nil, invalid(errors.New("email is required"))
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}

	bookings, err := s.bookingRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	today := domain.FormatBookingDate(s.now().UTC())
	var upcoming, past []domain.Booking
	for _, b := range bookings {
		if b.Date >= today {
			upcoming = append(upcoming, b)
		} else {
			past = append(past, b)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return bookingKey(upcoming[i]) < bookingKey(upcoming[j]) })
	sort.SliceStable(past, func(i, j int) bool { return bookingKey(past[i]) > bookingKey(past[j]) })

	sessions := map[string]*domain.Session{}
	lookup := func(id string) (*domain.Session, error) {
		if sess, ok := sessions[id]; ok {
			return sess, nil
		}
		sess, err := s.sessionRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		sessions[id] = sess
		return sess, nil
	}

	out := &domain.MenteeDashboard{
		User:              domain.DashboardUser{Name: user.Username, Email: user.Email},
		UpcomingSessions:  []domain.DashboardSession{},
		CompletedSessions: []domain.DashboardSession{},
		LearningProgress:  domain.LearningProgress{SkillsImproved: []string{}},
	}

	for i, b := range upcoming {
		if i == dashboardListLimit {
			break
		}
		sess, err := lookup(b.SessionID)
		if err != nil {
			return nil, err
		}
		out.UpcomingSessions = append(out.UpcomingSessions, dashboardEntry(b, sess))
	}

	seen := map[string]bool{}
	var minutes int
	for i, b := range past {
		sess, err := lookup(b.SessionID)
		if err != nil {
			return nil, err
		}
		if i < dashboardListLimit {
			out.CompletedSessions = append(out.CompletedSessions, dashboardEntry(b, sess))
		}
		minutes += sessionMinutes(sess)
		if sess == nil {
			continue
		}
		for _, topic := range sess.Topics {
			if topic != "" && !seen[topic] {
				seen[topic] = true
				out.LearningProgress.SkillsImproved = append(out.LearningProgress.SkillsImproved, topic)
			}
		}
	}
	out.LearningProgress.SessionsCompleted = len(past)
	out.LearningProgress.TotalHours = float64(minutes) / 60

	return out, nil
}

func bookingKey(b domain.Booking) string {
	return b.Date + " " + b.Time
}

func sessionMinutes(sess *domain.Session) int {
	if sess == nil || sess.Duration <= 0 {
		return defaultDashboardMinutes
	}
	return sess.Duration
}

func dashboardEntry(b domain.Booking, sess *domain.Session) domain.DashboardSession {
	entry := domain.DashboardSession{
		ID:          b.ID,
		Title:       "Mentorship Session",
		Mentor:      "Mentor",
		Date:        b.Date,
		Time:        b.Time,
		Timezone:    b.Timezone,
		Duration:    fmt.Sprintf("%d min", sessionMinutes(sess)),
		Status:      "confirmed",
		MeetingLink: b.MeetingLink,
	}
	if sess == nil {
		return entry
	}
	if sess.Name != "" {
		entry.Title = sess.Name
	}
	if sess.Mentor.Name != "" {
		entry.Mentor = sess.Mentor.Name
	}
	entry.MentorRole = strings.TrimSpace(strings.Join(nonEmpty(sess.Mentor.Role, sess.Mentor.Company), " at "))
	entry.Image = sess.Mentor.Image
	return entry
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentorhood/mentorhood/internal/availability"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
	"github.com/mentorhood/mentorhood/internal/utils"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req *domain.BookingRequest, idempotencyKey string) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, sessionID string, limit, offset int) ([]domain.Booking, error)
	CheckBookings(ctx context.Context, sessionID, email string) (*domain.BookingCheck, error)
	CleanupIdempotency(ctx context.Context) (int64, error)
}

type bookingService struct {
	bookingRepo     postgres.BookingRepository
	sessionRepo     postgres.SessionRepository
	idempotencyRepo postgres.IdempotencyRepository
	eventBus        events.Publisher
	config          *config.Config
	now             func() time.Time
}

func NewBookingService(
	bookingRepo postgres.BookingRepository,
	sessionRepo postgres.SessionRepository,
	idempotencyRepo postgres.IdempotencyRepository,
	eventBus events.Publisher,
	config *config.Config,
) BookingService {
	return &bookingService{
		bookingRepo:     bookingRepo,
		sessionRepo:     sessionRepo,
		idempotencyRepo: idempotencyRepo,
		eventBus:        eventBus,
		config:          config,
		now:             time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *domain.BookingRequest, idempotencyKey string) (*domain.Booking, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	if req.Email == "" {
		return nil, invalid(errors.New("email is required"))
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, invalid(errors.New("invalid email format"))
	}

	if idempotencyKey != "" {
		existingID, err := s.idempotencyRepo.Lookup(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if existingID != "" {
			return s.replay(ctx, existingID, req)
		}
	}

	session, err := s.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", req.SessionID, ErrNotFound)
	}

	date, _ := domain.ParseBookingDate(req.Date)
	if err := s.checkSlot(*session, date, req.Time); err != nil {
		return nil, invalid(err)
	}

	meetingID := uuid.NewString()
	booking, err := s.bookingRepo.Create(ctx, &domain.Booking{
		ID:          uuid.NewString(),
		SessionID:   session.ID,
		Date:        domain.FormatBookingDate(date),
		Time:        req.Time,
		Timezone:    req.Timezone,
		Email:       req.Email,
		MeetingID:   meetingID,
		MeetingLink: strings.TrimRight(s.config.Booking.MeetingBaseURL, "/") + "/" + meetingID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if idempotencyKey != "" {
		if err := s.idempotencyRepo.Remember(ctx, idempotencyKey, booking.ID); err != nil {
			logger.ErrorContext(ctx, "Failed to store idempotency record", "error", err, "booking_id", booking.ID)
		}
	}

	snap := session.Snapshot()
	event := events.BookingCreatedEvent{
		BookingID:    booking.ID,
		SessionID:    booking.SessionID,
		Email:        booking.Email,
		Date:         booking.Date,
		Time:         booking.Time,
		Timezone:     booking.Timezone,
		MeetingLink:  booking.MeetingLink,
		SessionTitle: snap.Title,
		Description:  snap.Description,
		Duration:     snap.Duration,
		Tag:          snap.Tag,
		Mentor: events.MentorSnapshot{
			Name:    snap.Mentor.Name,
			Role:    snap.Mentor.Role,
			Company: snap.Mentor.Company,
			Image:   snap.Mentor.Image,
		},
		CreatedAt: booking.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

// replay returns the booking stored under an idempotency key, provided the
// new request asks for the same slot.
func (s *bookingService) replay(ctx context.Context, bookingID string, req *domain.BookingRequest) (*domain.Booking, error) {
	existing, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load idempotent booking: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	date, _ := domain.ParseBookingDate(req.Date)
	if existing.SessionID != req.SessionID ||
		existing.Date != domain.FormatBookingDate(date) ||
		existing.Time != req.Time ||
		existing.Timezone != req.Timezone ||
		existing.Email != req.Email {
		logger.WarnContext(ctx, "Idempotency key reused for a different booking", "booking_id", bookingID)
		return nil, fmt.Errorf("%w: idempotency key already used for another booking", ErrConflict)
	}
	logger.InfoContext(ctx, "Replaying idempotent booking", "booking_id", bookingID)
	return existing, nil
}

// checkSlot rejects dates outside the booking window, closed weekdays and
// times that are not a range start. The window runs from today (UTC) through
// today+days+1 so callers in any listed timezone can book the dates they were
// offered.
func (s *bookingService) checkSlot(session domain.Session, date time.Time, at string) error {
	days := s.config.Booking.WindowDays
	if days <= 0 {
		days = availability.DefaultWindowDays
	}
	if !availability.InWindow(s.now().UTC().AddDate(0, 0, -1), date, days+2) {
		return fmt.Errorf("%w: %s is outside the %d day booking window", domain.ErrInvalidDate, domain.FormatBookingDate(date), days)
	}
	if !availability.IsDateAvailable(session, date) {
		return fmt.Errorf("%w: session is not offered on %s", domain.ErrInvalidDate, availability.WeekdayKeyOf(date).Label())
	}
	if !availability.IsSlotStart(session, date, at) {
		return fmt.Errorf("%w: %s is not an offered start time", domain.ErrInvalidTime, at)
	}
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return b, nil
}

func (s *bookingService) ListBookings(ctx context.Context, sessionID string, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.bookingRepo.List(ctx, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return out, nil
}

func (s *bookingService) CheckBookings(ctx context.Context, sessionID, email string) (*domain.BookingCheck, error) {
	email = utils.NormalizeEmail(email)
	if sessionID == "" || email == "" {
		return nil, invalid(errors.New("session id and email are required"))
	}
	out, err := s.bookingRepo.ListBySessionAndEmail(ctx, sessionID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check bookings: %w", err)
	}
	if out == nil {
		out = []domain.Booking{}
	}
	return &domain.BookingCheck{HasBookings: len(out) > 0, Bookings: out}, nil
}

func (s *bookingService) CleanupIdempotency(ctx context.Context) (int64, error) {
	n, err := s.idempotencyRepo.CleanupExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clean idempotency keys: %w", err)
	}
	return n, nil
}

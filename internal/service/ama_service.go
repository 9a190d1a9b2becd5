package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
	"github.com/mentorhood/mentorhood/internal/utils"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

// AMAService manages group AMA sessions and the seats taken in them.
type AMAService interface {
	ListSessions(ctx context.Context, womanTech *bool) ([]domain.AMASession, error)
	GetSession(ctx context.Context, id string) (*domain.AMASession, error)
	CreateSession(ctx context.Context, hostID string, a *domain.AMASession) (*domain.AMASession, error)
	UpdateSession(ctx context.Context, hostID, id string, a *domain.AMASession) (*domain.AMASession, error)
	DeleteSession(ctx context.Context, hostID, id string) error

	Register(ctx context.Context, req *domain.RegistrationRequest) (*domain.Registration, error)
	IsRegistered(ctx context.Context, sessionID, email string) (bool, error)
	ListRegistrations(ctx context.Context, sessionID string) ([]domain.Registration, error)
}

type amaService struct {
	amaRepo  postgres.AMARepository
	eventBus events.Publisher
	config   *config.Config
}

func NewAMAService(amaRepo postgres.AMARepository, eventBus events.Publisher, config *config.Config) AMAService {
	return &amaService{amaRepo: amaRepo, eventBus: eventBus, config: config}
}

func (s *amaService) ListSessions(ctx context.Context, womanTech *bool) ([]domain.AMASession, error) {
	out, err := s.amaRepo.List(ctx, womanTech)
	if err != nil {
		return nil, fmt.Errorf("failed to list ama sessions: %w", err)
	}
	if out == nil {
		out = []domain.AMASession{}
	}
	return out, nil
}

func (s *amaService) GetSession(ctx context.Context, id string) (*domain.AMASession, error) {
	a, err := s.amaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ama session: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("ama session %s: %w", id, ErrNotFound)
	}
	return a, nil
}

func (s *amaService) CreateSession(ctx context.Context, hostID string, in *domain.AMASession) (*domain.AMASession, error) {
	in.ID = uuid.NewString()
	in.HostID = hostID
	in.Registrants = 0
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	out, err := s.amaRepo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create ama session: %w", err)
	}
	return out, nil
}

func (s *amaService) UpdateSession(ctx context.Context, hostID, id string, in *domain.AMASession) (*domain.AMASession, error) {
	existing, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.HostID != hostID {
		return nil, domain.ErrNotHost
	}

	in.ID = existing.ID
	in.HostID = existing.HostID
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	if in.MaxRegistrants < existing.Registrants {
		return nil, invalid(fmt.Errorf("maxRegistrants cannot drop below the %d registered", existing.Registrants))
	}

	out, err := s.amaRepo.Update(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update ama session: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("ama session %s: %w", id, ErrNotFound)
	}
	return out, nil
}

func (s *amaService) DeleteSession(ctx context.Context, hostID, id string) error {
	existing, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if existing.HostID != hostID {
		return domain.ErrNotHost
	}
	ok, err := s.amaRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete ama session: %w", err)
	}
	if !ok {
		return fmt.Errorf("ama session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *amaService) Register(ctx context.Context, req *domain.RegistrationRequest) (*domain.Registration, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, invalid(errors.New("invalid email format"))
	}

	meetingID := uuid.NewString()
	reg, err := s.amaRepo.Register(ctx, &domain.Registration{
		ID:          uuid.NewString(),
		SessionID:   req.SessionID,
		Email:       req.Email,
		Name:        strings.TrimSpace(req.Name),
		Company:     strings.TrimSpace(req.Company),
		Role:        strings.TrimSpace(req.Role),
		MeetingID:   meetingID,
		MeetingLink: strings.TrimRight(s.config.Booking.MeetingBaseURL, "/") + "/" + meetingID,
	})
	switch {
	case errors.Is(err, domain.ErrAMANotFound):
		return nil, fmt.Errorf("ama session %s: %w", req.SessionID, ErrNotFound)
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrSessionFull):
		return nil, invalid(err)
	case err != nil:
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	event := events.RegistrationCreatedEvent{
		RegistrationID: reg.ID,
		SessionID:      reg.SessionID,
		Email:          reg.Email,
		Name:           reg.Name,
		Title:          reg.SessionTitle,
		Date:           reg.SessionDate,
		Time:           reg.SessionTime,
		Duration:       reg.SessionDuration,
		MeetingLink:    reg.MeetingLink,
		Mentor: events.MentorSnapshot{
			Name:    reg.MentorName,
			Role:    reg.MentorRole,
			Company: reg.MentorCompany,
		},
		CreatedAt: reg.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.RegistrationCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish registration event", "error", err, "registration_id", reg.ID)
	}
	return reg, nil
}

func (s *amaService) IsRegistered(ctx context.Context, sessionID, email string) (bool, error) {
	email = utils.NormalizeEmail(email)
	if sessionID == "" || email == "" {
		return false, invalid(errors.New("session id and email are required"))
	}
	ok, err := s.amaRepo.IsRegistered(ctx, sessionID, email)
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return ok, nil
}

func (s *amaService) ListRegistrations(ctx context.Context, sessionID string) ([]domain.Registration, error) {
	out, err := s.amaRepo.ListRegistrations(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	if out == nil {
		out = []domain.Registration{}
	}
	return out, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

type SessionService interface {
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	ListMentorSessions(ctx context.Context, mentorID string) ([]domain.Session, error)
	CreateSession(ctx context.Context, mentorID string, s *domain.Session) (*domain.Session, error)
	UpdateSession(ctx context.Context, mentorID, id string, s *domain.Session) (*domain.Session, error)
	DeleteSession(ctx context.Context, mentorID, id string) error
}

type sessionService struct {
	sessionRepo postgres.SessionRepository
	eventBus    events.Publisher
}

func NewSessionService(sessionRepo postgres.SessionRepository, eventBus events.Publisher) SessionService {
	return &sessionService{sessionRepo: sessionRepo, eventBus: eventBus}
}

func (s *sessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	out, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return out, nil
}

func (s *sessionService) ListMentorSessions(ctx context.Context, mentorID string) ([]domain.Session, error) {
	out, err := s.sessionRepo.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if out == nil {
		out = []domain.Session{}
	}
	return out, nil
}

// CreateSession stores a new offering owned by mentorID; any mentor id in
// the payload is ignored.
func (s *sessionService) CreateSession(ctx context.Context, mentorID string, in *domain.Session) (*domain.Session, error) {
	in.ID = uuid.NewString()
	in.MentorID = mentorID
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	out, err := s.sessionRepo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.publish(ctx, events.SessionCreated, out)
	return out, nil
}

func (s *sessionService) UpdateSession(ctx context.Context, mentorID, id string, in *domain.Session) (*domain.Session, error) {
	existing, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.Owner(mentorID) {
		return nil, domain.ErrNotOwner
	}

	in.ID = existing.ID
	in.MentorID = existing.MentorID
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	out, err := s.sessionRepo.Update(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	s.publish(ctx, events.SessionUpdated, out)
	return out, nil
}

func (s *sessionService) DeleteSession(ctx context.Context, mentorID, id string) error {
	existing, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Owner(mentorID) {
		return domain.ErrNotOwner
	}

	ok, err := s.sessionRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	s.publish(ctx, events.SessionDeleted, existing)
	return nil
}

func (s *sessionService) publish(ctx context.Context, subject string, sess *domain.Session) {
	event := events.SessionChangedEvent{SessionID: sess.ID, MentorID: sess.MentorID, At: time.Now().UTC()}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish session event", "error", err, "subject", subject, "session_id", sess.ID)
	}
}

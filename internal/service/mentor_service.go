package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
)

type MentorService interface {
	GetMentor(ctx context.Context, userID string) (*domain.Mentor, error)
	ListMentors(ctx context.Context) ([]domain.Mentor, error)
	SaveProfile(ctx context.Context, userID string, m *domain.Mentor) (*domain.Mentor, error)
}

type mentorService struct {
	mentorRepo postgres.MentorRepository
}

func NewMentorService(mentorRepo postgres.MentorRepository) MentorService {
	return &mentorService{mentorRepo: mentorRepo}
}

func (s *mentorService) GetMentor(ctx context.Context, userID string) (*domain.Mentor, error) {
	if userID == "" {
		return nil, invalid(errors.New("mentor id required"))
	}
	m, err := s.mentorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mentor: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("mentor profile %s: %w", userID, ErrNotFound)
	}
	return m, nil
}

func (s *mentorService) ListMentors(ctx context.Context) ([]domain.Mentor, error) {
	out, err := s.mentorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentors: %w", err)
	}
	if out == nil {
		out = []domain.Mentor{}
	}
	return out, nil
}

// SaveProfile creates or replaces the caller's own profile.
func (s *mentorService) SaveProfile(ctx context.Context, userID string, m *domain.Mentor) (*domain.Mentor, error) {
	m.UserID = userID
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, invalid(err)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	out, err := s.mentorRepo.Upsert(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to save mentor profile: %w", err)
	}
	return out, nil
}

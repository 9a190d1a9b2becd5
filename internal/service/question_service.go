package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
)

type QuestionService interface {
	List(ctx context.Context, f domain.QuestionFilter) ([]domain.Question, error)
	Get(ctx context.Context, id string) (*domain.Question, error)
	Create(ctx context.Context, req domain.QuestionCreate, asker *domain.Identity) (*domain.Question, error)
	Upvote(ctx context.Context, id string) (*domain.Question, error)
	Answer(ctx context.Context, questionID string, req domain.AnswerCreate) (*domain.Answer, error)
	Answers(ctx context.Context, questionID string) ([]domain.Answer, error)
	UpvoteAnswer(ctx context.Context, questionID, answerID string) (*domain.Answer, error)
}

type questionService struct {
	questionRepo postgres.QuestionRepository
}

func NewQuestionService(questionRepo postgres.QuestionRepository) QuestionService {
	return &questionService{questionRepo: questionRepo}
}

func (s *questionService) List(ctx context.Context, f domain.QuestionFilter) ([]domain.Question, error) {
	out, err := s.questionRepo.List(ctx, f.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if out == nil {
		out = []domain.Question{}
	}
	return out, nil
}

func (s *questionService) Get(ctx context.Context, id string) (*domain.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if q == nil {
		return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return q, nil
}

// Create credits the question to the signed-in asker when known, else to
// the author named in the payload.
func (s *questionService) Create(ctx context.Context, req domain.QuestionCreate, asker *domain.Identity) (*domain.Question, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	authors := []domain.Author{}
	switch {
	case asker != nil:
		authors = append(authors, domain.AuthorFromIdentity(*asker))
	case req.Author != nil:
		a := *req.Author
		if a.Initials == "" {
			a.Initials = domain.InitialsOf(a.Name)
		}
		authors = append(authors, a)
	}

	q, err := s.questionRepo.Create(ctx, &domain.Question{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(req.Title),
		Content:    strings.TrimSpace(req.Content),
		CategoryID: req.CategoryID,
		SessionID:  req.SessionID,
		Authors:    authors,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return q, nil
}

func (s *questionService) Upvote(ctx context.Context, id string) (*domain.Question, error) {
	q, err := s.questionRepo.Upvote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to upvote question: %w", err)
	}
	if q == nil {
		return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return q, nil
}

func (s *questionService) Answer(ctx context.Context, questionID string, req domain.AnswerCreate) (*domain.Answer, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, invalid(domain.ErrEmptyContent)
	}
	author := req.Author
	if author.Initials == "" {
		author.Initials = domain.InitialsOf(author.Name)
	}

	a, err := s.questionRepo.AddAnswer(ctx, &domain.Answer{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		Content:    content,
		Author:     author,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add answer: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("question %s: %w", questionID, ErrNotFound)
	}
	return a, nil
}

func (s *questionService) Answers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	if _, err := s.Get(ctx, questionID); err != nil {
		return nil, err
	}
	out, err := s.questionRepo.ListAnswers(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	if out == nil {
		out = []domain.Answer{}
	}
	return out, nil
}

func (s *questionService) UpvoteAnswer(ctx context.Context, questionID, answerID string) (*domain.Answer, error) {
	a, err := s.questionRepo.UpvoteAnswer(ctx, questionID, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to upvote answer: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("answer %s: %w", answerID, ErrNotFound)
	}
	return a, nil
}

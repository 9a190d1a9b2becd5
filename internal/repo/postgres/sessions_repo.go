package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorhood/mentorhood/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) (*domain.Session, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByMentor(ctx context.Context, mentorID string) ([]domain.Session, error)
	Update(ctx context.Context, s *domain.Session) (*domain.Session, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionCols = `id, mentor_id, name, description, duration, kind,
number_of_sessions, occurrence, topics, allow_mentee_topics, show_on_profile,
is_paid, price, mentor, time_slots, created_at, updated_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.MentorID, &s.Name, &s.Description, &s.Duration, &s.Kind,
		&s.NumberOfSessions, &s.Occurrence, &s.Topics, &s.AllowMenteeTopics, &s.ShowOnProfile,
		&s.IsPaid, &s.Price, &s.Mentor, &s.TimeSlots, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	const q = `INSERT INTO sessions (
		id, mentor_id, name, description, duration, kind,
		number_of_sessions, occurrence, topics, allow_mentee_topics, show_on_profile,
		is_paid, price, mentor, time_slots
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	RETURNING ` + sessionCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanSession(r.pool.QueryRow(ctx, q,
		s.ID, s.MentorID, s.Name, s.Description, s.Duration, s.Kind,
		s.NumberOfSessions, s.Occurrence, topicsOf(s), s.AllowMenteeTopics, s.ShowOnProfile,
		s.IsPaid, s.Price, s.Mentor, s.TimeSlots,
	))
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	s, err := scanSession(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *sessionRepository) ListByMentor(ctx context.Context, mentorID string) ([]domain.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE mentor_id=$1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, mentorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *sessionRepository) Update(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	const q = `UPDATE sessions SET
		name=$2, description=$3, duration=$4, kind=$5,
		number_of_sessions=$6, occurrence=$7, topics=$8, allow_mentee_topics=$9,
		show_on_profile=$10, is_paid=$11, price=$12, mentor=$13, time_slots=$14,
		updated_at=now()
	WHERE id=$1
	RETURNING ` + sessionCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out, err := scanSession(r.pool.QueryRow(ctx, q,
		s.ID, s.Name, s.Description, s.Duration, s.Kind,
		s.NumberOfSessions, s.Occurrence, topicsOf(s), s.AllowMenteeTopics,
		s.ShowOnProfile, s.IsPaid, s.Price, s.Mentor, s.TimeSlots,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return out, err
}

func (r *sessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func topicsOf(s *domain.Session) []string {
	if s.Topics == nil {
		return []string{}
	}
	return s.Topics
}

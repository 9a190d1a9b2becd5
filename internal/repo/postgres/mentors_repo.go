package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorhood/mentorhood/internal/domain"
)

type MentorRepository interface {
	// Upsert creates or replaces the profile owned by m.UserID. m.ID is only
	// used on first insert.
	Upsert(ctx context.Context, m *domain.Mentor) (*domain.Mentor, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Mentor, error)
	List(ctx context.Context) ([]domain.Mentor, error)
}

type mentorRepository struct {
	pool *pgxpool.Pool
}

func NewMentorRepository(pool *pgxpool.Pool) MentorRepository {
	return &mentorRepository{pool: pool}
}

const mentorCols = `id, user_id, name, headline, membership, details, created_at, updated_at`

func scanMentor(row pgx.Row) (*domain.Mentor, error) {
	var m domain.Mentor
	if err := row.Scan(
		&m.ID, &m.UserID, &m.Name, &m.Headline, &m.Membership, &m.MentorDetails,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mentorRepository) Upsert(ctx context.Context, m *domain.Mentor) (*domain.Mentor, error) {
	const q = `INSERT INTO mentor_profiles (id, user_id, name, headline, membership, details)
	VALUES ($1,$2,$3,$4,$5,$6)
	ON CONFLICT (user_id) DO UPDATE SET
		name=EXCLUDED.name, headline=EXCLUDED.headline, membership=EXCLUDED.membership,
		details=EXCLUDED.details, updated_at=now()
	RETURNING ` + mentorCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanMentor(r.pool.QueryRow(ctx, q,
		m.ID, m.UserID, m.Name, m.Headline, m.Membership, m.MentorDetails,
	))
}

func (r *mentorRepository) GetByUserID(ctx context.Context, userID string) (*domain.Mentor, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	m, err := scanMentor(r.pool.QueryRow(ctx, `SELECT `+mentorCols+` FROM mentor_profiles WHERE user_id=$1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *mentorRepository) List(ctx context.Context) ([]domain.Mentor, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+mentorCols+` FROM mentor_profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Mentor{}
	for rows.Next() {
		m, err := scanMentor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

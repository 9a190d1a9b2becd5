package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorhood/mentorhood/internal/domain"
)

type AMARepository interface {
	Create(ctx context.Context, a *domain.AMASession) (*domain.AMASession, error)
	GetByID(ctx context.Context, id string) (*domain.AMASession, error)
	// List filters on the woman-in-tech flag when womanTech is non-nil.
	List(ctx context.Context, womanTech *bool) ([]domain.AMASession, error)
	Update(ctx context.Context, a *domain.AMASession) (*domain.AMASession, error)
	Delete(ctx context.Context, id string) (bool, error)

	// Register takes a seat: it locks the session row, rejects a full
	// session or a repeat email, copies the session snapshot onto reg and
	// increments the registrant count, all in one transaction.
	Register(ctx context.Context, reg *domain.Registration) (*domain.Registration, error)
	IsRegistered(ctx context.Context, sessionID, email string) (bool, error)
	ListRegistrations(ctx context.Context, sessionID string) ([]domain.Registration, error)
}

type amaRepository struct {
	pool *pgxpool.Pool
}

func NewAMARepository(pool *pgxpool.Pool) AMARepository {
	return &amaRepository{pool: pool}
}

const amaCols = `id, host_id, title, description, mentor, date, time, duration,
registrants, max_registrants, questions, is_woman_tech, session_name, session_type,
is_paid, price, token_price, topics, created_at, updated_at`

func scanAMA(row pgx.Row) (*domain.AMASession, error) {
	var a domain.AMASession
	if err := row.Scan(
		&a.ID, &a.HostID, &a.Title, &a.Description, &a.Mentor, &a.Date, &a.Time, &a.Duration,
		&a.Registrants, &a.MaxRegistrants, &a.Questions, &a.IsWomanTech, &a.SessionName, &a.SessionType,
		&a.IsPaid, &a.Price, &a.TokenPrice, &a.Topics, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

const registrationCols = `id, session_id, email, name, company, role, meeting_id, meeting_link,
session_title, session_date, session_time, session_duration,
mentor_name, mentor_role, mentor_company, created_at, updated_at`

func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	var g domain.Registration
	if err := row.Scan(
		&g.ID, &g.SessionID, &g.Email, &g.Name, &g.Company, &g.Role, &g.MeetingID, &g.MeetingLink,
		&g.SessionTitle, &g.SessionDate, &g.SessionTime, &g.SessionDuration,
		&g.MentorName, &g.MentorRole, &g.MentorCompany, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *amaRepository) Create(ctx context.Context, a *domain.AMASession) (*domain.AMASession, error) {
	const q = `INSERT INTO ama_sessions (
		id, host_id, title, description, mentor, date, time, duration,
		max_registrants, questions, is_woman_tech, session_name, session_type,
		is_paid, price, token_price, topics
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	RETURNING ` + amaCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanAMA(r.pool.QueryRow(ctx, q,
		a.ID, a.HostID, a.Title, a.Description, a.Mentor, a.Date, a.Time, a.Duration,
		a.MaxRegistrants, a.Questions, a.IsWomanTech, a.SessionName, a.SessionType,
		a.IsPaid, a.Price, a.TokenPrice, a.Topics,
	))
}

func (r *amaRepository) GetByID(ctx context.Context, id string) (*domain.AMASession, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	a, err := scanAMA(r.pool.QueryRow(ctx, `SELECT `+amaCols+` FROM ama_sessions WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *amaRepository) List(ctx context.Context, womanTech *bool) ([]domain.AMASession, error) {
	q := `SELECT ` + amaCols + ` FROM ama_sessions`
	var args []any
	if womanTech != nil {
		q += ` WHERE is_woman_tech=$1`
		args = append(args, *womanTech)
	}
	q += ` ORDER BY date, time`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AMASession{}
	for rows.Next() {
		a, err := scanAMA(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Update leaves the registrant count alone; only Register moves it.
func (r *amaRepository) Update(ctx context.Context, a *domain.AMASession) (*domain.AMASession, error) {
	const q = `UPDATE ama_sessions SET
		title=$2, description=$3, mentor=$4, date=$5, time=$6, duration=$7,
		max_registrants=$8, questions=$9, is_woman_tech=$10, session_name=$11,
		session_type=$12, is_paid=$13, price=$14, token_price=$15, topics=$16,
		updated_at=now()
	WHERE id=$1
	RETURNING ` + amaCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out, err := scanAMA(r.pool.QueryRow(ctx, q,
		a.ID, a.Title, a.Description, a.Mentor, a.Date, a.Time, a.Duration,
		a.MaxRegistrants, a.Questions, a.IsWomanTech, a.SessionName,
		a.SessionType, a.IsPaid, a.Price, a.TokenPrice, a.Topics,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return out, err
}

func (r *amaRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM ama_sessions WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *amaRepository) Register(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := scanAMA(tx.QueryRow(ctx, `SELECT `+amaCols+` FROM ama_sessions WHERE id=$1 FOR UPDATE`, reg.SessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAMANotFound
	}
	if err != nil {
		return nil, err
	}

	var taken bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ama_registrations WHERE session_id=$1 AND lower(email)=lower($2))`,
		reg.SessionID, reg.Email,
	).Scan(&taken); err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrAlreadyRegistered
	}
	if session.Full() {
		return nil, domain.ErrSessionFull
	}

	reg.FillFrom(*session)
	out, err := scanRegistration(tx.QueryRow(ctx, `INSERT INTO ama_registrations (
		id, session_id, email, name, company, role, meeting_id, meeting_link,
		session_title, session_date, session_time, session_duration,
		mentor_name, mentor_role, mentor_company
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	RETURNING `+registrationCols,
		reg.ID, reg.SessionID, reg.Email, reg.Name, reg.Company, reg.Role, reg.MeetingID, reg.MeetingLink,
		reg.SessionTitle, reg.SessionDate, reg.SessionTime, reg.SessionDuration,
		reg.MentorName, reg.MentorRole, reg.MentorCompany,
	))
	if isUniqueViolation(err) {
		return nil, domain.ErrAlreadyRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE ama_sessions SET registrants=registrants+1, updated_at=now() WHERE id=$1`, reg.SessionID,
	); err != nil {
		return nil, fmt.Errorf("count registrant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *amaRepository) IsRegistered(ctx context.Context, sessionID, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ama_registrations WHERE session_id=$1 AND lower(email)=lower($2))`,
		sessionID, email,
	).Scan(&ok)
	return ok, err
}

func (r *amaRepository) ListRegistrations(ctx context.Context, sessionID string) ([]domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationCols+` FROM ama_registrations WHERE session_id=$1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Registration{}
	for rows.Next() {
		g, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

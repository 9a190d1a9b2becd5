package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorhood/mentorhood/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, sessionID string, limit, offset int) ([]domain.Booking, error)
	ListBySessionAndEmail(ctx context.Context, sessionID, email string) ([]domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, session_id, date, time, timezone, email,
meeting_id, meeting_link, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(
		&b.ID, &b.SessionID, &b.Date, &b.Time, &b.Timezone, &b.Email,
		&b.MeetingID, &b.MeetingLink, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	const q = `INSERT INTO bookings (
		id, session_id, date, time, timezone, email, meeting_id, meeting_link
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q,
		b.ID, b.SessionID, b.Date, b.Time, b.Timezone, b.Email, b.MeetingID, b.MeetingLink,
	))
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *bookingRepository) List(ctx context.Context, sessionID string, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + bookingCols + ` FROM bookings
		WHERE ($1 = '' OR session_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *bookingRepository) ListBySessionAndEmail(ctx context.Context, sessionID, email string) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
		WHERE session_id=$1 AND lower(email)=lower($2)
		ORDER BY created_at DESC
		LIMIT 100`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, sessionID, email)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *bookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
		WHERE lower(email)=lower($1)
		ORDER BY date, time
		LIMIT 500`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, email)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

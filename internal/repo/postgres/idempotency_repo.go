package postgres

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRepository maps client idempotency keys to the booking they
// created. Keys are stored hashed.
type IdempotencyRepository interface {
	// Lookup returns the booking id recorded for key, or "".
	Lookup(ctx context.Context, key string) (string, error)
	// Remember records key -> bookingID; an existing record wins.
	Remember(ctx context.Context, key, bookingID string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type idempotencyRepository struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewIdempotencyRepository(pool *pgxpool.Pool, ttl time.Duration) IdempotencyRepository {
	return &idempotencyRepository{pool: pool, ttl: ttl}
}

func hashKey(key string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

func (r *idempotencyRepository) Lookup(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var bookingID string
	err := r.pool.QueryRow(ctx,
		`SELECT booking_id FROM booking_idempotency WHERE key_hash = $1 AND expires_at > now()`,
		hashKey(key),
	).Scan(&bookingID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return bookingID, err
}

func (r *idempotencyRepository) Remember(ctx context.Context, key, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `
		INSERT INTO booking_idempotency (key_hash, booking_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key_hash) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, hashKey(key), bookingID, time.Now().Add(r.ttl))
	return err
}

func (r *idempotencyRepository) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM booking_idempotency WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

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

// LedgerMutation applies business rules to a locked ledger. exists is false
// when no row was found and the ledger is a blank to be inserted. Returning
// a nil transaction leaves the stored ledger untouched.
type LedgerMutation func(l *domain.TokenLedger, exists bool) (*domain.TokenTransaction, error)

type TokenRepository interface {
	Get(ctx context.Context, userID string) (*domain.TokenLedger, error)
	// Mutate runs fn under a row lock. With create false a missing ledger
	// is domain.ErrLedgerNotFound.
	Mutate(ctx context.Context, userID string, create bool, fn LedgerMutation) (*domain.TokenLedger, error)
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

const ledgerCols = `user_id, plan_id, plan_type, subscription_status,
purchased, used, remaining, usage, purchased_date, expiry_date, created_at, updated_at`

func scanLedger(row pgx.Row) (*domain.TokenLedger, error) {
	var l domain.TokenLedger
	if err := row.Scan(
		&l.UserID, &l.PlanID, &l.PlanType, &l.SubscriptionStatus,
		&l.Purchased, &l.Used, &l.Remaining, &l.Usage,
		&l.PurchasedDate, &l.ExpiryDate, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *tokenRepository) Get(ctx context.Context, userID string) (*domain.TokenLedger, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	l, err := scanLedger(r.pool.QueryRow(ctx, `SELECT `+ledgerCols+` FROM token_ledgers WHERE user_id=$1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT type, amount, description, usage_type, plan_id, created_at
		FROM token_transactions WHERE user_id=$1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	l.Transactions = []domain.TokenTransaction{}
	for rows.Next() {
		var t domain.TokenTransaction
		if err := rows.Scan(&t.Type, &t.Amount, &t.Description, &t.UsageType, &t.PlanID, &t.Timestamp); err != nil {
			return nil, err
		}
		l.Transactions = append(l.Transactions, t)
	}
	return l, rows.Err()
}

func (r *tokenRepository) Mutate(ctx context.Context, userID string, create bool, fn LedgerMutation) (*domain.TokenLedger, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	exists := true
	l, err := scanLedger(tx.QueryRow(ctx, `SELECT `+ledgerCols+` FROM token_ledgers WHERE user_id=$1 FOR UPDATE`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		if !create {
			return nil, domain.ErrLedgerNotFound
		}
		exists = false
		l = &domain.TokenLedger{UserID: userID, Usage: map[string]domain.UsageBucket{}}
	} else if err != nil {
		return nil, err
	}
	if l.Usage == nil {
		l.Usage = map[string]domain.UsageBucket{}
	}

	entry, err := fn(l, exists)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return l, nil
	}

	if exists {
		_, err = tx.Exec(ctx, `
			UPDATE token_ledgers SET
				plan_id=$2, plan_type=$3, subscription_status=$4,
				purchased=$5, used=$6, remaining=$7, usage=$8,
				expiry_date=$9, updated_at=now()
			WHERE user_id=$1`,
			l.UserID, l.PlanID, l.PlanType, l.SubscriptionStatus,
			l.Purchased, l.Used, l.Remaining, l.Usage, l.ExpiryDate)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO token_ledgers (
				user_id, plan_id, plan_type, subscription_status,
				purchased, used, remaining, usage, purchased_date, expiry_date
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			l.UserID, l.PlanID, l.PlanType, l.SubscriptionStatus,
			l.Purchased, l.Used, l.Remaining, l.Usage, l.PurchasedDate, l.ExpiryDate)
	}
	if err != nil {
		return nil, fmt.Errorf("write ledger: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO token_transactions (user_id, type, amount, description, usage_type, plan_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		l.UserID, entry.Type, entry.Amount, entry.Description, entry.UsageType, entry.PlanID, entry.Timestamp,
	); err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return l, nil
}

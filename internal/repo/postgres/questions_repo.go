package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorhood/mentorhood/internal/domain"
)

type QuestionRepository interface {
	List(ctx context.Context, f domain.QuestionFilter) ([]domain.Question, error)
	Create(ctx context.Context, q *domain.Question) (*domain.Question, error)
	GetByID(ctx context.Context, id string) (*domain.Question, error)
	Upvote(ctx context.Context, id string) (*domain.Question, error)
	// AddAnswer stores the answer and bumps the question's answer count in
	// one transaction. A missing question yields (nil, nil).
	AddAnswer(ctx context.Context, a *domain.Answer) (*domain.Answer, error)
	ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error)
	UpvoteAnswer(ctx context.Context, questionID, answerID string) (*domain.Answer, error)
}

type questionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) QuestionRepository {
	return &questionRepository{pool: pool}
}

const questionCols = `id, title, content, category_id, session_id, authors,
upvotes, answers, created_at, updated_at`

const answerCols = `id, question_id, content, author, upvotes, created_at, updated_at`

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var q domain.Question
	if err := row.Scan(
		&q.ID, &q.Title, &q.Content, &q.CategoryID, &q.SessionID, &q.Authors,
		&q.Upvotes, &q.Answers, &q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	q.Timestamp = q.CreatedAt
	return &q, nil
}

func scanAnswer(row pgx.Row) (*domain.Answer, error) {
	var a domain.Answer
	if err := row.Scan(&a.ID, &a.QuestionID, &a.Content, &a.Author, &a.Upvotes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Timestamp = a.CreatedAt
	return &a, nil
}

func (r *questionRepository) List(ctx context.Context, f domain.QuestionFilter) ([]domain.Question, error) {
	f = f.Normalize()
	order := "created_at DESC"
	if f.SortBy == domain.SortByUpvotes {
		order = "upvotes DESC, created_at DESC"
	}
	q := fmt.Sprintf(`SELECT %s FROM questionnaires
		WHERE ($1 = '' OR category_id = $1)
		ORDER BY %s
		LIMIT $2 OFFSET $3`, questionCols, order)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, f.CategoryID, f.Limit, f.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Question{}
	for rows.Next() {
		item, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *questionRepository) Create(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	const stmt = `INSERT INTO questionnaires (id, title, content, category_id, session_id, authors)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING ` + questionCols
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanQuestion(r.pool.QueryRow(ctx, stmt, q.ID, q.Title, q.Content, q.CategoryID, q.SessionID, q.Authors))
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q, err := scanQuestion(r.pool.QueryRow(ctx, `SELECT `+questionCols+` FROM questionnaires WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return q, err
}

func (r *questionRepository) Upvote(ctx context.Context, id string) (*domain.Question, error) {
	const stmt = `UPDATE questionnaires SET upvotes = upvotes + 1, updated_at = now()
		WHERE id=$1 RETURNING ` + questionCols
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q, err := scanQuestion(r.pool.QueryRow(ctx, stmt, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return q, err
}

func (r *questionRepository) AddAnswer(ctx context.Context, a *domain.Answer) (*domain.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE questionnaires SET answers = answers + 1, updated_at = now() WHERE id=$1`, a.QuestionID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	out, err := scanAnswer(tx.QueryRow(ctx, `INSERT INTO answers (id, question_id, content, author)
		VALUES ($1,$2,$3,$4) RETURNING `+answerCols, a.ID, a.QuestionID, a.Content, a.Author))
	if err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

func (r *questionRepository) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+answerCols+` FROM answers WHERE question_id=$1 ORDER BY created_at DESC`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Answer{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *questionRepository) UpvoteAnswer(ctx context.Context, questionID, answerID string) (*domain.Answer, error) {
	const stmt = `UPDATE answers SET upvotes = upvotes + 1, updated_at = now()
		WHERE id=$1 AND question_id=$2 RETURNING ` + answerCols
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	a, err := scanAnswer(r.pool.QueryRow(ctx, stmt, answerID, questionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

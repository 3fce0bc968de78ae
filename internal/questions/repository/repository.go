// Package repository provides data access for questions and choices.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadscoring_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Question is the persistence model for a question row.
type Question struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	FieldName      string
	Label          string
	QuestionType   string
	MultipleValues bool
	MinValue       *float64
	MaxValue       *float64
	Position       int
	Choices        []Choice
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Choice is the persistence model for a choice row.
type Choice struct {
	ID       uuid.UUID
	Text     string
	Slug     string
	Value    float64
	Position int
}

// Repo provides question persistence backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a question repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertQuestionQuery = `
	INSERT INTO questions (id, account_id, field_name, label, question_type, multiple_values, min_value, max_value, position, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const insertChoiceQuery = `
	INSERT INTO choices (id, question_id, text, slug, value, position)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Create inserts a question and its choices in one transaction.
// Returns apperr.Conflict when the field name is already taken.
func (r *Repo) Create(ctx context.Context, q Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, insertQuestionQuery,
		q.ID, q.AccountID, q.FieldName, q.Label, q.QuestionType,
		q.MultipleValues, q.MinValue, q.MaxValue, q.Position, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("field name %q already in use", q.FieldName))
		}
		return fmt.Errorf("insert question: %w", err)
	}

	if err := insertChoices(ctx, tx, q.ID, q.Choices); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const updateQuestionQuery = `
	UPDATE questions
	SET label = $3, multiple_values = $4, min_value = $5, max_value = $6, position = $7, updated_at = $8
	WHERE id = $1 AND account_id = $2`

const deleteChoicesQuery = `DELETE FROM choices WHERE question_id = $1`

// Update replaces a question's mutable fields and its choices.
func (r *Repo) Update(ctx context.Context, q Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, updateQuestionQuery,
		q.ID, q.AccountID, q.Label, q.MultipleValues, q.MinValue, q.MaxValue, q.Position, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("question not found")
	}

	if _, err := tx.Exec(ctx, deleteChoicesQuery, q.ID); err != nil {
		return fmt.Errorf("delete choices: %w", err)
	}
	if err := insertChoices(ctx, tx, q.ID, q.Choices); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const deleteQuestionQuery = `DELETE FROM questions WHERE id = $1 AND account_id = $2`

// Delete removes a question. Choices cascade at the schema level.
func (r *Repo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteQuestionQuery, id, accountID)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("question not found")
	}
	return nil
}

const selectQuestionQuery = `
	SELECT id, account_id, field_name, label, question_type, multiple_values, min_value, max_value, position, created_at, updated_at
	FROM questions
	WHERE id = $1 AND account_id = $2`

// GetByID fetches a single question with its choices.
func (r *Repo) GetByID(ctx context.Context, accountID, id uuid.UUID) (Question, error) {
	row := r.pool.QueryRow(ctx, selectQuestionQuery, id, accountID)
	q, err := scanQuestion(row)
	if err != nil {
		return Question{}, err
	}
	choices, err := r.loadChoices(ctx, []uuid.UUID{q.ID})
	if err != nil {
		return Question{}, err
	}
	q.Choices = choices[q.ID]
	return q, nil
}

const listQuestionsQuery = `
	SELECT id, account_id, field_name, label, question_type, multiple_values, min_value, max_value, position, created_at, updated_at
	FROM questions
	WHERE account_id = $1
	ORDER BY position, created_at`

// List returns all questions for an account, choices attached, in
// display order.
func (r *Repo) List(ctx context.Context, accountID uuid.UUID) ([]Question, error) {
	rows, err := r.pool.Query(ctx, listQuestionsQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	var ids []uuid.UUID
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	if len(ids) > 0 {
		choices, err := r.loadChoices(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range questions {
			questions[i].Choices = choices[questions[i].ID]
		}
	}
	return questions, nil
}

const selectChoicesQuery = `
	SELECT id, question_id, text, slug, value, position
	FROM choices
	WHERE question_id = ANY($1)
	ORDER BY position`

func (r *Repo) loadChoices(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID][]Choice, error) {
	rows, err := r.pool.Query(ctx, selectChoicesQuery, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]Choice)
	for rows.Next() {
		var c Choice
		var questionID uuid.UUID
		if err := rows.Scan(&c.ID, &questionID, &c.Text, &c.Slug, &c.Value, &c.Position); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		result[questionID] = append(result[questionID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate choices: %w", err)
	}
	return result, nil
}

func insertChoices(ctx context.Context, tx pgx.Tx, questionID uuid.UUID, choices []Choice) error {
	for i, c := range choices {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := tx.Exec(ctx, insertChoiceQuery, id, questionID, c.Text, c.Slug, c.Value, i); err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict(fmt.Sprintf("duplicate choice slug %q", c.Slug))
			}
			return fmt.Errorf("insert choice: %w", err)
		}
	}
	return nil
}

func scanQuestion(row pgx.Row) (Question, error) {
	var q Question
	err := row.Scan(&q.ID, &q.AccountID, &q.FieldName, &q.Label, &q.QuestionType,
		&q.MultipleValues, &q.MinValue, &q.MaxValue, &q.Position, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Question{}, apperr.NotFound("question not found")
		}
		return Question{}, fmt.Errorf("scan question: %w", err)
	}
	return q, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Package repository provides data access for scoring models, ranges
// and recommendations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadscoring_backend/internal/engine"
	"leadscoring_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScoringModel is the persistence model for a scoring model row.
type ScoringModel struct {
	ID          uuid.UUID
	QuestionID  uuid.UUID
	Weight      float64
	XAxis       bool
	YAxis       bool
	Formula     string
	ValueRanges []ValueRange
	DatesRanges []DatesRange
	UpdatedAt   time.Time
}

// ValueRange is the persistence model for a numeric range row.
type ValueRange struct {
	ID     uuid.UUID
	Start  *float64
	End    *float64
	Points int
}

// DatesRange is the persistence model for a date range row.
type DatesRange struct {
	ID     uuid.UUID
	Start  *time.Time
	End    *time.Time
	Points int
}

// Recommendation is the persistence model for a recommendation row.
type Recommendation struct {
	ID             uuid.UUID
	QuestionID     uuid.UUID
	Rule           string
	ResponseText   string
	AffiliateName  string
	AffiliateImage string
	AffiliateLink  string
	RedirectURL    string
	UpdatedAt      time.Time
}

// Repo provides scoring persistence backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a scoring repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const questionOwnedQuery = `
	SELECT field_name FROM questions WHERE id = $1 AND account_id = $2`

// QuestionFieldName resolves a question's field name, checking account
// ownership. Returns apperr.NotFound when the question does not exist
// or belongs to another account.
func (r *Repo) QuestionFieldName(ctx context.Context, accountID, questionID uuid.UUID) (string, error) {
	var fieldName string
	err := r.pool.QueryRow(ctx, questionOwnedQuery, questionID, accountID).Scan(&fieldName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("question not found")
		}
		return "", fmt.Errorf("resolve question: %w", err)
	}
	return fieldName, nil
}

const catalogQuestionsQuery = `
	SELECT id, field_name, question_type, multiple_values, min_value, max_value
	FROM questions
	WHERE account_id = $1`

const catalogChoicesQuery = `
	SELECT c.question_id, c.text, c.slug, c.value
	FROM choices c
	JOIN questions q ON q.id = c.question_id
	WHERE q.account_id = $1
	ORDER BY c.position`

// QuestionCatalog loads the account's questions keyed by field name,
// with choices attached, for expression validation.
func (r *Repo) QuestionCatalog(ctx context.Context, accountID uuid.UUID) (map[string]*engine.Question, error) {
	rows, err := r.pool.Query(ctx, catalogQuestionsQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("load question catalog: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*engine.Question)
	catalog := make(map[string]*engine.Question)
	for rows.Next() {
		var id uuid.UUID
		q := &engine.Question{}
		if err := rows.Scan(&id, &q.FieldName, &q.Type, &q.MultipleValues, &q.MinValue, &q.MaxValue); err != nil {
			return nil, fmt.Errorf("scan catalog question: %w", err)
		}
		byID[id] = q
		catalog[q.FieldName] = q
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog questions: %w", err)
	}

	choiceRows, err := r.pool.Query(ctx, catalogChoicesQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("load catalog choices: %w", err)
	}
	defer choiceRows.Close()

	for choiceRows.Next() {
		var questionID uuid.UUID
		var c engine.Choice
		if err := choiceRows.Scan(&questionID, &c.Text, &c.Slug, &c.Value); err != nil {
			return nil, fmt.Errorf("scan catalog choice: %w", err)
		}
		if q, ok := byID[questionID]; ok {
			q.Choices = append(q.Choices, c)
		}
	}
	if err := choiceRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog choices: %w", err)
	}
	return catalog, nil
}

const deleteModelQuery = `DELETE FROM scoring_models WHERE question_id = $1`

const insertModelQuery = `
	INSERT INTO scoring_models (id, question_id, weight, x_axis, y_axis, formula, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertValueRangeQuery = `
	INSERT INTO value_ranges (id, scoring_model_id, range_start, range_end, points, position)
	VALUES ($1, $2, $3, $4, $5, $6)`

const insertDatesRangeQuery = `
	INSERT INTO dates_ranges (id, scoring_model_id, range_start, range_end, points, position)
	VALUES ($1, $2, $3, $4, $5, $6)`

// SaveModel replaces a question's scoring model and ranges in one
// transaction. Ranges keep their declaration order; the first matching
// range wins at evaluation time.
func (r *Repo) SaveModel(ctx context.Context, m ScoringModel) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, deleteModelQuery, m.QuestionID); err != nil {
		return fmt.Errorf("delete scoring model: %w", err)
	}
	_, err = tx.Exec(ctx, insertModelQuery, m.ID, m.QuestionID, m.Weight, m.XAxis, m.YAxis, m.Formula, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert scoring model: %w", err)
	}

	for i, vr := range m.ValueRanges {
		_, err := tx.Exec(ctx, insertValueRangeQuery, uuid.New(), m.ID, vr.Start, vr.End, vr.Points, i)
		if err != nil {
			return fmt.Errorf("insert value range: %w", err)
		}
	}
	for i, dr := range m.DatesRanges {
		_, err := tx.Exec(ctx, insertDatesRangeQuery, uuid.New(), m.ID, dr.Start, dr.End, dr.Points, i)
		if err != nil {
			return fmt.Errorf("insert dates range: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectModelQuery = `
	SELECT m.id, m.question_id, m.weight, m.x_axis, m.y_axis, m.formula, m.updated_at
	FROM scoring_models m
	JOIN questions q ON q.id = m.question_id
	WHERE m.question_id = $1 AND q.account_id = $2`

// GetModel fetches a question's scoring model with its ranges.
func (r *Repo) GetModel(ctx context.Context, accountID, questionID uuid.UUID) (ScoringModel, error) {
	var m ScoringModel
	row := r.pool.QueryRow(ctx, selectModelQuery, questionID, accountID)
	err := row.Scan(&m.ID, &m.QuestionID, &m.Weight, &m.XAxis, &m.YAxis, &m.Formula, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ScoringModel{}, apperr.NotFound("scoring model not found")
		}
		return ScoringModel{}, fmt.Errorf("scan scoring model: %w", err)
	}
	if err := r.loadRanges(ctx, &m); err != nil {
		return ScoringModel{}, err
	}
	return m, nil
}

const selectValueRangesQuery = `
	SELECT id, range_start, range_end, points
	FROM value_ranges
	WHERE scoring_model_id = $1
	ORDER BY position`

const selectDatesRangesQuery = `
	SELECT id, range_start, range_end, points
	FROM dates_ranges
	WHERE scoring_model_id = $1
	ORDER BY position`

func (r *Repo) loadRanges(ctx context.Context, m *ScoringModel) error {
	rows, err := r.pool.Query(ctx, selectValueRangesQuery, m.ID)
	if err != nil {
		return fmt.Errorf("load value ranges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var vr ValueRange
		if err := rows.Scan(&vr.ID, &vr.Start, &vr.End, &vr.Points); err != nil {
			return fmt.Errorf("scan value range: %w", err)
		}
		m.ValueRanges = append(m.ValueRanges, vr)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate value ranges: %w", err)
	}

	dateRows, err := r.pool.Query(ctx, selectDatesRangesQuery, m.ID)
	if err != nil {
		return fmt.Errorf("load dates ranges: %w", err)
	}
	defer dateRows.Close()
	for dateRows.Next() {
		var dr DatesRange
		if err := dateRows.Scan(&dr.ID, &dr.Start, &dr.End, &dr.Points); err != nil {
			return fmt.Errorf("scan dates range: %w", err)
		}
		m.DatesRanges = append(m.DatesRanges, dr)
	}
	if err := dateRows.Err(); err != nil {
		return fmt.Errorf("iterate dates ranges: %w", err)
	}
	return nil
}

const deleteModelOwnedQuery = `
	DELETE FROM scoring_models m
	USING questions q
	WHERE m.question_id = $1 AND q.id = m.question_id AND q.account_id = $2`

// DeleteModel removes a question's scoring model. Ranges cascade.
func (r *Repo) DeleteModel(ctx context.Context, accountID, questionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteModelOwnedQuery, questionID, accountID)
	if err != nil {
		return fmt.Errorf("delete scoring model: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("scoring model not found")
	}
	return nil
}

const upsertRecommendationQuery = `
	INSERT INTO recommendations (id, question_id, rule, response_text, affiliate_name, affiliate_image, affiliate_link, redirect_url, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (question_id) DO UPDATE SET
		rule = EXCLUDED.rule,
		response_text = EXCLUDED.response_text,
		affiliate_name = EXCLUDED.affiliate_name,
		affiliate_image = EXCLUDED.affiliate_image,
		affiliate_link = EXCLUDED.affiliate_link,
		redirect_url = EXCLUDED.redirect_url,
		updated_at = EXCLUDED.updated_at`

// SaveRecommendation creates or replaces a question's recommendation.
func (r *Repo) SaveRecommendation(ctx context.Context, rec Recommendation) error {
	_, err := r.pool.Exec(ctx, upsertRecommendationQuery,
		rec.ID, rec.QuestionID, rec.Rule, rec.ResponseText, rec.AffiliateName,
		rec.AffiliateImage, rec.AffiliateLink, rec.RedirectURL, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save recommendation: %w", err)
	}
	return nil
}

const selectRecommendationQuery = `
	SELECT r.id, r.question_id, r.rule, r.response_text, r.affiliate_name, r.affiliate_image, r.affiliate_link, r.redirect_url, r.updated_at
	FROM recommendations r
	JOIN questions q ON q.id = r.question_id
	WHERE r.question_id = $1 AND q.account_id = $2`

// GetRecommendation fetches a question's recommendation.
func (r *Repo) GetRecommendation(ctx context.Context, accountID, questionID uuid.UUID) (Recommendation, error) {
	var rec Recommendation
	row := r.pool.QueryRow(ctx, selectRecommendationQuery, questionID, accountID)
	err := row.Scan(&rec.ID, &rec.QuestionID, &rec.Rule, &rec.ResponseText, &rec.AffiliateName,
		&rec.AffiliateImage, &rec.AffiliateLink, &rec.RedirectURL, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recommendation{}, apperr.NotFound("recommendation not found")
		}
		return Recommendation{}, fmt.Errorf("scan recommendation: %w", err)
	}
	return rec, nil
}

const deleteRecommendationQuery = `
	DELETE FROM recommendations r
	USING questions q
	WHERE r.question_id = $1 AND q.id = r.question_id AND q.account_id = $2`

// DeleteRecommendation removes a question's recommendation.
func (r *Repo) DeleteRecommendation(ctx context.Context, accountID, questionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteRecommendationQuery, questionID, accountID)
	if err != nil {
		return fmt.Errorf("delete recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("recommendation not found")
	}
	return nil
}

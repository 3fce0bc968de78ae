// Package repository provides data access for leads, answers and the
// append-only lead log. It also assembles the full scoring catalog
// (questions, choices, scoring models, ranges, recommendations) the
// engine consumes at submission time.
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

// Lead is the persistence model for a lead row.
type Lead struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	ExternalID string
	XAxis      float64
	YAxis      float64
	TotalScore float64
	CreatedAt  time.Time
}

// Answer is the persistence model for an answer row.
type Answer struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	FieldName      string
	Response       string
	ValueNumber    *int
	Value          *float64
	Values         []float64
	DateValue      *time.Time
	Points         *float64
	ResponseText   *string
	AffiliateName  *string
	AffiliateImage *string
	AffiliateLink  *string
	RedirectURL    *string
}

// Repo provides lead persistence backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a lead repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const scoringCatalogQuestionsQuery = `
	SELECT q.id, q.field_name, q.question_type, q.multiple_values, q.min_value, q.max_value
	FROM questions q
	WHERE q.account_id = $1`

const scoringCatalogChoicesQuery = `
	SELECT c.question_id, c.text, c.slug, c.value
	FROM choices c
	JOIN questions q ON q.id = c.question_id
	WHERE q.account_id = $1
	ORDER BY c.position`

const scoringCatalogModelsQuery = `
	SELECT m.id, m.question_id, m.weight, m.x_axis, m.y_axis, m.formula
	FROM scoring_models m
	JOIN questions q ON q.id = m.question_id
	WHERE q.account_id = $1`

const scoringCatalogValueRangesQuery = `
	SELECT vr.scoring_model_id, vr.range_start, vr.range_end, vr.points
	FROM value_ranges vr
	JOIN scoring_models m ON m.id = vr.scoring_model_id
	JOIN questions q ON q.id = m.question_id
	WHERE q.account_id = $1
	ORDER BY vr.position`

const scoringCatalogDatesRangesQuery = `
	SELECT dr.scoring_model_id, dr.range_start, dr.range_end, dr.points
	FROM dates_ranges dr
	JOIN scoring_models m ON m.id = dr.scoring_model_id
	JOIN questions q ON q.id = m.question_id
	WHERE q.account_id = $1
	ORDER BY dr.position`

const scoringCatalogRecommendationsQuery = `
	SELECT r.question_id, r.rule, r.response_text, r.affiliate_name, r.affiliate_image, r.affiliate_link, r.redirect_url
	FROM recommendations r
	JOIN questions q ON q.id = r.question_id
	WHERE q.account_id = $1`

// ScoringCatalog loads the account's questions keyed by field name with
// choices, scoring models, ranges and recommendations attached.
func (r *Repo) ScoringCatalog(ctx context.Context, accountID uuid.UUID) (map[string]*engine.Question, error) {
	rows, err := r.pool.Query(ctx, scoringCatalogQuestionsQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("load catalog questions: %w", err)
	}
	defer rows.Close()

	byQuestionID := make(map[uuid.UUID]*engine.Question)
	catalog := make(map[string]*engine.Question)
	for rows.Next() {
		var id uuid.UUID
		q := &engine.Question{}
		if err := rows.Scan(&id, &q.FieldName, &q.Type, &q.MultipleValues, &q.MinValue, &q.MaxValue); err != nil {
			return nil, fmt.Errorf("scan catalog question: %w", err)
		}
		byQuestionID[id] = q
		catalog[q.FieldName] = q
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog questions: %w", err)
	}

	if err := r.attachChoices(ctx, accountID, byQuestionID); err != nil {
		return nil, err
	}
	byModelID, err := r.attachModels(ctx, accountID, byQuestionID)
	if err != nil {
		return nil, err
	}
	if err := r.attachRanges(ctx, accountID, byModelID); err != nil {
		return nil, err
	}
	if err := r.attachRecommendations(ctx, accountID, byQuestionID); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (r *Repo) attachChoices(ctx context.Context, accountID uuid.UUID, byQuestionID map[uuid.UUID]*engine.Question) error {
	rows, err := r.pool.Query(ctx, scoringCatalogChoicesQuery, accountID)
	if err != nil {
		return fmt.Errorf("load catalog choices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var questionID uuid.UUID
		var c engine.Choice
		if err := rows.Scan(&questionID, &c.Text, &c.Slug, &c.Value); err != nil {
			return fmt.Errorf("scan catalog choice: %w", err)
		}
		if q, ok := byQuestionID[questionID]; ok {
			q.Choices = append(q.Choices, c)
		}
	}
	return rows.Err()
}

func (r *Repo) attachModels(ctx context.Context, accountID uuid.UUID, byQuestionID map[uuid.UUID]*engine.Question) (map[uuid.UUID]*engine.ScoringModel, error) {
	rows, err := r.pool.Query(ctx, scoringCatalogModelsQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("load catalog models: %w", err)
	}
	defer rows.Close()

	byModelID := make(map[uuid.UUID]*engine.ScoringModel)
	for rows.Next() {
		var modelID, questionID uuid.UUID
		m := &engine.ScoringModel{}
		if err := rows.Scan(&modelID, &questionID, &m.Weight, &m.XAxis, &m.YAxis, &m.Formula); err != nil {
			return nil, fmt.Errorf("scan catalog model: %w", err)
		}
		if q, ok := byQuestionID[questionID]; ok {
			q.Scoring = m
			byModelID[modelID] = m
		}
	}
	return byModelID, rows.Err()
}

func (r *Repo) attachRanges(ctx context.Context, accountID uuid.UUID, byModelID map[uuid.UUID]*engine.ScoringModel) error {
	rows, err := r.pool.Query(ctx, scoringCatalogValueRangesQuery, accountID)
	if err != nil {
		return fmt.Errorf("load catalog value ranges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var modelID uuid.UUID
		var vr engine.ValueRange
		if err := rows.Scan(&modelID, &vr.Start, &vr.End, &vr.Points); err != nil {
			return fmt.Errorf("scan catalog value range: %w", err)
		}
		if m, ok := byModelID[modelID]; ok {
			m.Ranges = append(m.Ranges, vr)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	dateRows, err := r.pool.Query(ctx, scoringCatalogDatesRangesQuery, accountID)
	if err != nil {
		return fmt.Errorf("load catalog dates ranges: %w", err)
	}
	defer dateRows.Close()
	for dateRows.Next() {
		var modelID uuid.UUID
		var dr engine.DatesRange
		if err := dateRows.Scan(&modelID, &dr.Start, &dr.End, &dr.Points); err != nil {
			return fmt.Errorf("scan catalog dates range: %w", err)
		}
		if m, ok := byModelID[modelID]; ok {
			m.DateRanges = append(m.DateRanges, dr)
		}
	}
	return dateRows.Err()
}

func (r *Repo) attachRecommendations(ctx context.Context, accountID uuid.UUID, byQuestionID map[uuid.UUID]*engine.Question) error {
	rows, err := r.pool.Query(ctx, scoringCatalogRecommendationsQuery, accountID)
	if err != nil {
		return fmt.Errorf("load catalog recommendations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var questionID uuid.UUID
		rec := &engine.Recommendation{}
		if err := rows.Scan(&questionID, &rec.Rule, &rec.ResponseText, &rec.AffiliateName,
			&rec.AffiliateImage, &rec.AffiliateLink, &rec.RedirectURL); err != nil {
			return fmt.Errorf("scan catalog recommendation: %w", err)
		}
		if q, ok := byQuestionID[questionID]; ok {
			q.Recommendation = rec
		}
	}
	return rows.Err()
}

const deleteLeadByExternalIDQuery = `
	DELETE FROM leads WHERE account_id = $1 AND external_id = $2`

const insertLeadQuery = `
	INSERT INTO leads (id, account_id, external_id, x_axis, y_axis, total_score, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertAnswerQuery = `
	INSERT INTO answers (id, lead_id, field_name, response, value_number, value, value_list, date_value, points,
		response_text, affiliate_name, affiliate_image, affiliate_link, redirect_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// CreateLead inserts a lead and its answers in one transaction. When
// replaceExisting is set, any lead with the same external id is removed
// first so the submission replaces it.
func (r *Repo) CreateLead(ctx context.Context, lead Lead, answers []Answer, replaceExisting bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if replaceExisting {
		if _, err := tx.Exec(ctx, deleteLeadByExternalIDQuery, lead.AccountID, lead.ExternalID); err != nil {
			return fmt.Errorf("delete duplicate lead: %w", err)
		}
	}

	_, err = tx.Exec(ctx, insertLeadQuery,
		lead.ID, lead.AccountID, lead.ExternalID, lead.XAxis, lead.YAxis, lead.TotalScore, lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	for _, a := range answers {
		_, err := tx.Exec(ctx, insertAnswerQuery,
			a.ID, lead.ID, a.FieldName, a.Response, a.ValueNumber, a.Value, a.Values, a.DateValue, a.Points,
			a.ResponseText, a.AffiliateName, a.AffiliateImage, a.AffiliateLink, a.RedirectURL)
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectLeadQuery = `
	SELECT id, account_id, external_id, x_axis, y_axis, total_score, created_at
	FROM leads
	WHERE account_id = $1 AND external_id = $2`

// GetLead fetches a lead by external id with its answers.
func (r *Repo) GetLead(ctx context.Context, accountID uuid.UUID, externalID string) (Lead, []Answer, error) {
	row := r.pool.QueryRow(ctx, selectLeadQuery, accountID, externalID)
	lead, err := scanLead(row)
	if err != nil {
		return Lead{}, nil, err
	}
	answers, err := r.loadAnswers(ctx, lead.ID)
	if err != nil {
		return Lead{}, nil, err
	}
	return lead, answers, nil
}

const listLeadsQuery = `
	SELECT id, account_id, external_id, x_axis, y_axis, total_score, created_at
	FROM leads
	WHERE account_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`

// ListLeads returns a page of leads, newest first.
func (r *Repo) ListLeads(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, listLeadsQuery, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

const listLeadIDsQuery = `
	SELECT id FROM leads WHERE account_id = $1 ORDER BY created_at`

// ListLeadIDs returns every lead id for the account, oldest first.
// Used by the recompute task to walk stored leads one at a time.
func (r *Repo) ListLeadIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, listLeadIDsQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("list lead ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lead id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const selectAnswersQuery = `
	SELECT id, lead_id, field_name, response, value_number, value, value_list, date_value, points,
		response_text, affiliate_name, affiliate_image, affiliate_link, redirect_url
	FROM answers
	WHERE lead_id = $1
	ORDER BY field_name, value_number NULLS FIRST`

func (r *Repo) loadAnswers(ctx context.Context, leadID uuid.UUID) ([]Answer, error) {
	rows, err := r.pool.Query(ctx, selectAnswersQuery, leadID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		err := rows.Scan(&a.ID, &a.LeadID, &a.FieldName, &a.Response, &a.ValueNumber, &a.Value, &a.Values,
			&a.DateValue, &a.Points, &a.ResponseText, &a.AffiliateName, &a.AffiliateImage, &a.AffiliateLink, &a.RedirectURL)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// GetLeadByID fetches a lead by primary key with its answers.
func (r *Repo) GetLeadByID(ctx context.Context, accountID, id uuid.UUID) (Lead, []Answer, error) {
	const q = `
		SELECT id, account_id, external_id, x_axis, y_axis, total_score, created_at
		FROM leads
		WHERE account_id = $1 AND id = $2`
	row := r.pool.QueryRow(ctx, q, accountID, id)
	lead, err := scanLead(row)
	if err != nil {
		return Lead{}, nil, err
	}
	answers, err := r.loadAnswers(ctx, lead.ID)
	if err != nil {
		return Lead{}, nil, err
	}
	return lead, answers, nil
}

const updateLeadTotalsQuery = `
	UPDATE leads SET x_axis = $3, y_axis = $4, total_score = $5 WHERE account_id = $1 AND id = $2`

const updateAnswerPointsQuery = `
	UPDATE answers SET points = $2 WHERE id = $1`

// UpdateTotals rewrites a lead's computed totals and per-answer points
// after a recompute.
func (r *Repo) UpdateTotals(ctx context.Context, accountID, leadID uuid.UUID, xAxis, yAxis, total float64, points map[uuid.UUID]*float64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, updateLeadTotalsQuery, accountID, leadID, xAxis, yAxis, total)
	if err != nil {
		return fmt.Errorf("update lead totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	for answerID, p := range points {
		if _, err := tx.Exec(ctx, updateAnswerPointsQuery, answerID, p); err != nil {
			return fmt.Errorf("update answer points: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const deleteLeadQuery = `
	DELETE FROM leads WHERE account_id = $1 AND external_id = $2`

// DeleteLead removes a lead by external id. Answers cascade.
func (r *Repo) DeleteLead(ctx context.Context, accountID uuid.UUID, externalID string) error {
	tag, err := r.pool.Exec(ctx, deleteLeadQuery, accountID, externalID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

const insertLeadLogQuery = `
	INSERT INTO lead_logs (id, account_id, lead_id, snapshot, created_at)
	VALUES ($1, $2, $3, $4, $5)`

// AppendLog writes an append-only JSONB snapshot of a scored lead.
func (r *Repo) AppendLog(ctx context.Context, accountID, leadID uuid.UUID, snapshot []byte) error {
	_, err := r.pool.Exec(ctx, insertLeadLogQuery, uuid.New(), accountID, leadID, snapshot, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert lead log: %w", err)
	}
	return nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(&lead.ID, &lead.AccountID, &lead.ExternalID, &lead.XAxis, &lead.YAxis, &lead.TotalScore, &lead.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound("lead not found")
		}
		return Lead{}, fmt.Errorf("scan lead: %w", err)
	}
	return lead, nil
}

// Package repository provides aggregate queries over stored leads.
package repository

import (
	"context"
	"errors"
	"fmt"

	"leadscoring_backend/internal/analytics/transport"
	"leadscoring_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo provides analytics queries backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates an analytics repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const summaryQuery = `
	SELECT
		COUNT(*),
		COALESCE(AVG(x_axis), 0),
		COALESCE(AVG(y_axis), 0),
		COALESCE(AVG(total_score), 0),
		COUNT(*) FILTER (WHERE total_score < 20),
		COUNT(*) FILTER (WHERE total_score >= 20 AND total_score < 40),
		COUNT(*) FILTER (WHERE total_score >= 40)
	FROM leads
	WHERE account_id = $1`

// Summary computes the account-level scoring overview.
func (r *Repo) Summary(ctx context.Context, accountID uuid.UUID) (transport.Summary, error) {
	var s transport.Summary
	err := r.pool.QueryRow(ctx, summaryQuery, accountID).Scan(
		&s.TotalLeads, &s.AvgXAxis, &s.AvgYAxis, &s.AvgTotal,
		&s.Distribution.Low, &s.Distribution.Medium, &s.Distribution.High)
	if err != nil {
		return transport.Summary{}, fmt.Errorf("load summary: %w", err)
	}
	return s, nil
}

const questionFieldQuery = `
	SELECT field_name FROM questions WHERE id = $1 AND account_id = $2`

const answerDistributionQuery = `
	SELECT a.response, COUNT(*), AVG(a.points)
	FROM answers a
	JOIN leads l ON l.id = a.lead_id
	WHERE l.account_id = $1 AND a.field_name = $2
	GROUP BY a.response
	ORDER BY COUNT(*) DESC, a.response
	LIMIT 100`

// QuestionAnalytics computes the answer distribution for one question.
func (r *Repo) QuestionAnalytics(ctx context.Context, accountID, questionID uuid.UUID) (transport.QuestionAnalytics, error) {
	var fieldName string
	err := r.pool.QueryRow(ctx, questionFieldQuery, questionID, accountID).Scan(&fieldName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transport.QuestionAnalytics{}, apperr.NotFound("question not found")
		}
		return transport.QuestionAnalytics{}, fmt.Errorf("resolve question: %w", err)
	}

	rows, err := r.pool.Query(ctx, answerDistributionQuery, accountID, fieldName)
	if err != nil {
		return transport.QuestionAnalytics{}, fmt.Errorf("load answer distribution: %w", err)
	}
	defer rows.Close()

	result := transport.QuestionAnalytics{QuestionID: questionID, FieldName: fieldName}
	for rows.Next() {
		var b transport.AnswerBucket
		if err := rows.Scan(&b.Response, &b.Count, &b.AvgPoints); err != nil {
			return transport.QuestionAnalytics{}, fmt.Errorf("scan answer bucket: %w", err)
		}
		result.Answers = append(result.Answers, b)
	}
	return result, rows.Err()
}

const recommendationStatsQuery = `
	SELECT q.id, q.field_name, COUNT(a.id) FILTER (WHERE a.response_text IS NOT NULL
		OR a.affiliate_name IS NOT NULL OR a.affiliate_image IS NOT NULL
		OR a.affiliate_link IS NOT NULL OR a.redirect_url IS NOT NULL)
	FROM questions q
	JOIN recommendations r ON r.question_id = q.id
	LEFT JOIN leads l ON l.account_id = q.account_id
	LEFT JOIN answers a ON a.lead_id = l.id AND a.field_name = q.field_name
	WHERE q.account_id = $1
	GROUP BY q.id, q.field_name
	ORDER BY q.field_name`

// RecommendationStats counts, per configured recommendation, the
// answers it fired on.
func (r *Repo) RecommendationStats(ctx context.Context, accountID uuid.UUID) ([]transport.RecommendationStats, error) {
	rows, err := r.pool.Query(ctx, recommendationStatsQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("load recommendation stats: %w", err)
	}
	defer rows.Close()

	var stats []transport.RecommendationStats
	for rows.Next() {
		var s transport.RecommendationStats
		if err := rows.Scan(&s.QuestionID, &s.FieldName, &s.Fired); err != nil {
			return nil, fmt.Errorf("scan recommendation stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

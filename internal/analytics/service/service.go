// Package service implements analytics with a short-lived Redis cache
// in front of the summary query. The cache is invalidated whenever a
// lead is scored or deleted or the scoring configuration changes.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"leadscoring_backend/internal/analytics/repository"
	"leadscoring_backend/internal/analytics/transport"
	"leadscoring_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store is the persistence surface the service reads from.
type Store interface {
	Summary(ctx context.Context, accountID uuid.UUID) (transport.Summary, error)
	QuestionAnalytics(ctx context.Context, accountID, questionID uuid.UUID) (transport.QuestionAnalytics, error)
	RecommendationStats(ctx context.Context, accountID uuid.UUID) ([]transport.RecommendationStats, error)
}

// Service implements analytics queries with caching.
type Service struct {
	store    Store
	rdb      redis.UniversalClient
	cacheTTL time.Duration
	log      *logger.Logger
}

var _ Store = (*repository.Repo)(nil)

// New creates the analytics service.
func New(store Store, rdb redis.UniversalClient, cacheTTL time.Duration, log *logger.Logger) *Service {
	return &Service{store: store, rdb: rdb, cacheTTL: cacheTTL, log: log}
}

func summaryCacheKey(accountID uuid.UUID) string {
	return fmt.Sprintf("analytics:summary:%s", accountID)
}

// Summary returns the account's scoring overview, serving from cache
// when a fresh entry exists.
func (s *Service) Summary(ctx context.Context, accountID uuid.UUID) (transport.Summary, error) {
	key := summaryCacheKey(accountID)
	if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var summary transport.Summary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return summary, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("analytics cache read failed", "error", err)
	}

	summary, err := s.store.Summary(ctx, accountID)
	if err != nil {
		return transport.Summary{}, err
	}
	summary.AvgXAxis = round2(summary.AvgXAxis)
	summary.AvgYAxis = round2(summary.AvgYAxis)
	summary.AvgTotal = round2(summary.AvgTotal)

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.rdb.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
			s.log.Warn("analytics cache write failed", "error", err)
		}
	}
	return summary, nil
}

// QuestionAnalytics returns the answer distribution for one question.
func (s *Service) QuestionAnalytics(ctx context.Context, accountID, questionID uuid.UUID) (transport.QuestionAnalytics, error) {
	return s.store.QuestionAnalytics(ctx, accountID, questionID)
}

// RecommendationStats returns per-recommendation fire counts.
func (s *Service) RecommendationStats(ctx context.Context, accountID uuid.UUID) ([]transport.RecommendationStats, error) {
	return s.store.RecommendationStats(ctx, accountID)
}

// Averages are reported with two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// InvalidateCache drops the account's cached summary.
func (s *Service) InvalidateCache(ctx context.Context, accountID uuid.UUID) error {
	if err := s.rdb.Del(ctx, summaryCacheKey(accountID)).Err(); err != nil {
		return fmt.Errorf("invalidate analytics cache: %w", err)
	}
	return nil
}

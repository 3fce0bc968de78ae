package service

import (
	"context"
	"testing"
	"time"

	"leadscoring_backend/internal/analytics/transport"
	"leadscoring_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type stubStore struct {
	summary      transport.Summary
	summaryCalls int
}

func (s *stubStore) Summary(ctx context.Context, accountID uuid.UUID) (transport.Summary, error) {
	s.summaryCalls++
	return s.summary, nil
}

func (s *stubStore) QuestionAnalytics(ctx context.Context, accountID, questionID uuid.UUID) (transport.QuestionAnalytics, error) {
	return transport.QuestionAnalytics{}, nil
}

func (s *stubStore) RecommendationStats(ctx context.Context, accountID uuid.UUID) ([]transport.RecommendationStats, error) {
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *stubStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &stubStore{summary: transport.Summary{
		TotalLeads: 3,
		AvgXAxis:   10.5,
		AvgYAxis:   4.2,
		AvgTotal:   14.7,
		Distribution: transport.ScoreDistribution{
			Low: 2, Medium: 1,
		},
	}}
	svc := New(store, rdb, 5*time.Minute, logger.New("test"))
	return svc, store, mr
}

func TestSummaryServesSecondCallFromCache(t *testing.T) {
	svc, store, _ := newTestService(t)
	accountID := uuid.New()
	ctx := context.Background()

	first, err := svc.Summary(ctx, accountID)
	if err != nil {
		t.Fatalf("first summary: %v", err)
	}
	second, err := svc.Summary(ctx, accountID)
	if err != nil {
		t.Fatalf("second summary: %v", err)
	}

	if store.summaryCalls != 1 {
		t.Fatalf("store queried %d times, want 1", store.summaryCalls)
	}
	if first != second {
		t.Fatalf("cached summary %+v differs from original %+v", second, first)
	}
	if second.TotalLeads != 3 || second.Distribution.Low != 2 {
		t.Fatalf("unexpected summary: %+v", second)
	}
}

func TestSummaryCacheIsPerAccount(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Summary(ctx, uuid.New()); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if _, err := svc.Summary(ctx, uuid.New()); err != nil {
		t.Fatalf("summary: %v", err)
	}

	if store.summaryCalls != 2 {
		t.Fatalf("store queried %d times, want 2 for distinct accounts", store.summaryCalls)
	}
}

func TestInvalidateCacheForcesRecompute(t *testing.T) {
	svc, store, _ := newTestService(t)
	accountID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Summary(ctx, accountID); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if err := svc.InvalidateCache(ctx, accountID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.Summary(ctx, accountID); err != nil {
		t.Fatalf("summary after invalidate: %v", err)
	}

	if store.summaryCalls != 2 {
		t.Fatalf("store queried %d times, want 2 after invalidation", store.summaryCalls)
	}
}

func TestSummaryRoundsAveragesToTwoDecimals(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.summary.AvgXAxis = 10.33333
	store.summary.AvgYAxis = 4.66666
	store.summary.AvgTotal = 14.999999

	got, err := svc.Summary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.AvgXAxis != 10.33 || got.AvgYAxis != 4.67 || got.AvgTotal != 15 {
		t.Fatalf("averages = %v/%v/%v, want 10.33/4.67/15",
			got.AvgXAxis, got.AvgYAxis, got.AvgTotal)
	}
}

func TestSummaryExpiresWithTTL(t *testing.T) {
	svc, store, mr := newTestService(t)
	accountID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Summary(ctx, accountID); err != nil {
		t.Fatalf("summary: %v", err)
	}
	mr.FastForward(6 * time.Minute)
	if _, err := svc.Summary(ctx, accountID); err != nil {
		t.Fatalf("summary after expiry: %v", err)
	}

	if store.summaryCalls != 2 {
		t.Fatalf("store queried %d times, want 2 after TTL expiry", store.summaryCalls)
	}
}

// Package analytics provides read-side reporting over stored leads:
// account summary, per-question answer distributions and
// recommendation fire counts.
package analytics

import (
	"context"
	"time"

	"leadscoring_backend/internal/analytics/handler"
	"leadscoring_backend/internal/analytics/repository"
	"leadscoring_backend/internal/analytics/service"
	"leadscoring_backend/internal/events"
	apphttp "leadscoring_backend/internal/http"
	"leadscoring_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the analytics module.
func NewModule(pool *pgxpool.Pool, rdb redis.UniversalClient, cacheTTL time.Duration, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, rdb, cacheTTL, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterRoutes mounts analytics routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/analytics")
	g.GET("/summary", m.handler.Summary)
	g.GET("/questions/:id", m.handler.QuestionAnalytics)
	g.GET("/recommendations", m.handler.RecommendationStats)
}

// RegisterHandlers subscribes cache invalidation to the events that
// change the numbers behind the summary.
func (m *Module) RegisterHandlers(bus events.Bus) {
	handlerFor := func(extract func(events.Event) (uuid.UUID, bool)) events.Handler {
		return events.HandlerFunc(func(ctx context.Context, event events.Event) error {
			accountID, ok := extract(event)
			if !ok {
				return nil
			}
			return m.service.InvalidateCache(ctx, accountID)
		})
	}

	bus.Subscribe(events.LeadScored{}.EventName(), handlerFor(func(e events.Event) (uuid.UUID, bool) {
		scored, ok := e.(events.LeadScored)
		return scored.AccountID, ok
	}))
	bus.Subscribe(events.LeadDeleted{}.EventName(), handlerFor(func(e events.Event) (uuid.UUID, bool) {
		deleted, ok := e.(events.LeadDeleted)
		return deleted.AccountID, ok
	}))
	bus.Subscribe(events.ScoringConfigChanged{}.EventName(), handlerFor(func(e events.Event) (uuid.UUID, bool) {
		changed, ok := e.(events.ScoringConfigChanged)
		return changed.AccountID, ok
	}))
}

var _ apphttp.Module = (*Module)(nil)

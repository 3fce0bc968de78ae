// Package leads provides the lead bounded context: questionnaire
// submissions scored through the expression engine and persisted with
// their computed points and fired recommendations.
package leads

import (
	"context"

	"leadscoring_backend/internal/events"
	apphttp "leadscoring_backend/internal/http"
	"leadscoring_backend/internal/leads/handler"
	"leadscoring_backend/internal/leads/repository"
	"leadscoring_backend/internal/leads/service"
	"leadscoring_backend/platform/logger"
	"leadscoring_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the leads service for the background worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/leads")
	g.POST("", m.handler.Submit)
	g.GET("", m.handler.List)
	g.GET("/:lead_id", m.handler.Get)
	g.DELETE("/:lead_id", m.handler.Delete)
}

// RegisterHandlers subscribes the module to domain events. Each scored
// lead gets an append-only snapshot in the lead log.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadScored{}.EventName(), events.HandlerFunc(
		func(ctx context.Context, event events.Event) error {
			scored, ok := event.(events.LeadScored)
			if !ok {
				return nil
			}
			return m.service.SnapshotLead(ctx, scored.AccountID, scored.LeadID)
		}))
}

var _ apphttp.Module = (*Module)(nil)

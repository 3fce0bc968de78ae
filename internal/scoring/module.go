// Package scoring provides the scoring configuration bounded context:
// per-question scoring models (weight, axis flags, optional formula,
// point ranges) and rule-gated recommendations. Expressions are
// validated against the account's question catalog before they are
// stored.
package scoring

import (
	"leadscoring_backend/internal/events"
	apphttp "leadscoring_backend/internal/http"
	"leadscoring_backend/internal/scoring/handler"
	"leadscoring_backend/internal/scoring/repository"
	"leadscoring_backend/internal/scoring/service"
	"leadscoring_backend/platform/logger"
	"leadscoring_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the scoring bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the scoring module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "scoring"
}

// RegisterRoutes mounts scoring routes on the protected group. The
// routes nest under questions because a scoring model and a
// recommendation each belong to exactly one question.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/questions/:id")
	g.PUT("/scoring-model", m.handler.SaveModel)
	g.GET("/scoring-model", m.handler.GetModel)
	g.DELETE("/scoring-model", m.handler.DeleteModel)
	g.PUT("/recommendation", m.handler.SaveRecommendation)
	g.GET("/recommendation", m.handler.GetRecommendation)
	g.DELETE("/recommendation", m.handler.DeleteRecommendation)
}

var _ apphttp.Module = (*Module)(nil)

// Package questions provides the question catalog bounded context: the
// questions an account asks its leads, including choice lists and
// value bounds. Scoring configuration lives in the scoring module.
package questions

import (
	apphttp "leadscoring_backend/internal/http"
	"leadscoring_backend/internal/questions/handler"
	"leadscoring_backend/internal/questions/repository"
	"leadscoring_backend/internal/questions/service"
	"leadscoring_backend/platform/logger"
	"leadscoring_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the questions bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the questions module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "questions"
}

// RegisterRoutes mounts question routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/questions")
	g.GET("", m.handler.List)
	g.POST("", m.handler.Create)
	g.GET("/:id", m.handler.Get)
	g.PUT("/:id", m.handler.Update)
	g.DELETE("/:id", m.handler.Delete)
}

var _ apphttp.Module = (*Module)(nil)

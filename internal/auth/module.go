// Package auth provides the authentication bounded context module.
// Accounts are single-user tenants: every question, scoring model and
// lead belongs to exactly one account.
package auth

import (
	"leadscoring_backend/internal/auth/handler"
	"leadscoring_backend/internal/auth/repository"
	"leadscoring_backend/internal/auth/service"
	apphttp "leadscoring_backend/internal/http"
	"leadscoring_backend/platform/config"
	"leadscoring_backend/platform/logger"
	"leadscoring_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	authGroup.POST("/register", m.handler.Register)
	authGroup.POST("/login", m.handler.Login)

	ctx.Protected.GET("/accounts/me", m.handler.GetMe)
}

var _ apphttp.Module = (*Module)(nil)

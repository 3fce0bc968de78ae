// Package handler provides HTTP handlers for authentication.
package handler

import (
	"net/http"

	"leadscoring_backend/internal/auth/service"
	"leadscoring_backend/internal/auth/transport"
	"leadscoring_backend/platform/httpkit"
	"leadscoring_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request payload"

// Handler handles auth HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates an auth handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

// GetMe handles GET /accounts/me.
func (h *Handler) GetMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	account, err := h.svc.GetAccount(c.Request.Context(), identity.AccountID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, account)
}

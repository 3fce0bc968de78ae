// Package handler provides HTTP handlers for the question catalog.
package handler

import (
	"net/http"

	"leadscoring_backend/internal/questions/service"
	"leadscoring_backend/internal/questions/transport"
	"leadscoring_backend/platform/httpkit"
	"leadscoring_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request payload"
	msgInvalidID      = "invalid question id"
)

// Handler handles question HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a questions handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List handles GET /questions.
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	questions, err := h.svc.List(c.Request.Context(), identity.AccountID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, questions)
}

// Get handles GET /questions/:id.
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	question, err := h.svc.Get(c.Request.Context(), identity.AccountID(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, question)
}

// Create handles POST /questions.
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	question, err := h.svc.Create(c.Request.Context(), identity.AccountID(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// Update handles PUT /questions/:id.
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	question, err := h.svc.Update(c.Request.Context(), identity.AccountID(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, question)
}

// Delete handles DELETE /questions/:id.
func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.AccountID(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

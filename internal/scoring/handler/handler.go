// Package handler provides HTTP handlers for scoring configuration.
package handler

import (
	"net/http"

	"leadscoring_backend/internal/scoring/service"
	"leadscoring_backend/internal/scoring/transport"
	"leadscoring_backend/platform/httpkit"
	"leadscoring_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request payload"
	msgInvalidID      = "invalid question id"
)

// Handler handles scoring HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a scoring handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SaveModel handles PUT /questions/:id/scoring-model.
func (h *Handler) SaveModel(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.SaveScoringModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	model, err := h.svc.SaveModel(c.Request.Context(), identity.AccountID(), questionID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, model)
}

// GetModel handles GET /questions/:id/scoring-model.
func (h *Handler) GetModel(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	model, err := h.svc.GetModel(c.Request.Context(), identity.AccountID(), questionID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, model)
}

// DeleteModel handles DELETE /questions/:id/scoring-model.
func (h *Handler) DeleteModel(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := h.svc.DeleteModel(c.Request.Context(), identity.AccountID(), questionID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveRecommendation handles PUT /questions/:id/recommendation.
func (h *Handler) SaveRecommendation(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.SaveRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	rec, err := h.svc.SaveRecommendation(c.Request.Context(), identity.AccountID(), questionID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, rec)
}

// GetRecommendation handles GET /questions/:id/recommendation.
func (h *Handler) GetRecommendation(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	rec, err := h.svc.GetRecommendation(c.Request.Context(), identity.AccountID(), questionID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, rec)
}

// DeleteRecommendation handles DELETE /questions/:id/recommendation.
func (h *Handler) DeleteRecommendation(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if err := h.svc.DeleteRecommendation(c.Request.Context(), identity.AccountID(), questionID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

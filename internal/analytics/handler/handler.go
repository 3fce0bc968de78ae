// Package handler provides HTTP handlers for analytics.
package handler

import (
	"net/http"

	"leadscoring_backend/internal/analytics/service"
	"leadscoring_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidID = "invalid question id"

// Handler handles analytics HTTP requests.
type Handler struct {
	svc *service.Service
}

// New creates an analytics handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Summary handles GET /analytics/summary.
func (h *Handler) Summary(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	summary, err := h.svc.Summary(c.Request.Context(), identity.AccountID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, summary)
}

// QuestionAnalytics handles GET /analytics/questions/:id.
func (h *Handler) QuestionAnalytics(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.QuestionAnalytics(c.Request.Context(), identity.AccountID(), questionID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, result)
}

// RecommendationStats handles GET /analytics/recommendations.
func (h *Handler) RecommendationStats(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	stats, err := h.svc.RecommendationStats(c.Request.Context(), identity.AccountID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, stats)
}

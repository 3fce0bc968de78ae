// Package handler provides HTTP handlers for lead submission and retrieval.
package handler

import (
	"net/http"

	"leadscoring_backend/internal/leads/service"
	"leadscoring_backend/internal/leads/transport"
	"leadscoring_backend/platform/httpkit"
	"leadscoring_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request payload"

// Handler handles lead HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Submit handles POST /leads.
func (h *Handler) Submit(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), identity.AccountID(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List handles GET /leads.
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var query transport.ListLeadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	leads, err := h.svc.List(c.Request.Context(), identity.AccountID(), query.Limit, query.Offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, leads)
}

// Get handles GET /leads/:lead_id.
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	lead, err := h.svc.Get(c.Request.Context(), identity.AccountID(), c.Param("lead_id"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, lead)
}

// Delete handles DELETE /leads/:lead_id.
func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	if err := h.svc.Delete(c.Request.Context(), identity.AccountID(), c.Param("lead_id")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

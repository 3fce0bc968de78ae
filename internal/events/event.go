// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadscoring_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadScored is published after a lead submission has been coerced,
// scored and persisted. Subscribers append the history snapshot and
// invalidate cached analytics.
type LeadScored struct {
	BaseEvent
	AccountID  uuid.UUID `json:"accountId"`
	LeadID     uuid.UUID `json:"leadId"`
	XAxis      float64   `json:"xAxis"`
	YAxis      float64   `json:"yAxis"`
	TotalScore float64   `json:"totalScore"`
}

func (e LeadScored) EventName() string { return "leads.lead.scored" }

// LeadDeleted is published when a lead is removed, so cached analytics
// for the account can be invalidated.
type LeadDeleted struct {
	BaseEvent
	AccountID uuid.UUID `json:"accountId"`
	LeadID    uuid.UUID `json:"leadId"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// ScoringConfigChanged is published when a scoring model, range or
// recommendation is created, updated or deleted. It triggers a
// background recompute of the account's stored lead totals.
type ScoringConfigChanged struct {
	BaseEvent
	AccountID uuid.UUID `json:"accountId"`
}

func (e ScoringConfigChanged) EventName() string { return "scoring.config.changed" }

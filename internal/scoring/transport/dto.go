// Package transport defines request and response DTOs for the scoring module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ValueRangeInput maps a half-open numeric interval [start, end) to points.
// A nil bound means unbounded on that side.
type ValueRangeInput struct {
	Start  *float64 `json:"start"`
	End    *float64 `json:"end"`
	Points int      `json:"points"`
}

// DatesRangeInput maps a half-open date interval [start, end) to points.
type DatesRangeInput struct {
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
	Points int        `json:"points"`
}

// SaveScoringModelRequest creates or replaces the scoring model of a question.
type SaveScoringModelRequest struct {
	Weight      float64           `json:"weight" validate:"required,gt=0"`
	XAxis       bool              `json:"x_axis"`
	YAxis       bool              `json:"y_axis"`
	Formula     string            `json:"formula" validate:"max=2000"`
	ValueRanges []ValueRangeInput `json:"value_ranges"`
	DatesRanges []DatesRangeInput `json:"dates_ranges"`
}

// ValueRange is the public representation of a numeric range.
type ValueRange struct {
	ID     uuid.UUID `json:"id"`
	Start  *float64  `json:"start"`
	End    *float64  `json:"end"`
	Points int       `json:"points"`
}

// DatesRange is the public representation of a date range.
type DatesRange struct {
	ID     uuid.UUID  `json:"id"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
	Points int        `json:"points"`
}

// ScoringModel is the public representation of a question's scoring model.
type ScoringModel struct {
	ID          uuid.UUID    `json:"id"`
	QuestionID  uuid.UUID    `json:"question_id"`
	Weight      float64      `json:"weight"`
	XAxis       bool         `json:"x_axis"`
	YAxis       bool         `json:"y_axis"`
	Formula     string       `json:"formula,omitempty"`
	ValueRanges []ValueRange `json:"value_ranges,omitempty"`
	DatesRanges []DatesRange `json:"dates_ranges,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SaveRecommendationRequest creates or replaces the recommendation of a question.
type SaveRecommendationRequest struct {
	Rule           string `json:"rule" validate:"required,max=2000"`
	ResponseText   string `json:"response_text" validate:"max=2000"`
	AffiliateName  string `json:"affiliate_name" validate:"max=255"`
	AffiliateImage string `json:"affiliate_image" validate:"omitempty,url,max=500"`
	AffiliateLink  string `json:"affiliate_link" validate:"omitempty,url,max=500"`
	RedirectURL    string `json:"redirect_url" validate:"omitempty,url,max=500"`
}

// Recommendation is the public representation of a question's recommendation.
type Recommendation struct {
	ID             uuid.UUID `json:"id"`
	QuestionID     uuid.UUID `json:"question_id"`
	Rule           string    `json:"rule"`
	ResponseText   string    `json:"response_text,omitempty"`
	AffiliateName  string    `json:"affiliate_name,omitempty"`
	AffiliateImage string    `json:"affiliate_image,omitempty"`
	AffiliateLink  string    `json:"affiliate_link,omitempty"`
	RedirectURL    string    `json:"redirect_url,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

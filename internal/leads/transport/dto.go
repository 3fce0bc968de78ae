// Package transport defines request and response DTOs for the leads module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// AnswerInput is one raw submitted answer. Field names may carry a
// trailing [n] index for multi-value questions.
type AnswerInput struct {
	FieldName string `json:"field_name" validate:"required,max=120"`
	Response  string `json:"response" validate:"max=2000"`
}

// SubmitLeadRequest is the payload for a questionnaire submission.
type SubmitLeadRequest struct {
	LeadID          string        `json:"lead_id" validate:"required,max=100"`
	AllowDuplicates bool          `json:"allow_duplicates"`
	Answers         []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// RecommendationPayload is the follow-up content attached to a fired rule.
type RecommendationPayload struct {
	ResponseText   string `json:"response_text,omitempty"`
	AffiliateName  string `json:"affiliate_name,omitempty"`
	AffiliateImage string `json:"affiliate_image,omitempty"`
	AffiliateLink  string `json:"affiliate_link,omitempty"`
	RedirectURL    string `json:"redirect_url,omitempty"`
}

// SubmitLeadResponse carries the computed score and any fired
// recommendations keyed by field name.
type SubmitLeadResponse struct {
	LeadID          string                           `json:"lead_id"`
	XAxis           float64                          `json:"x_axis"`
	YAxis           float64                          `json:"y_axis"`
	TotalScore      float64                          `json:"total_score"`
	Recommendations map[string]RecommendationPayload `json:"recommendations"`
}

// AnswerView is the stored representation of one answer.
type AnswerView struct {
	FieldName      string                 `json:"field_name"`
	Response       string                 `json:"response"`
	ValueNumber    *int                   `json:"value_number,omitempty"`
	Value          *float64               `json:"value,omitempty"`
	Values         []float64              `json:"values,omitempty"`
	DateValue      *time.Time             `json:"date_value,omitempty"`
	Points         *float64               `json:"points"`
	Recommendation *RecommendationPayload `json:"recommendation,omitempty"`
}

// Lead is the public representation of a stored lead.
type Lead struct {
	ID         uuid.UUID    `json:"id"`
	LeadID     string       `json:"lead_id"`
	XAxis      float64      `json:"x_axis"`
	YAxis      float64      `json:"y_axis"`
	TotalScore float64      `json:"total_score"`
	CreatedAt  time.Time    `json:"created_at"`
	Answers    []AnswerView `json:"answers,omitempty"`
}

// ListLeadsQuery holds pagination parameters for lead listing.
type ListLeadsQuery struct {
	Limit  int `form:"limit,default=50" validate:"min=1,max=200"`
	Offset int `form:"offset,default=0" validate:"min=0"`
}

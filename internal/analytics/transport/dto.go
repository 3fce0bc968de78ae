// Package transport defines response DTOs for the analytics module.
package transport

import "github.com/google/uuid"

// ScoreDistribution buckets leads by total score.
type ScoreDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Summary is the account-level scoring overview.
type Summary struct {
	TotalLeads   int               `json:"total_leads"`
	AvgXAxis     float64           `json:"avg_x_axis"`
	AvgYAxis     float64           `json:"avg_y_axis"`
	AvgTotal     float64           `json:"avg_total"`
	Distribution ScoreDistribution `json:"distribution"`
}

// AnswerBucket is one response value and how often it was submitted.
type AnswerBucket struct {
	Response  string   `json:"response"`
	Count     int      `json:"count"`
	AvgPoints *float64 `json:"avg_points,omitempty"`
}

// QuestionAnalytics is the answer distribution for one question.
type QuestionAnalytics struct {
	QuestionID uuid.UUID      `json:"question_id"`
	FieldName  string         `json:"field_name"`
	Answers    []AnswerBucket `json:"answers"`
}

// RecommendationStats counts how often each recommendation fired.
type RecommendationStats struct {
	QuestionID uuid.UUID `json:"question_id"`
	FieldName  string    `json:"field_name"`
	Fired      int       `json:"fired"`
}

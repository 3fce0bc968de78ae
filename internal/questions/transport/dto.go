// Package transport defines request and response DTOs for the questions module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ChoiceInput is one selectable option for a choices-type question.
type ChoiceInput struct {
	Text  string  `json:"text" validate:"required,max=255"`
	Slug  string  `json:"slug" validate:"required,max=100"`
	Value float64 `json:"value"`
}

// CreateQuestionRequest is the payload for creating a question.
type CreateQuestionRequest struct {
	FieldName      string        `json:"field_name" validate:"required,max=100"`
	Label          string        `json:"label" validate:"required,max=500"`
	QuestionType   string        `json:"question_type" validate:"required,oneof=open choices multiple_choices integer slider date"`
	MultipleValues bool          `json:"multiple_values"`
	MinValue       *float64      `json:"min_value"`
	MaxValue       *float64      `json:"max_value"`
	Position       int           `json:"position" validate:"min=0"`
	Choices        []ChoiceInput `json:"choices" validate:"dive"`
}

// UpdateQuestionRequest is the payload for replacing a question.
// The field name and type are immutable after creation; answers and
// scoring rules already reference them.
type UpdateQuestionRequest struct {
	Label          string        `json:"label" validate:"required,max=500"`
	MultipleValues bool          `json:"multiple_values"`
	MinValue       *float64      `json:"min_value"`
	MaxValue       *float64      `json:"max_value"`
	Position       int           `json:"position" validate:"min=0"`
	Choices        []ChoiceInput `json:"choices" validate:"dive"`
}

// Choice is the public representation of a choice.
type Choice struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Slug  string    `json:"slug"`
	Value float64   `json:"value"`
}

// Question is the public representation of a question.
type Question struct {
	ID             uuid.UUID `json:"id"`
	FieldName      string    `json:"field_name"`
	Label          string    `json:"label"`
	QuestionType   string    `json:"question_type"`
	MultipleValues bool      `json:"multiple_values"`
	MinValue       *float64  `json:"min_value,omitempty"`
	MaxValue       *float64  `json:"max_value,omitempty"`
	Position       int       `json:"position"`
	Choices        []Choice  `json:"choices,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

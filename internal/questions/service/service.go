// Package service implements question catalog business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"leadscoring_backend/internal/engine"
	"leadscoring_backend/internal/questions/repository"
	"leadscoring_backend/internal/questions/transport"
	"leadscoring_backend/platform/apperr"
	"leadscoring_backend/platform/logger"

	"github.com/google/uuid"
)

// Service implements question catalog operations.
type Service struct {
	repo *repository.Repo
	log  *logger.Logger
}

// New creates the questions service.
func New(repo *repository.Repo, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create validates and persists a new question.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req transport.CreateQuestionRequest) (transport.Question, error) {
	if !engine.ValidFieldName(req.FieldName) {
		return transport.Question{}, apperr.Validation(
			fmt.Sprintf("field name %q may only contain letters, digits and underscores", req.FieldName))
	}
	if err := validateShape(req.QuestionType, req.MinValue, req.MaxValue, req.Choices); err != nil {
		return transport.Question{}, err
	}

	now := time.Now().UTC()
	q := repository.Question{
		ID:             uuid.New(),
		AccountID:      accountID,
		FieldName:      req.FieldName,
		Label:          req.Label,
		QuestionType:   req.QuestionType,
		MultipleValues: req.MultipleValues,
		MinValue:       req.MinValue,
		MaxValue:       req.MaxValue,
		Position:       req.Position,
		Choices:        toRepoChoices(req.Choices),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return transport.Question{}, err
	}

	s.log.Info("question_created", "account_id", accountID, "field_name", q.FieldName)
	return toTransport(q), nil
}

// Update replaces a question's mutable fields. Field name and type
// stay fixed so existing answers and rules keep resolving.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req transport.UpdateQuestionRequest) (transport.Question, error) {
	existing, err := s.repo.GetByID(ctx, accountID, id)
	if err != nil {
		return transport.Question{}, err
	}
	if err := validateShape(existing.QuestionType, req.MinValue, req.MaxValue, req.Choices); err != nil {
		return transport.Question{}, err
	}

	existing.Label = req.Label
	existing.MultipleValues = req.MultipleValues
	existing.MinValue = req.MinValue
	existing.MaxValue = req.MaxValue
	existing.Position = req.Position
	existing.Choices = toRepoChoices(req.Choices)
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return transport.Question{}, err
	}
	return s.Get(ctx, accountID, id)
}

// Get returns a single question.
func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (transport.Question, error) {
	q, err := s.repo.GetByID(ctx, accountID, id)
	if err != nil {
		return transport.Question{}, err
	}
	return toTransport(q), nil
}

// List returns all questions for the account.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]transport.Question, error) {
	rows, err := s.repo.List(ctx, accountID)
	if err != nil {
		return nil, err
	}
	result := make([]transport.Question, 0, len(rows))
	for _, q := range rows {
		result = append(result, toTransport(q))
	}
	return result, nil
}

// Delete removes a question and its choices.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return err
	}
	s.log.Info("question_deleted", "account_id", accountID, "question_id", id)
	return nil
}

func validateShape(questionType string, minValue, maxValue *float64, choices []transport.ChoiceInput) error {
	switch engine.QuestionType(questionType) {
	case engine.TypeSlider:
		if minValue == nil || maxValue == nil {
			return apperr.Validation("slider questions require min_value and max_value")
		}
		if *minValue >= *maxValue {
			return apperr.Validation("min_value must be less than max_value")
		}
	case engine.TypeChoices, engine.TypeMultipleChoices:
		if len(choices) == 0 {
			return apperr.Validation("choice questions require at least one choice")
		}
		seen := make(map[string]bool, len(choices))
		for _, c := range choices {
			if seen[c.Slug] {
				return apperr.Conflict(fmt.Sprintf("duplicate choice slug %q", c.Slug))
			}
			seen[c.Slug] = true
		}
	}
	return nil
}

func toRepoChoices(in []transport.ChoiceInput) []repository.Choice {
	out := make([]repository.Choice, 0, len(in))
	for _, c := range in {
		out = append(out, repository.Choice{Text: c.Text, Slug: c.Slug, Value: c.Value})
	}
	return out
}

func toTransport(q repository.Question) transport.Question {
	choices := make([]transport.Choice, 0, len(q.Choices))
	for _, c := range q.Choices {
		choices = append(choices, transport.Choice{ID: c.ID, Text: c.Text, Slug: c.Slug, Value: c.Value})
	}
	return transport.Question{
		ID:             q.ID,
		FieldName:      q.FieldName,
		Label:          q.Label,
		QuestionType:   q.QuestionType,
		MultipleValues: q.MultipleValues,
		MinValue:       q.MinValue,
		MaxValue:       q.MaxValue,
		Position:       q.Position,
		Choices:        choices,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

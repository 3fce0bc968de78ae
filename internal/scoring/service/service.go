// Package service implements scoring configuration business logic:
// validating formulas and rules against the account's question catalog
// before persisting, and announcing configuration changes so stored
// lead totals can be recomputed.
package service

import (
	"context"
	"time"

	"leadscoring_backend/internal/engine"
	"leadscoring_backend/internal/events"
	"leadscoring_backend/internal/scoring/repository"
	"leadscoring_backend/internal/scoring/transport"
	"leadscoring_backend/platform/apperr"
	"leadscoring_backend/platform/logger"

	"github.com/google/uuid"
)

// Service implements scoring configuration operations.
type Service struct {
	repo *repository.Repo
	bus  events.Bus
	log  *logger.Logger
}

// New creates the scoring service.
func New(repo *repository.Repo, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// SaveModel validates and persists a question's scoring model.
// An empty formula means the raw answer value is matched against the
// ranges directly.
func (s *Service) SaveModel(ctx context.Context, accountID, questionID uuid.UUID, req transport.SaveScoringModelRequest) (transport.ScoringModel, error) {
	if _, err := s.repo.QuestionFieldName(ctx, accountID, questionID); err != nil {
		return transport.ScoringModel{}, err
	}

	if req.Formula != "" {
		catalog, err := s.repo.QuestionCatalog(ctx, accountID)
		if err != nil {
			return transport.ScoringModel{}, err
		}
		if err := s.checkExpression(req.Formula, engine.KindFormula, catalog); err != nil {
			return transport.ScoringModel{}, err
		}
	}
	if err := validateRanges(req.ValueRanges, req.DatesRanges); err != nil {
		return transport.ScoringModel{}, err
	}

	model := repository.ScoringModel{
		ID:          uuid.New(),
		QuestionID:  questionID,
		Weight:      req.Weight,
		XAxis:       req.XAxis,
		YAxis:       req.YAxis,
		Formula:     req.Formula,
		ValueRanges: toRepoValueRanges(req.ValueRanges),
		DatesRanges: toRepoDatesRanges(req.DatesRanges),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.repo.SaveModel(ctx, model); err != nil {
		return transport.ScoringModel{}, err
	}

	s.publishConfigChanged(ctx, accountID)
	s.log.Info("scoring_model_saved", "account_id", accountID, "question_id", questionID)
	return s.GetModel(ctx, accountID, questionID)
}

// GetModel returns a question's scoring model.
func (s *Service) GetModel(ctx context.Context, accountID, questionID uuid.UUID) (transport.ScoringModel, error) {
	m, err := s.repo.GetModel(ctx, accountID, questionID)
	if err != nil {
		return transport.ScoringModel{}, err
	}
	return modelToTransport(m), nil
}

// DeleteModel removes a question's scoring model.
func (s *Service) DeleteModel(ctx context.Context, accountID, questionID uuid.UUID) error {
	if err := s.repo.DeleteModel(ctx, accountID, questionID); err != nil {
		return err
	}
	s.publishConfigChanged(ctx, accountID)
	return nil
}

// SaveRecommendation validates and persists a question's recommendation rule.
func (s *Service) SaveRecommendation(ctx context.Context, accountID, questionID uuid.UUID, req transport.SaveRecommendationRequest) (transport.Recommendation, error) {
	if _, err := s.repo.QuestionFieldName(ctx, accountID, questionID); err != nil {
		return transport.Recommendation{}, err
	}

	catalog, err := s.repo.QuestionCatalog(ctx, accountID)
	if err != nil {
		return transport.Recommendation{}, err
	}
	if err := s.checkExpression(req.Rule, engine.KindRule, catalog); err != nil {
		return transport.Recommendation{}, err
	}

	rec := repository.Recommendation{
		ID:             uuid.New(),
		QuestionID:     questionID,
		Rule:           req.Rule,
		ResponseText:   req.ResponseText,
		AffiliateName:  req.AffiliateName,
		AffiliateImage: req.AffiliateImage,
		AffiliateLink:  req.AffiliateLink,
		RedirectURL:    req.RedirectURL,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.repo.SaveRecommendation(ctx, rec); err != nil {
		return transport.Recommendation{}, err
	}

	s.publishConfigChanged(ctx, accountID)
	return s.GetRecommendation(ctx, accountID, questionID)
}

// GetRecommendation returns a question's recommendation.
func (s *Service) GetRecommendation(ctx context.Context, accountID, questionID uuid.UUID) (transport.Recommendation, error) {
	rec, err := s.repo.GetRecommendation(ctx, accountID, questionID)
	if err != nil {
		return transport.Recommendation{}, err
	}
	return recommendationToTransport(rec), nil
}

// DeleteRecommendation removes a question's recommendation.
func (s *Service) DeleteRecommendation(ctx context.Context, accountID, questionID uuid.UUID) error {
	if err := s.repo.DeleteRecommendation(ctx, accountID, questionID); err != nil {
		return err
	}
	s.publishConfigChanged(ctx, accountID)
	return nil
}

// checkExpression validates grammar and structure, then confirms every
// referenced field resolves to a usable question.
func (s *Service) checkExpression(src string, kind engine.Kind, catalog map[string]*engine.Question) error {
	if err := engine.Validate(src, kind, catalog); err != nil {
		return apperr.Validation(err.Error())
	}
	usable := engine.UsableFieldNames(catalog)
	if err := engine.CheckFieldNames(src, kind, usable); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

func (s *Service) publishConfigChanged(ctx context.Context, accountID uuid.UUID) {
	event := events.ScoringConfigChanged{
		BaseEvent: events.NewBaseEvent(),
		AccountID: accountID,
	}
	s.bus.Publish(ctx, event)
}

func validateRanges(valueRanges []transport.ValueRangeInput, datesRanges []transport.DatesRangeInput) error {
	for _, vr := range valueRanges {
		if vr.Start != nil && vr.End != nil && *vr.Start >= *vr.End {
			return apperr.Validation("range start must be less than range end")
		}
	}
	for _, dr := range datesRanges {
		if dr.Start != nil && dr.End != nil && !dr.Start.Before(*dr.End) {
			return apperr.Validation("range start must be before range end")
		}
	}
	return nil
}

func toRepoValueRanges(in []transport.ValueRangeInput) []repository.ValueRange {
	out := make([]repository.ValueRange, 0, len(in))
	for _, vr := range in {
		out = append(out, repository.ValueRange{Start: vr.Start, End: vr.End, Points: vr.Points})
	}
	return out
}

func toRepoDatesRanges(in []transport.DatesRangeInput) []repository.DatesRange {
	out := make([]repository.DatesRange, 0, len(in))
	for _, dr := range in {
		out = append(out, repository.DatesRange{Start: dr.Start, End: dr.End, Points: dr.Points})
	}
	return out
}

func modelToTransport(m repository.ScoringModel) transport.ScoringModel {
	out := transport.ScoringModel{
		ID:         m.ID,
		QuestionID: m.QuestionID,
		Weight:     m.Weight,
		XAxis:      m.XAxis,
		YAxis:      m.YAxis,
		Formula:    m.Formula,
		UpdatedAt:  m.UpdatedAt,
	}
	for _, vr := range m.ValueRanges {
		out.ValueRanges = append(out.ValueRanges, transport.ValueRange{ID: vr.ID, Start: vr.Start, End: vr.End, Points: vr.Points})
	}
	for _, dr := range m.DatesRanges {
		out.DatesRanges = append(out.DatesRanges, transport.DatesRange{ID: dr.ID, Start: dr.Start, End: dr.End, Points: dr.Points})
	}
	return out
}

func recommendationToTransport(r repository.Recommendation) transport.Recommendation {
	return transport.Recommendation{
		ID:             r.ID,
		QuestionID:     r.QuestionID,
		Rule:           r.Rule,
		ResponseText:   r.ResponseText,
		AffiliateName:  r.AffiliateName,
		AffiliateImage: r.AffiliateImage,
		AffiliateLink:  r.AffiliateLink,
		RedirectURL:    r.RedirectURL,
		UpdatedAt:      r.UpdatedAt,
	}
}

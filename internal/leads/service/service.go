// Package service implements the lead submission flow: coercion,
// scoring, recommendation collection and atomic persistence, plus the
// recompute pass the background worker runs after scoring configuration
// changes.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadscoring_backend/internal/engine"
	"leadscoring_backend/internal/events"
	"leadscoring_backend/internal/leads/repository"
	"leadscoring_backend/internal/leads/transport"
	"leadscoring_backend/platform/apperr"
	"leadscoring_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const recomputeParallelism = 4

// Store is the persistence surface the service depends on.
type Store interface {
	ScoringCatalog(ctx context.Context, accountID uuid.UUID) (map[string]*engine.Question, error)
	CreateLead(ctx context.Context, lead repository.Lead, answers []repository.Answer, replaceExisting bool) error
	GetLead(ctx context.Context, accountID uuid.UUID, externalID string) (repository.Lead, []repository.Answer, error)
	GetLeadByID(ctx context.Context, accountID, leadID uuid.UUID) (repository.Lead, []repository.Answer, error)
	ListLeads(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]repository.Lead, error)
	ListLeadIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)
	UpdateTotals(ctx context.Context, accountID, leadID uuid.UUID, xAxis, yAxis, total float64, points map[uuid.UUID]*float64) error
	DeleteLead(ctx context.Context, accountID uuid.UUID, externalID string) error
	AppendLog(ctx context.Context, accountID, leadID uuid.UUID, snapshot []byte) error
}

var _ Store = (*repository.Repo)(nil)

// Service implements lead operations.
type Service struct {
	repo Store
	bus  events.Bus
	log  *logger.Logger
}

// New creates the leads service.
func New(repo Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Submit runs the full submission flow. Every defined question must be
// answered; coercion failures reject the whole submission and nothing
// is persisted.
func (s *Service) Submit(ctx context.Context, accountID uuid.UUID, req transport.SubmitLeadRequest) (transport.SubmitLeadResponse, error) {
	catalog, err := s.repo.ScoringCatalog(ctx, accountID)
	if err != nil {
		return transport.SubmitLeadResponse{}, err
	}
	if len(catalog) == 0 {
		return transport.SubmitLeadResponse{}, apperr.Validation("no questions defined")
	}

	answers := make([]*engine.Answer, 0, len(req.Answers))
	for _, in := range req.Answers {
		answers = append(answers, &engine.Answer{FieldName: in.FieldName, Response: in.Response})
	}

	if missing := engine.MissingFields(catalog, answers); len(missing) > 0 {
		return transport.SubmitLeadResponse{}, apperr.Validation(
			fmt.Sprintf("missing answers for fields: %s", strings.Join(missing, ", ")))
	}
	if err := engine.CoerceAnswers(catalog, answers); err != nil {
		var fieldErr *engine.FieldError
		if errors.As(err, &fieldErr) {
			return transport.SubmitLeadResponse{}, apperr.Validation(fieldErr.Error())
		}
		return transport.SubmitLeadResponse{}, err
	}

	result := engine.Score(catalog, answers)
	engine.CollectRecommendations(catalog, answers)

	lead := repository.Lead{
		ID:         uuid.New(),
		AccountID:  accountID,
		ExternalID: req.LeadID,
		XAxis:      result.XAxis,
		YAxis:      result.YAxis,
		TotalScore: result.Total(),
		CreatedAt:  time.Now().UTC(),
	}
	// allow_duplicates drops the previously stored lead with the same
	// external id inside the insert transaction; the default keeps both.
	if err := s.repo.CreateLead(ctx, lead, toRepoAnswers(lead.ID, answers), req.AllowDuplicates); err != nil {
		return transport.SubmitLeadResponse{}, err
	}

	s.publishScored(ctx, lead)
	s.log.Info("lead_scored", "account_id", accountID, "lead_id", req.LeadID,
		"x_axis", result.XAxis, "y_axis", result.YAxis, "total", result.Total())

	return transport.SubmitLeadResponse{
		LeadID:          req.LeadID,
		XAxis:           result.XAxis,
		YAxis:           result.YAxis,
		TotalScore:      result.Total(),
		Recommendations: firedRecommendations(answers),
	}, nil
}

// Get returns a stored lead with answers by external id.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID, externalID string) (transport.Lead, error) {
	lead, answers, err := s.repo.GetLead(ctx, accountID, externalID)
	if err != nil {
		return transport.Lead{}, err
	}
	return leadToTransport(lead, answers), nil
}

// List returns a page of stored leads without answers.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]transport.Lead, error) {
	rows, err := s.repo.ListLeads(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	result := make([]transport.Lead, 0, len(rows))
	for _, lead := range rows {
		result = append(result, leadToTransport(lead, nil))
	}
	return result, nil
}

// Delete removes a lead by external id.
func (s *Service) Delete(ctx context.Context, accountID uuid.UUID, externalID string) error {
	lead, _, err := s.repo.GetLead(ctx, accountID, externalID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLead(ctx, accountID, externalID); err != nil {
		return err
	}

	event := events.LeadDeleted{
		BaseEvent: events.NewBaseEvent(),
		AccountID: accountID,
		LeadID:    lead.ID,
	}
	s.bus.Publish(ctx, event)
	return nil
}

// RecomputeTotals re-scores every stored lead of the account against
// the current scoring configuration. Leads are updated one at a time;
// the operation is idempotent and safe to re-run after a partial
// failure.
func (s *Service) RecomputeTotals(ctx context.Context, accountID uuid.UUID) error {
	catalog, err := s.repo.ScoringCatalog(ctx, accountID)
	if err != nil {
		return err
	}
	ids, err := s.repo.ListLeadIDs(ctx, accountID)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeParallelism)
	for _, id := range ids {
		g.Go(func() error {
			if err := s.recomputeLead(gctx, accountID, id, catalog); err != nil {
				return fmt.Errorf("recompute lead %s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("lead_totals_recomputed", "account_id", accountID, "leads", len(ids))
	return nil
}

func (s *Service) recomputeLead(ctx context.Context, accountID, leadID uuid.UUID, catalog map[string]*engine.Question) error {
	_, stored, err := s.repo.GetLeadByID(ctx, accountID, leadID)
	if err != nil {
		return err
	}

	answers := make([]*engine.Answer, 0, len(stored))
	answerIDs := make([]uuid.UUID, 0, len(stored))
	for _, a := range stored {
		answers = append(answers, &engine.Answer{
			FieldName:   a.FieldName,
			Response:    a.Response,
			ValueNumber: a.ValueNumber,
			Value:       a.Value,
			Values:      a.Values,
			DateValue:   a.DateValue,
		})
		answerIDs = append(answerIDs, a.ID)
	}

	result := engine.Score(catalog, answers)
	points := make(map[uuid.UUID]*float64, len(answers))
	for i, a := range answers {
		points[answerIDs[i]] = a.Points
	}
	return s.repo.UpdateTotals(ctx, accountID, leadID, result.XAxis, result.YAxis, result.Total(), points)
}

// SnapshotLead serializes a scored lead with its answers into the
// append-only lead log.
func (s *Service) SnapshotLead(ctx context.Context, accountID, leadID uuid.UUID) error {
	lead, answers, err := s.repo.GetLeadByID(ctx, accountID, leadID)
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(leadToTransport(lead, answers))
	if err != nil {
		return fmt.Errorf("marshal lead snapshot: %w", err)
	}
	return s.repo.AppendLog(ctx, accountID, leadID, snapshot)
}

func (s *Service) publishScored(ctx context.Context, lead repository.Lead) {
	event := events.LeadScored{
		BaseEvent:  events.NewBaseEvent(),
		AccountID:  lead.AccountID,
		LeadID:     lead.ID,
		XAxis:      lead.XAxis,
		YAxis:      lead.YAxis,
		TotalScore: lead.TotalScore,
	}
	s.bus.Publish(ctx, event)
}

func firedRecommendations(answers []*engine.Answer) map[string]transport.RecommendationPayload {
	fired := make(map[string]transport.RecommendationPayload)
	for _, a := range answers {
		if a.Recommendation == nil {
			continue
		}
		p := payloadToTransport(a.Recommendation)
		if p == (transport.RecommendationPayload{}) {
			continue
		}
		fired[a.FieldName] = p
	}
	return fired
}

func payloadToTransport(p *engine.RecommendationPayload) transport.RecommendationPayload {
	return transport.RecommendationPayload{
		ResponseText:   p.ResponseText,
		AffiliateName:  p.AffiliateName,
		AffiliateImage: p.AffiliateImage,
		AffiliateLink:  p.AffiliateLink,
		RedirectURL:    p.RedirectURL,
	}
}

func toRepoAnswers(leadID uuid.UUID, answers []*engine.Answer) []repository.Answer {
	out := make([]repository.Answer, 0, len(answers))
	for _, a := range answers {
		row := repository.Answer{
			ID:          uuid.New(),
			LeadID:      leadID,
			FieldName:   a.FieldName,
			Response:    a.Response,
			ValueNumber: a.ValueNumber,
			Value:       a.Value,
			Values:      a.Values,
			DateValue:   a.DateValue,
			Points:      a.Points,
		}
		if rec := a.Recommendation; rec != nil {
			row.ResponseText = nilIfEmpty(rec.ResponseText)
			row.AffiliateName = nilIfEmpty(rec.AffiliateName)
			row.AffiliateImage = nilIfEmpty(rec.AffiliateImage)
			row.AffiliateLink = nilIfEmpty(rec.AffiliateLink)
			row.RedirectURL = nilIfEmpty(rec.RedirectURL)
		}
		out = append(out, row)
	}
	return out
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func leadToTransport(lead repository.Lead, answers []repository.Answer) transport.Lead {
	out := transport.Lead{
		ID:         lead.ID,
		LeadID:     lead.ExternalID,
		XAxis:      lead.XAxis,
		YAxis:      lead.YAxis,
		TotalScore: lead.TotalScore,
		CreatedAt:  lead.CreatedAt,
	}
	for _, a := range answers {
		view := transport.AnswerView{
			FieldName:   a.FieldName,
			Response:    a.Response,
			ValueNumber: a.ValueNumber,
			Value:       a.Value,
			Values:      a.Values,
			DateValue:   a.DateValue,
			Points:      a.Points,
		}
		if a.ResponseText != nil || a.AffiliateName != nil || a.AffiliateImage != nil ||
			a.AffiliateLink != nil || a.RedirectURL != nil {
			view.Recommendation = &transport.RecommendationPayload{
				ResponseText:   deref(a.ResponseText),
				AffiliateName:  deref(a.AffiliateName),
				AffiliateImage: deref(a.AffiliateImage),
				AffiliateLink:  deref(a.AffiliateLink),
				RedirectURL:    deref(a.RedirectURL),
			}
		}
		out.Answers = append(out.Answers, view)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

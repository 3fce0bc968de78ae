package service

import (
	"context"
	"testing"

	"leadscoring_backend/internal/engine"
	"leadscoring_backend/internal/events"
	"leadscoring_backend/internal/leads/repository"
	"leadscoring_backend/internal/leads/transport"
	"leadscoring_backend/platform/logger"

	"github.com/google/uuid"
)

type stubStore struct {
	catalog      map[string]*engine.Question
	created      []repository.Lead
	replaceFlags []bool
}

var _ Store = (*stubStore)(nil)

func (s *stubStore) ScoringCatalog(_ context.Context, _ uuid.UUID) (map[string]*engine.Question, error) {
	return s.catalog, nil
}

func (s *stubStore) CreateLead(_ context.Context, lead repository.Lead, _ []repository.Answer, replaceExisting bool) error {
	s.created = append(s.created, lead)
	s.replaceFlags = append(s.replaceFlags, replaceExisting)
	return nil
}

func (s *stubStore) GetLead(_ context.Context, _ uuid.UUID, _ string) (repository.Lead, []repository.Answer, error) {
	return repository.Lead{}, nil, nil
}

func (s *stubStore) GetLeadByID(_ context.Context, _, _ uuid.UUID) (repository.Lead, []repository.Answer, error) {
	return repository.Lead{}, nil, nil
}

func (s *stubStore) ListLeads(_ context.Context, _ uuid.UUID, _, _ int) ([]repository.Lead, error) {
	return nil, nil
}

func (s *stubStore) ListLeadIDs(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (s *stubStore) UpdateTotals(_ context.Context, _, _ uuid.UUID, _, _, _ float64, _ map[uuid.UUID]*float64) error {
	return nil
}

func (s *stubStore) DeleteLead(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (s *stubStore) AppendLog(_ context.Context, _, _ uuid.UUID, _ []byte) error { return nil }

func fptr(f float64) *float64 { return &f }

func testCatalog() map[string]*engine.Question {
	return map[string]*engine.Question{
		"budget": {
			FieldName: "budget",
			Type:      engine.TypeInteger,
			Scoring: &engine.ScoringModel{
				Weight: 1,
				XAxis:  true,
				Ranges: []engine.ValueRange{{Start: fptr(0), Points: 5}},
			},
		},
	}
}

func newTestService(store *stubStore) *Service {
	log := logger.New("test")
	return New(store, events.NewInMemoryBus(log), log)
}

func submitRequest(allowDuplicates bool) transport.SubmitLeadRequest {
	return transport.SubmitLeadRequest{
		LeadID:          "lead-1",
		AllowDuplicates: allowDuplicates,
		Answers:         []transport.AnswerInput{{FieldName: "budget", Response: "42"}},
	}
}

func TestSubmitKeepsPriorLeadByDefault(t *testing.T) {
	store := &stubStore{catalog: testCatalog()}
	svc := newTestService(store)

	resp, err := svc.Submit(context.Background(), uuid.New(), submitRequest(false))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(store.replaceFlags) != 1 {
		t.Fatalf("expected one CreateLead call, got %d", len(store.replaceFlags))
	}
	if store.replaceFlags[0] {
		t.Fatalf("default submission must not replace the prior lead")
	}
	if resp.XAxis != 5 {
		t.Fatalf("x_axis = %v, want 5", resp.XAxis)
	}
}

func TestSubmitAllowDuplicatesReplacesPriorLead(t *testing.T) {
	store := &stubStore{catalog: testCatalog()}
	svc := newTestService(store)

	if _, err := svc.Submit(context.Background(), uuid.New(), submitRequest(true)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(store.replaceFlags) != 1 {
		t.Fatalf("expected one CreateLead call, got %d", len(store.replaceFlags))
	}
	if !store.replaceFlags[0] {
		t.Fatalf("allow_duplicates must replace the prior lead with the same external id")
	}
}

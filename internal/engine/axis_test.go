package engine

import (
	"testing"
)

func choiceQuestion() *Question {
	return &Question{
		FieldName: "q1u",
		Type:      TypeChoices,
		Choices: []Choice{
			{Text: "Below 1", Slug: "below-1", Value: 1},
			{Text: "1 - 2", Slug: "1-2", Value: 2},
			{Text: "2", Slug: "2", Value: 3},
		},
		Scoring: &ScoringModel{
			Weight: 1.1,
			XAxis:  true,
			Ranges: []ValueRange{
				{End: fptr(1), Points: 1},
				{Start: fptr(1), End: fptr(2), Points: 2},
				{Start: fptr(2), Points: 3},
			},
		},
	}
}

func TestScoreEndToEndChoiceSubmission(t *testing.T) {
	questions := map[string]*Question{"q1u": choiceQuestion()}
	answers := []*Answer{{FieldName: "q1u", Response: "2"}}

	if err := CoerceAnswers(questions, answers); err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if answers[0].Value == nil || *answers[0].Value != 3 {
		t.Fatalf("expected choice value 3, got %v", answers[0].Value)
	}

	res := Score(questions, answers)
	if res.XAxis != 3.3 {
		t.Fatalf("expected x axis 3.3, got %v", res.XAxis)
	}
	if res.YAxis != 0 {
		t.Fatalf("expected y axis 0, got %v", res.YAxis)
	}
	if res.Total() != 3.3 {
		t.Fatalf("expected total 3.3, got %v", res.Total())
	}
	if answers[0].Points == nil || *answers[0].Points != 3.3 {
		t.Fatalf("expected answer points 3.3, got %v", answers[0].Points)
	}
}

func TestScoreSplitsAxesPerModelFlags(t *testing.T) {
	questions := map[string]*Question{
		"x1": {FieldName: "x1", Type: TypeInteger, Scoring: &ScoringModel{
			Weight: 1, XAxis: true,
			Ranges: []ValueRange{{Points: 2}},
		}},
		"y1": {FieldName: "y1", Type: TypeInteger, Scoring: &ScoringModel{
			Weight: 1, YAxis: true,
			Ranges: []ValueRange{{Points: 3}},
		}},
		"both": {FieldName: "both", Type: TypeInteger, Scoring: &ScoringModel{
			Weight: 1, XAxis: true, YAxis: true,
			Ranges: []ValueRange{{Points: 5}},
		}},
	}
	answers := []*Answer{
		{FieldName: "x1", Value: fptr(1)},
		{FieldName: "y1", Value: fptr(1)},
		{FieldName: "both", Value: fptr(1)},
	}

	res := Score(questions, answers)
	if res.XAxis != 7 {
		t.Fatalf("expected x axis 7, got %v", res.XAxis)
	}
	if res.YAxis != 8 {
		t.Fatalf("expected y axis 8, got %v", res.YAxis)
	}
	if res.Total() != 15 {
		t.Fatalf("expected total 15, got %v", res.Total())
	}
}

func TestScoreComputesIndexedFieldOnce(t *testing.T) {
	questions := map[string]*Question{
		"visits": {FieldName: "visits", Type: TypeInteger, MultipleValues: true, Scoring: &ScoringModel{
			Weight:  1,
			XAxis:   true,
			Formula: "sum({visits})",
			Ranges:  []ValueRange{{Start: fptr(5), Points: 4}},
		}},
	}
	answers := []*Answer{
		{FieldName: "visits", ValueNumber: iptr(0), Value: fptr(2)},
		{FieldName: "visits", ValueNumber: iptr(1), Value: fptr(3)},
	}

	res := Score(questions, answers)
	if res.XAxis != 4 {
		t.Fatalf("expected the field to contribute once, got x axis %v", res.XAxis)
	}
	for i, a := range answers {
		if a.Points == nil || *a.Points != 4 {
			t.Fatalf("expected answer %d to carry the shared points, got %v", i, a.Points)
		}
	}
}

func TestScoreUnscoredQuestionsContributeZero(t *testing.T) {
	questions := map[string]*Question{
		"plain": {FieldName: "plain", Type: TypeInteger},
		"zero": {FieldName: "zero", Type: TypeInteger, Scoring: &ScoringModel{
			Weight:  1,
			XAxis:   true,
			Formula: "{zero} / 0",
			Ranges:  []ValueRange{{Points: 9}},
		}},
	}
	answers := []*Answer{
		{FieldName: "plain", Value: fptr(5)},
		{FieldName: "zero", Value: fptr(5)},
	}

	res := Score(questions, answers)
	if res.XAxis != 0 || res.YAxis != 0 {
		t.Fatalf("expected no contribution, got %v/%v", res.XAxis, res.YAxis)
	}
	if answers[0].Points != nil || answers[1].Points != nil {
		t.Fatal("expected unscored answers to carry no points")
	}
}

func TestBuildEnvPromotesIndexedAnswersInSubmissionOrder(t *testing.T) {
	answers := []*Answer{
		{FieldName: "x", ValueNumber: iptr(0), Value: fptr(10)},
		// Index 1 skipped: the list packs without a gap.
		{FieldName: "x", ValueNumber: iptr(2), Value: fptr(30)},
		{FieldName: "single", Value: fptr(7)},
	}

	env := BuildEnv(answers)
	x := env["x"]
	if x.Type != ValList || len(x.List) != 2 {
		t.Fatalf("expected a 2-element list, got %+v", x)
	}
	if x.List[0].Num != 10 || x.List[1].Num != 30 {
		t.Fatalf("expected [10 30], got %+v", x.List)
	}
	if env["single"].Num != 7 {
		t.Fatalf("expected scalar binding, got %+v", env["single"])
	}
}

func TestCollectRecommendationsFiresOnMatchingRule(t *testing.T) {
	questions := map[string]*Question{
		"age": {FieldName: "age", Type: TypeInteger, Recommendation: &Recommendation{
			Rule:         "If {age} >= 25",
			ResponseText: "Talk to an advisor",
			RedirectURL:  "https://example.com/advisor",
		}},
	}

	matched := []*Answer{{FieldName: "age", Value: fptr(30)}}
	CollectRecommendations(questions, matched)
	if matched[0].Recommendation == nil {
		t.Fatal("expected the recommendation to fire")
	}
	if matched[0].Recommendation.ResponseText != "Talk to an advisor" {
		t.Fatalf("unexpected payload %+v", matched[0].Recommendation)
	}

	unmatched := []*Answer{{FieldName: "age", Value: fptr(20)}}
	CollectRecommendations(questions, unmatched)
	if unmatched[0].Recommendation != nil {
		t.Fatal("expected no recommendation below the threshold")
	}
}

func TestCollectRecommendationsExcludesListAnswersFromRules(t *testing.T) {
	questions := map[string]*Question{
		"tags": {FieldName: "tags", Type: TypeMultipleChoices, Recommendation: &Recommendation{
			Rule:         "If sum({tags}) > 0",
			ResponseText: "never",
		}},
	}
	answers := []*Answer{{FieldName: "tags", Values: []float64{1, 2}}}

	CollectRecommendations(questions, answers)
	if answers[0].Recommendation != nil {
		t.Fatal("list answers must not be addressable inside rules")
	}
}

func iptr(n int) *int { return &n }

package engine

import (
	"testing"
	"time"
)

func fptr(f float64) *float64     { return &f }
func tptr(t time.Time) *time.Time { return &t }

func integerQuestion(name string, m *ScoringModel) *Question {
	return &Question{FieldName: name, Type: TypeInteger, Scoring: m}
}

func TestCalculatePointsWeightedRanges(t *testing.T) {
	model := &ScoringModel{
		Weight: 1.1,
		XAxis:  true,
		Ranges: []ValueRange{
			{End: fptr(0), Points: 0},
			{Start: fptr(0), End: fptr(3), Points: 1},
			{Start: fptr(3), End: fptr(5), Points: 2},
			{Start: fptr(5), Points: 3},
		},
	}
	q := integerQuestion("v", model)

	cases := []struct {
		value float64
		want  float64
	}{
		{-10, 0},
		{0, 1.1},
		{2.99, 1.1},
		{3, 2.2},
		{4.5, 2.2},
		{5, 3.3},
		{1000, 3.3},
	}
	for _, tc := range cases {
		got, err := model.CalculatePoints(q, Env{"v": Number(tc.value)})
		if err != nil {
			t.Fatalf("value %v: %v", tc.value, err)
		}
		if got == nil {
			t.Fatalf("value %v: expected points, got none", tc.value)
		}
		if *got != tc.want {
			t.Fatalf("value %v: expected %v points, got %v", tc.value, tc.want, *got)
		}
	}
}

func TestCalculatePointsBoundaryBelongsToStartingRange(t *testing.T) {
	model := &ScoringModel{
		Weight: 1,
		Ranges: []ValueRange{
			{End: fptr(2), Points: 1},
			{Start: fptr(2), Points: 5},
		},
	}
	q := integerQuestion("v", model)

	got, err := model.CalculatePoints(q, Env{"v": Number(2)})
	if err != nil || got == nil {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
	if *got != 5 {
		t.Fatalf("boundary value must match the range starting there, got %v", *got)
	}
}

func TestCalculatePointsFirstDeclaredRangeWins(t *testing.T) {
	model := &ScoringModel{
		Weight: 1,
		Ranges: []ValueRange{
			{Start: fptr(0), End: fptr(10), Points: 1},
			{Start: fptr(0), End: fptr(10), Points: 9},
		},
	}
	q := integerQuestion("v", model)

	got, err := model.CalculatePoints(q, Env{"v": Number(5)})
	if err != nil || got == nil {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
	if *got != 1 {
		t.Fatalf("expected first declared range to win, got %v", *got)
	}
}

func TestCalculatePointsNoMatchIsNotScored(t *testing.T) {
	model := &ScoringModel{
		Weight: 1,
		Ranges: []ValueRange{{Start: fptr(0), End: fptr(1), Points: 1}},
	}
	q := integerQuestion("v", model)

	got, err := model.CalculatePoints(q, Env{"v": Number(50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no points outside all ranges, got %v", *got)
	}
}

func TestCalculatePointsFormulaDivisionByZero(t *testing.T) {
	model := &ScoringModel{
		Weight:  1,
		Formula: "{a} / {b}",
		Ranges:  []ValueRange{{Points: 1}},
	}
	q := integerQuestion("a", model)

	got, err := model.CalculatePoints(q, Env{"a": Number(1), "b": Number(0)})
	if err != nil {
		t.Fatalf("division by zero must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no points on division by zero, got %v", *got)
	}
}

func TestCalculatePointsFormulaOverMultipleFields(t *testing.T) {
	model := &ScoringModel{
		Weight:  1.1,
		Formula: "{q1u} / {q3u}",
		Ranges: []ValueRange{
			{End: fptr(1), Points: 1},
			{Start: fptr(1), End: fptr(2), Points: 2},
			{Start: fptr(2), Points: 3},
		},
	}
	q := integerQuestion("q1u", model)

	got, err := model.CalculatePoints(q, Env{"q1u": Number(3), "q3u": Number(2)})
	if err != nil || got == nil {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
	if *got != 2.2 {
		t.Fatalf("expected 2.2, got %v", *got)
	}
}

func TestCalculatePointsMultipleChoicesSumsElements(t *testing.T) {
	model := &ScoringModel{
		Weight: 1,
		Ranges: []ValueRange{
			{End: fptr(2), Points: 1},
			{Start: fptr(2), Points: 2},
		},
	}
	q := &Question{FieldName: "tags", Type: TypeMultipleChoices, Scoring: model}

	got, err := model.CalculatePoints(q, Env{"tags": NumberList([]float64{1, 2, 3})})
	if err != nil || got == nil {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
	if *got != 5 {
		t.Fatalf("expected 1+2+2=5 points, got %v", *got)
	}
}

func TestCalculatePointsMultipleChoicesDropsUnmatchedElements(t *testing.T) {
	model := &ScoringModel{
		Weight: 1.01,
		Ranges: []ValueRange{
			{Start: fptr(0), End: fptr(2), Points: 1},
			{Start: fptr(3), Points: 2},
		},
	}
	q := &Question{FieldName: "tags", Type: TypeMultipleChoices, Scoring: model}

	// -10 matches nothing and is dropped from the sum.
	got, err := model.CalculatePoints(q, Env{"tags": NumberList([]float64{1, -10, 3})})
	if err != nil || got == nil {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
	if *got != 3.03 {
		t.Fatalf("expected 1.01+2.02=3.03 points, got %v", *got)
	}

	got, err = model.CalculatePoints(q, Env{"tags": NumberList([]float64{-10})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no points when every element is unmatched, got %v", *got)
	}
}

func TestCalculatePointsDateRanges(t *testing.T) {
	model := &ScoringModel{
		Weight: 2,
		DateRanges: []DatesRange{
			{End: tptr(date(2024, 1, 1)), Points: 1},
			{Start: tptr(date(2024, 1, 1)), Points: 3},
		},
	}
	q := &Question{FieldName: "moved", Type: TypeDate, Scoring: model}

	got, err := model.CalculatePoints(q, Env{"moved": DateValue(date(2024, 6, 1))})
	if err != nil || got == nil {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
	if *got != 6 {
		t.Fatalf("expected 6 points, got %v", *got)
	}

	got, err = model.CalculatePoints(q, Env{"moved": DateValue(date(2023, 6, 1))})
	if err != nil || got == nil {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
	if *got != 2 {
		t.Fatalf("expected 2 points, got %v", *got)
	}
}

func TestCalculatePointsMissingAnswerIsNotScored(t *testing.T) {
	model := &ScoringModel{Weight: 1, Ranges: []ValueRange{{Points: 1}}}
	q := integerQuestion("v", model)

	got, err := model.CalculatePoints(q, Env{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no points without an answer, got %v", *got)
	}
}

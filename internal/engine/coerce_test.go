package engine

import (
	"testing"
	"time"
)

func coercionQuestions() map[string]*Question {
	minV, maxV := 0.0, 10.0
	return map[string]*Question{
		"moved": {FieldName: "moved", Type: TypeDate},
		"rent":  {FieldName: "rent", Type: TypeInteger},
		"level": {FieldName: "level", Type: TypeSlider, MinValue: &minV, MaxValue: &maxV},
		"notes": {FieldName: "notes", Type: TypeOpen},
		"plan": {FieldName: "plan", Type: TypeChoices, Choices: []Choice{
			{Text: "Basic plan", Slug: "basic", Value: 1},
			{Text: "Premium plan", Slug: "premium", Value: 5},
		}},
		"tags": {FieldName: "tags", Type: TypeMultipleChoices, Choices: []Choice{
			{Text: "Owner", Slug: "owner", Value: 2},
			{Text: "Renter", Slug: "renter", Value: 3},
		}},
		"visits": {FieldName: "visits", Type: TypeInteger, MultipleValues: true},
	}
}

func TestCoerceAnswersPerType(t *testing.T) {
	qs := coercionQuestions()
	answers := []*Answer{
		{FieldName: "moved", Response: "2024-03-01"},
		{FieldName: "rent", Response: "950"},
		{FieldName: "level", Response: "7.5"},
		{FieldName: "notes", Response: "some text"},
		{FieldName: "plan", Response: "premium"},
		{FieldName: "tags", Response: "owner,renter"},
	}

	if err := CoerceAnswers(qs, answers); err != nil {
		t.Fatalf("coerce: %v", err)
	}

	if answers[0].DateValue == nil || !answers[0].DateValue.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date not parsed: %+v", answers[0])
	}
	if answers[1].Value == nil || *answers[1].Value != 950 {
		t.Fatalf("integer not parsed: %+v", answers[1])
	}
	if answers[2].Value == nil || *answers[2].Value != 7.5 {
		t.Fatalf("slider not parsed: %+v", answers[2])
	}
	if answers[3].Value == nil || *answers[3].Value != 1 {
		t.Fatalf("open answer should signal presence: %+v", answers[3])
	}
	if answers[4].Value == nil || *answers[4].Value != 5 || answers[4].Response != "Premium plan" {
		t.Fatalf("choice not resolved: %+v", answers[4])
	}
	if len(answers[5].Values) != 2 || answers[5].Values[0] != 2 || answers[5].Values[1] != 3 {
		t.Fatalf("multi-choice values not resolved: %+v", answers[5])
	}
	if answers[5].Response != "Owner, Renter" {
		t.Fatalf("multi-choice display not joined: %q", answers[5].Response)
	}
}

func TestCoerceOpenAnswerEmptyIsZero(t *testing.T) {
	qs := coercionQuestions()
	answers := []*Answer{{FieldName: "notes", Response: "   "}}
	if err := CoerceAnswers(qs, answers); err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if answers[0].Value == nil || *answers[0].Value != 0 {
		t.Fatalf("expected empty open answer to coerce to 0, got %+v", answers[0])
	}
}

func TestCoerceIndexedAnswers(t *testing.T) {
	qs := coercionQuestions()
	answers := []*Answer{
		{FieldName: "visits[0]", Response: "3"},
		{FieldName: "visits[1]", Response: "5"},
	}
	if err := CoerceAnswers(qs, answers); err != nil {
		t.Fatalf("coerce: %v", err)
	}
	for i, a := range answers {
		if a.FieldName != "visits" {
			t.Fatalf("expected suffix stripped, got %q", a.FieldName)
		}
		if a.ValueNumber == nil || *a.ValueNumber != i {
			t.Fatalf("expected index %d, got %v", i, a.ValueNumber)
		}
	}
}

func TestCoerceRejectsBadInput(t *testing.T) {
	qs := coercionQuestions()

	cases := []struct {
		field    string
		response string
	}{
		{"unknown_field", "1"},     // no such question
		{"rent[0]", "1"},           // indexed answer for a single-value question
		{"moved", "01-03-2024"},    // wrong date format
		{"rent", "abc"},            // not an integer
		{"level", "11"},            // above slider max
		{"level", "-0.5"},          // below slider min
		{"plan", "nonexistent"},    // unknown slug
		{"tags", "owner,whatever"}, // unknown slug in list
	}
	for _, tc := range cases {
		answers := []*Answer{{FieldName: tc.field, Response: tc.response}}
		err := CoerceAnswers(qs, answers)
		if err == nil {
			t.Fatalf("expected %s=%q to be rejected", tc.field, tc.response)
		}
		if _, ok := err.(*FieldError); !ok {
			t.Fatalf("expected *FieldError, got %T", err)
		}
	}
}

func TestCoerceSliderBoundsAreInclusive(t *testing.T) {
	qs := coercionQuestions()
	for _, response := range []string{"0", "10"} {
		answers := []*Answer{{FieldName: "level", Response: response}}
		if err := CoerceAnswers(qs, answers); err != nil {
			t.Fatalf("expected boundary %s to be accepted: %v", response, err)
		}
	}
}

func TestSplitFieldName(t *testing.T) {
	name, idx, err := SplitFieldName("visits[3]")
	if err != nil || name != "visits" || idx == nil || *idx != 3 {
		t.Fatalf("unexpected split: %q %v %v", name, idx, err)
	}

	name, idx, err = SplitFieldName("plain")
	if err != nil || name != "plain" || idx != nil {
		t.Fatalf("unexpected split: %q %v %v", name, idx, err)
	}

	if _, _, err := SplitFieldName("broken[2"); err == nil {
		t.Fatal("expected unterminated index to fail")
	}
	if _, _, err := SplitFieldName("broken[x]"); err == nil {
		t.Fatal("expected non-numeric index to fail")
	}
}

func TestMissingFields(t *testing.T) {
	qs := coercionQuestions()
	answers := []*Answer{
		{FieldName: "moved", Response: "2024-03-01"},
		{FieldName: "visits[0]", Response: "1"},
		{FieldName: "visits[1]", Response: "2"},
	}

	missing := MissingFields(qs, answers)
	want := []string{"level", "notes", "plan", "rent", "tags"}
	if len(missing) != len(want) {
		t.Fatalf("expected %v, got %v", want, missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, missing)
		}
	}

	full := append(answers,
		&Answer{FieldName: "rent", Response: "1"},
		&Answer{FieldName: "level", Response: "1"},
		&Answer{FieldName: "notes", Response: ""},
		&Answer{FieldName: "plan", Response: "basic"},
		&Answer{FieldName: "tags", Response: "owner"},
	)
	if missing := MissingFields(qs, full); len(missing) != 0 {
		t.Fatalf("expected no missing fields, got %v", missing)
	}
}

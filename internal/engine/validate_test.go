package engine

import (
	"strings"
	"testing"
)

func testQuestions() map[string]*Question {
	minV, maxV := 0.0, 10.0
	return map[string]*Question{
		"Rent":   {FieldName: "Rent", Type: TypeInteger},
		"Income": {FieldName: "Income", Type: TypeInteger},
		"Moved":  {FieldName: "Moved", Type: TypeDate},
		"Level":  {FieldName: "Level", Type: TypeSlider, MinValue: &minV, MaxValue: &maxV},
		"Visits": {FieldName: "Visits", Type: TypeInteger, MultipleValues: true},
		"Tags":   {FieldName: "Tags", Type: TypeMultipleChoices, Choices: []Choice{{Text: "A", Slug: "a", Value: 1}}},
	}
}

func TestValidateAcceptsWellFormedExpressions(t *testing.T) {
	qs := testQuestions()

	rules := []string{
		"If {Rent} / {Income} > 0.4",
		"If {Rent} + {Income} - {Rent} * {Income} / {Rent}",
		"If 1 / 0",
		"If {Rent} == {Income} and not {Level} > 5",
		"If ({Rent} > 10 or {Income} < 20) and {Moved} >= 2020-01-01",
		"If sum({Visits}) > 10",
		"If today() > {Moved}",
		"If days({Moved} - 2020-01-01) > 30",
	}
	for _, rule := range rules {
		if err := Validate(rule, KindRule, qs); err != nil {
			t.Fatalf("expected %q to validate, got %v", rule, err)
		}
	}

	formulas := []string{
		"{Rent} / {Income} * 100",
		"sqrt({Rent}) + {Level} ** 2",
		"mean({Visits}) - median({Visits})",
		"{Visits[0]} + {Visits[-1]}",
		"count({Visits}) % 2",
		"{Rent} // 7",
	}
	for _, formula := range formulas {
		if err := Validate(formula, KindFormula, qs); err != nil {
			t.Fatalf("expected %q to validate, got %v", formula, err)
		}
	}
}

func TestValidateRejectsGrammarViolations(t *testing.T) {
	qs := testQuestions()

	cases := []struct {
		src  string
		kind Kind
		want string
	}{
		{"{Rent} > 1", KindRule, "Rule is invalid"},
		{"If {Rent} ; {Income}", KindRule, "Rule is invalid"},
		{"If {Invalid Field Name} > 1", KindRule, "Rule is invalid"},
		{"If {---}", KindRule, "Rule is invalid"},
		{"If import os", KindRule, "Rule is invalid"},
		{"{Rent} > {Income}", KindFormula, "Formula is invalid"},
		{"{Rent} and {Income}", KindFormula, "Formula is invalid"},
		{"{Rent} = 1", KindFormula, "Formula is invalid"},
	}
	for _, tc := range cases {
		err := Validate(tc.src, tc.kind, qs)
		if err == nil {
			t.Fatalf("expected %q to be rejected", tc.src)
		}
		if err.Error() != tc.want {
			t.Fatalf("for %q expected error %q, got %q", tc.src, tc.want, err.Error())
		}
	}
}

func TestValidateMarksSyntaxErrorPosition(t *testing.T) {
	qs := testQuestions()

	cases := []struct {
		src  string
		kind Kind
		want string
	}{
		{"If {Rent} +/ {Income}", KindRule, `Rule syntax invalid "If {Rent} +>>>here>>>/ {Income}"`},
		{"If {Rent} not > 99", KindRule, `Rule syntax invalid "If {Rent} >>>here>>>not > 99"`},
		{"100 *", KindFormula, `Formula syntax invalid "100 *>>>here>>>"`},
		{"({Rent} + 1", KindFormula, `Formula syntax invalid "({Rent} + 1>>>here>>>"`},
		{"99.99.9", KindFormula, `Formula syntax invalid "99.99>>>here>>>.9"`},
		{"If {Rent} > 99.99.9", KindRule, `Rule syntax invalid "If {Rent} > 99.99>>>here>>>.9"`},
	}
	for _, tc := range cases {
		err := Validate(tc.src, tc.kind, qs)
		if err == nil {
			t.Fatalf("expected %q to be rejected", tc.src)
		}
		if err.Error() != tc.want {
			t.Fatalf("for %q expected\n  %s\ngot\n  %s", tc.src, tc.want, err.Error())
		}
	}
}

func TestValidateHandlesExtremeSliderBounds(t *testing.T) {
	lo, hi := 0.0, 1e19
	qs := map[string]*Question{
		"Wealth": {FieldName: "Wealth", Type: TypeSlider, MinValue: &lo, MaxValue: &hi},
	}
	for i := 0; i < 20; i++ {
		if err := Validate("{Wealth} / 2", KindFormula, qs); err != nil {
			t.Fatalf("expected formula over a wide slider to validate, got %v", err)
		}
	}
}

func TestValidateToleratesUnknownFieldsInDryRun(t *testing.T) {
	// Unknown names are the cross-reference check's concern, not the
	// syntax validator's.
	if err := Validate("{never_defined} * 2", KindFormula, testQuestions()); err != nil {
		t.Fatalf("expected unknown field to pass syntax validation, got %v", err)
	}
}

func TestCheckFieldNamesBatchesOffenders(t *testing.T) {
	usable := map[string]bool{"a": true, "b": true, "c": true}

	if err := CheckFieldNames("{a} + {b}", KindFormula, usable); err != nil {
		t.Fatalf("expected valid names to pass, got %v", err)
	}

	err := CheckFieldNames("If {not_a_real_field} > {also_bad} + {a}", KindRule, usable)
	if err == nil {
		t.Fatal("expected unknown field names to be rejected")
	}
	want := "Field name \"also_bad\" used in Rule is not valid.\n" +
		"Field name \"not_a_real_field\" used in Rule is not valid."
	if err.Error() != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, err.Error())
	}
}

func TestValidFieldName(t *testing.T) {
	valid := []string{"000", "Field4", "monthly_rent", "a"}
	for _, name := range valid {
		if !ValidFieldName(name) {
			t.Fatalf("expected %q to be a valid field name", name)
		}
	}
	invalid := []string{"", "---", "Invalid Field Name", "naïve", "a-b"}
	for _, name := range invalid {
		if ValidFieldName(name) {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestValidatedExpressionsSurviveMockEvaluation(t *testing.T) {
	// Grammar round-trip: anything the validator accepts must evaluate
	// against well-typed data without a syntax error.
	qs := testQuestions()
	env := Env{
		"Rent":   Number(900),
		"Income": Number(2800),
		"Moved":  DateValue(Today()),
		"Level":  Number(5),
		"Visits": NumberList([]float64{1, 2, 3, 4}),
	}

	exprs := []struct {
		src  string
		kind Kind
	}{
		{"If {Rent} / {Income} > 0.4", KindRule},
		{"sqrt({Level}) * max({Visits})", KindFormula},
		{"days(today() - {Moved})", KindFormula},
	}
	for _, tc := range exprs {
		if err := Validate(tc.src, tc.kind, qs); err != nil {
			t.Fatalf("validate %q: %v", tc.src, err)
		}
		if tc.kind == KindRule {
			if _, err := EvalRule(tc.src, env); err != nil {
				t.Fatalf("eval %q: %v", tc.src, err)
			}
		} else if _, err := EvalFormula(tc.src, env); err != nil {
			t.Fatalf("eval %q: %v", tc.src, err)
		}
	}
}

func TestValidateReportsDryRunFailures(t *testing.T) {
	err := Validate("sqrt(0 - {Rent})", KindFormula, testQuestions())
	if err == nil {
		t.Fatal("expected dry run to reject sqrt of a negative value")
	}
	if !strings.HasPrefix(err.Error(), "Formula is invalid") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

package engine

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEvalFormulaVectors(t *testing.T) {
	env := Env{
		"fn0": Number(9),
		"fn1": Number(8),
	}

	cases := []struct {
		src  string
		want float64
	}{
		{"{fn0} / {fn1} * 100", 112.5},
		{"{fn0} + {fn1}", 17},
		{"{fn0} - {fn1} * 2", -7},
		{"({fn0} - {fn1}) * 2", 2},
		{"{fn0} ** 2", 81},
		{"2 ** 3 ** 2", 512},
		{"-2 ** 2", -4},
		{"{fn0} // 2", 4},
		{"{fn0} % 2", 1},
		{"(0 - 7) % 3", 2},
		{"sqrt({fn0})", 3},
	}
	for _, tc := range cases {
		got, err := EvalFormula(tc.src, env)
		if err != nil {
			t.Fatalf("eval %q: %v", tc.src, err)
		}
		if got == nil {
			t.Fatalf("eval %q: expected a value, got none", tc.src)
		}
		if got.Type != ValNumber || got.Num != tc.want {
			t.Fatalf("eval %q: expected %v, got %v", tc.src, tc.want, got.Num)
		}
	}
}

func TestEvalFormulaDivisionByZeroYieldsNoValue(t *testing.T) {
	env := Env{"fn0": Number(99), "fn1": Number(0)}

	for _, src := range []string{"{fn0} / {fn1} * 100", "{fn0} // {fn1}", "{fn0} % {fn1}"} {
		got, err := EvalFormula(src, env)
		if err != nil {
			t.Fatalf("eval %q: %v", src, err)
		}
		if got != nil {
			t.Fatalf("eval %q: expected no value on division by zero, got %v", src, got)
		}
	}
}

func TestEvalRuleVectors(t *testing.T) {
	env := Env{
		"Rent":   Number(900),
		"Income": Number(2000),
		"age":    Number(30),
	}

	cases := []struct {
		src  string
		want bool
	}{
		{"If {Rent} / {Income} > 0.4", true},
		{"If {Rent} / {Income} > 0.5", false},
		{"If {age} >= 25", true},
		{"If {age} == 30 and {Rent} < 1000", true},
		{"If {age} < 25 or {Rent} > 800", true},
		{"If not {age} >= 25", false},
		{"If {age} != 30", false},
		{"If 1 / 0", false},
		{"If 5", true},
		{"If 0", false},
		{"If {Rent} + {Income}", true},
	}
	for _, tc := range cases {
		got, err := EvalRule(tc.src, env)
		if err != nil {
			t.Fatalf("eval %q: %v", tc.src, err)
		}
		if got != tc.want {
			t.Fatalf("eval %q: expected %v, got %v", tc.src, tc.want, got)
		}
	}
}

func TestEvalNumericAggregates(t *testing.T) {
	env := Env{"x": NumberList([]float64{1, 2, 3, 4})}

	cases := []struct {
		src  string
		want float64
	}{
		{"sum({x})", 10},
		{"mean({x})", 2.5},
		{"min({x})", 1},
		{"max({x})", 4},
		{"count({x})", 4},
		// Range midpoint, not a statistical median.
		{"median({x})", 1.5},
	}
	for _, tc := range cases {
		got, err := EvalFormula(tc.src, env)
		if err != nil {
			t.Fatalf("eval %q: %v", tc.src, err)
		}
		if got == nil || got.Num != tc.want {
			t.Fatalf("eval %q: expected %v, got %v", tc.src, tc.want, got)
		}
	}
}

func TestEvalAggregateOverScalarBehavesAsSingletonList(t *testing.T) {
	env := Env{"x": Number(7)}

	cases := []struct {
		src  string
		want float64
	}{
		{"sum({x})", 7},
		{"mean({x})", 7},
		{"count({x})", 1},
		{"median({x})", 0},
	}
	for _, tc := range cases {
		got, err := EvalFormula(tc.src, env)
		if err != nil {
			t.Fatalf("eval %q: %v", tc.src, err)
		}
		if got == nil || got.Num != tc.want {
			t.Fatalf("eval %q: expected %v, got %v", tc.src, tc.want, got)
		}
	}
}

func TestEvalDateAggregatesUseConsecutiveGaps(t *testing.T) {
	env := Env{"visits": DateList([]time.Time{
		date(2024, 1, 1),
		date(2024, 1, 3),
		date(2024, 1, 10),
	})}

	cases := []struct {
		src  string
		want float64
	}{
		{"sum({visits})", 9},   // span first to last
		{"mean({visits})", 3},  // span / list length
		{"min({visits})", 2},   // smallest gap
		{"max({visits})", 7},   // largest gap
		{"median({visits})", 2.5},
		{"count({visits})", 3},
	}
	for _, tc := range cases {
		got, err := EvalFormula(tc.src, env)
		if err != nil {
			t.Fatalf("eval %q: %v", tc.src, err)
		}
		if got == nil || got.Num != tc.want {
			t.Fatalf("eval %q: expected %v, got %v", tc.src, tc.want, got)
		}
	}
}

func TestEvalDateAggregateWithSingleEntryIsZero(t *testing.T) {
	env := Env{"visits": DateList([]time.Time{date(2024, 1, 1)})}

	for _, src := range []string{"sum({visits})", "min({visits})", "median({visits})"} {
		got, err := EvalFormula(src, env)
		if err != nil {
			t.Fatalf("eval %q: %v", src, err)
		}
		if got == nil || got.Num != 0 {
			t.Fatalf("eval %q: expected 0, got %v", src, got)
		}
	}
}

func TestEvalDateArithmeticAndComparison(t *testing.T) {
	env := Env{
		"moved": DateValue(date(2024, 1, 11)),
	}

	got, err := EvalFormula("{moved} - 2024-01-01", env)
	if err != nil {
		t.Fatalf("date difference: %v", err)
	}
	if got == nil || got.Num != 10 {
		t.Fatalf("expected 10 days, got %v", got)
	}

	got, err = EvalFormula("days({moved} - 2024-01-01)", env)
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if got == nil || got.Num != 10 {
		t.Fatalf("expected days() to pass through the day count, got %v", got)
	}

	ok, err := EvalRule("If {moved} > 2024-01-01", env)
	if err != nil || !ok {
		t.Fatalf("expected date comparison to hold, got %v err %v", ok, err)
	}

	ok, err = EvalRule("If {moved} == 2024-01-11", env)
	if err != nil || !ok {
		t.Fatalf("expected date equality to hold, got %v err %v", ok, err)
	}

	ok, err = EvalRule("If today() >= {moved}", env)
	if err != nil || !ok {
		t.Fatalf("expected today to be on or after a past date, got %v err %v", ok, err)
	}
}

func TestEvalIndexedFieldReferences(t *testing.T) {
	env := Env{"x": NumberList([]float64{5, 7, 9})}

	cases := []struct {
		src  string
		want float64
	}{
		{"{x[0]}", 5},
		{"{x[1]}", 7},
		{"{x[-1]}", 9},
		{"{x[-3]}", 5},
		// Out-of-range indexes fall back to 1.
		{"{x[5]}", 1},
		{"{x[-9]}", 1},
	}
	for _, tc := range cases {
		got, err := EvalFormula(tc.src, env)
		if err != nil {
			t.Fatalf("eval %q: %v", tc.src, err)
		}
		if got == nil || got.Num != tc.want {
			t.Fatalf("eval %q: expected %v, got %v", tc.src, tc.want, got)
		}
	}
}

func TestEvalUnknownFieldError(t *testing.T) {
	_, err := EvalFormula("{missing} + 1", Env{})
	if err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, ok := err.(*UnknownFieldError); !ok {
		t.Fatalf("expected *UnknownFieldError, got %T", err)
	}
}

func TestEvalRejectsBareListInArithmetic(t *testing.T) {
	env := Env{"x": NumberList([]float64{1, 2})}
	if _, err := EvalFormula("{x} + 1", env); err == nil {
		t.Fatal("expected arithmetic over a list value to fail")
	}
}

package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// ValidationError is a definition-time rejection of a candidate rule or
// formula. Message formats:
//
//	Rule is invalid                                  (token grammar)
//	Rule syntax invalid "If {a} +>>>here>>>/ {b}"    (structure, caret)
//	Field name "x" used in Rule is not valid.        (cross-reference)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks a candidate expression at definition time: token
// grammar, structure (with a caret-marked position on failure), and a
// dry run against mocked data synthesized from the owner's questions.
// References to fields without a matching question are tolerated here;
// CheckFieldNames reports those separately.
func Validate(src string, kind Kind, questions map[string]*Question) error {
	expr, err := Parse(src, kind)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	env := mockEnv(expr, questions)
	if err := dryRun(expr, env); err != nil {
		return &ValidationError{Message: fmt.Sprintf("%s is invalid: %s", kind, err)}
	}
	return nil
}

// dryRun evaluates the expression against the mock environment.
// Unbound fields are fine at this stage (the cross-reference check owns
// that concern) and division by zero is a legal outcome, so only other
// evaluation failures count.
func dryRun(expr *Expr, env Env) error {
	var err error
	if expr.kind == KindRule {
		_, err = expr.EvalRule(env)
	} else {
		_, err = expr.EvalFormula(env)
	}
	var unknown *UnknownFieldError
	if errors.As(err, &unknown) {
		return nil
	}
	return err
}

// mockEnv synthesizes a plausible typed value for every referenced
// field that has a question definition: today's date for date fields, a
// bounded random integer for integer/slider fields, the first choice
// value for choice fields, 1 otherwise. Multi-value fields get a
// 4-element list.
func mockEnv(expr *Expr, questions map[string]*Question) Env {
	env := make(Env)
	for _, name := range expr.Fields() {
		q, ok := questions[name]
		if !ok {
			continue
		}
		env[name] = mockValue(q)
	}
	return env
}

const mockListLen = 4

func mockValue(q *Question) Value {
	single := func() Value {
		switch q.Type {
		case TypeDate:
			return DateValue(Today())
		case TypeInteger, TypeSlider:
			lo, hi := 1.0, 1000.0
			if q.MinValue != nil {
				lo = *q.MinValue
			}
			if q.MaxValue != nil {
				hi = *q.MaxValue
			}
			if hi < lo {
				hi = lo
			}
			// The span is tenant-defined and may exceed what fits in an
			// int, so the draw stays in float space.
			return Number(math.Floor(lo + rand.Float64()*(hi-lo+1)))
		case TypeChoices, TypeMultipleChoices:
			if len(q.Choices) > 0 {
				return Number(q.Choices[0].Value)
			}
			return Number(1)
		default:
			return Number(1)
		}
	}

	if q.MultipleValues || q.Type == TypeMultipleChoices {
		items := make([]Value, mockListLen)
		for i := range items {
			items[i] = single()
		}
		return ListValue(items)
	}
	return single()
}

// UsableFieldNames returns the field names allowed inside rules and
// formulas: every question type except multiple-choice (list answers
// are not addressable in expressions).
func UsableFieldNames(questions map[string]*Question) map[string]bool {
	usable := make(map[string]bool, len(questions))
	for name, q := range questions {
		if q.Type != TypeMultipleChoices {
			usable[name] = true
		}
	}
	return usable
}

// CheckFieldNames verifies that every field referenced by the
// expression is in the usable set, batching all offenders into one
// error with a line per bad name.
func CheckFieldNames(src string, kind Kind, usable map[string]bool) error {
	expr, err := Parse(src, kind)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	var bad []string
	for _, name := range expr.Fields() {
		if !usable[name] {
			bad = append(bad, name)
		}
	}
	if len(bad) == 0 {
		return nil
	}

	sort.Strings(bad)
	lines := make([]string, len(bad))
	for i, name := range bad {
		lines[i] = fmt.Sprintf("Field name %q used in %s is not valid.", name, kind)
	}
	return &ValidationError{Message: strings.Join(lines, "\n")}
}

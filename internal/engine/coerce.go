package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FieldError is a submission-time rejection of one answer, naming the
// offending field and raw response so callers can highlight it.
type FieldError struct {
	Field    string
	Response string
	Reason   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s (got %q)", e.Field, e.Reason, e.Response)
}

// CoerceAnswers parses each submitted raw response into its typed value
// according to the owning question, mutating the answers in place. A
// trailing [N] suffix on the field name is extracted as the multi-value
// index and stripped before lookup. Any malformed answer aborts the
// whole submission.
func CoerceAnswers(questions map[string]*Question, answers []*Answer) error {
	for _, a := range answers {
		if err := coerceAnswer(questions, a); err != nil {
			return err
		}
	}
	return nil
}

func coerceAnswer(questions map[string]*Question, a *Answer) error {
	name, index, err := SplitFieldName(a.FieldName)
	if err != nil {
		return &FieldError{a.FieldName, a.Response, "malformed field name"}
	}
	a.FieldName = name
	a.ValueNumber = index

	q, ok := questions[name]
	if !ok {
		return &FieldError{name, a.Response, "no such question"}
	}
	if index != nil && !q.MultipleValues {
		return &FieldError{name, a.Response, "question does not accept indexed answers"}
	}

	switch q.Type {
	case TypeDate:
		d, err := time.Parse("2006-01-02", a.Response)
		if err != nil {
			return &FieldError{name, a.Response, "expected a date in YYYY-MM-DD format"}
		}
		a.DateValue = &d

	case TypeChoices:
		choice := findChoice(q, a.Response)
		if choice == nil {
			return &FieldError{name, a.Response, "no such choice"}
		}
		a.Response = choice.Text
		a.Value = &choice.Value

	case TypeInteger:
		n, err := strconv.Atoi(strings.TrimSpace(a.Response))
		if err != nil {
			return &FieldError{name, a.Response, "expected an integer"}
		}
		v := float64(n)
		a.Value = &v

	case TypeMultipleChoices:
		texts := make([]string, 0, 4)
		values := make([]float64, 0, 4)
		for _, slug := range strings.Split(a.Response, ",") {
			choice := findChoice(q, strings.TrimSpace(slug))
			if choice == nil {
				return &FieldError{name, a.Response, "no such choice"}
			}
			texts = append(texts, choice.Text)
			values = append(values, choice.Value)
		}
		a.Response = strings.Join(texts, ", ")
		a.Values = values

	case TypeSlider:
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Response), 64)
		if err != nil {
			return &FieldError{name, a.Response, "expected a number"}
		}
		if q.MinValue != nil && v < *q.MinValue || q.MaxValue != nil && v > *q.MaxValue {
			return &FieldError{name, a.Response, "value out of slider bounds"}
		}
		a.Value = &v

	case TypeOpen:
		v := 0.0
		if strings.TrimSpace(a.Response) != "" {
			v = 1.0
		}
		a.Value = &v

	default:
		return &FieldError{name, a.Response, "unsupported question type"}
	}
	return nil
}

func findChoice(q *Question, slug string) *Choice {
	for i := range q.Choices {
		if q.Choices[i].Slug == slug {
			return &q.Choices[i]
		}
	}
	return nil
}

// SplitFieldName separates a trailing [N] multi-value suffix from a
// submitted field name. The index must be a non-negative integer.
func SplitFieldName(submitted string) (string, *int, error) {
	open := strings.IndexByte(submitted, '[')
	if open < 0 {
		return submitted, nil, nil
	}
	if !strings.HasSuffix(submitted, "]") {
		return "", nil, fmt.Errorf("unterminated index in %q", submitted)
	}
	n, err := strconv.Atoi(submitted[open+1 : len(submitted)-1])
	if err != nil || n < 0 {
		return "", nil, fmt.Errorf("bad index in %q", submitted)
	}
	return submitted[:open], &n, nil
}

// MissingFields returns the field names of questions that have no
// answer in the submission, index suffixes stripped. The result is
// sorted for stable error messages.
func MissingFields(questions map[string]*Question, answers []*Answer) []string {
	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		name, _, err := SplitFieldName(a.FieldName)
		if err != nil {
			continue
		}
		answered[name] = true
	}

	var missing []string
	for name := range questions {
		if !answered[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

package engine

import (
	"math"
	"time"
)

// CalculatePoints computes the weighted points a question contributes
// for one submission. A nil result means "not scored": the value matched
// no range, the formula divided by zero, or no value was submitted.
//
// With an empty formula the raw answer value is used directly. Ranges
// are scanned in declaration order; the first range satisfying
// start <= value < end wins and contributes round(points*weight, 2).
// Multiple-choice answers are scored per element and summed.
func (m *ScoringModel) CalculatePoints(q *Question, env Env) (*float64, error) {
	value, err := m.computeValue(q, env)
	if err != nil || value == nil {
		return nil, err
	}

	if q.Type == TypeMultipleChoices && value.Type == ValList {
		return m.sumListPoints(value.List), nil
	}
	return m.matchValue(*value), nil
}

func (m *ScoringModel) computeValue(q *Question, env Env) (*Value, error) {
	if m.Formula == "" {
		v, ok := env[q.FieldName]
		if !ok {
			return nil, nil
		}
		return &v, nil
	}
	return EvalFormula(m.Formula, env)
}

func (m *ScoringModel) sumListPoints(items []Value) *float64 {
	var total float64
	matched := false
	for _, item := range items {
		if pts := m.matchValue(item); pts != nil {
			total += *pts
			matched = true
		}
	}
	if !matched {
		return nil
	}
	total = round2(total)
	return &total
}

func (m *ScoringModel) matchValue(v Value) *float64 {
	switch v.Type {
	case ValNumber:
		for _, r := range m.Ranges {
			if numberInRange(v.Num, r) {
				return m.weighted(r.Points)
			}
		}
	case ValDate:
		for _, r := range m.DateRanges {
			if dateInRange(v.Date, r) {
				return m.weighted(r.Points)
			}
		}
	}
	return nil
}

func (m *ScoringModel) weighted(points int) *float64 {
	p := round2(float64(points) * m.Weight)
	return &p
}

// numberInRange tests the half-open interval [start, end); a nil bound
// is unbounded. A value equal to a boundary belongs to the range
// starting there, never the one ending there.
func numberInRange(v float64, r ValueRange) bool {
	if r.Start != nil && v < *r.Start {
		return false
	}
	if r.End != nil && v >= *r.End {
		return false
	}
	return true
}

func dateInRange(v time.Time, r DatesRange) bool {
	if r.Start != nil && v.Before(*r.Start) {
		return false
	}
	if r.End != nil && !v.Before(*r.End) {
		return false
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package engine

// ScoreResult carries the two axis totals for one submission.
type ScoreResult struct {
	XAxis float64
	YAxis float64
}

// Total is the plain sum of both axes.
func (r ScoreResult) Total() float64 { return round2(r.XAxis + r.YAxis) }

// BuildEnv flattens coerced answers into an evaluation environment.
// Indexed (multi-value) answers are promoted into a list keyed by the
// base field name, ordered by submission position; skipped indexes are
// not padded, so indexes 0 and 2 yield a two-element list.
func BuildEnv(answers []*Answer) Env {
	env := make(Env, len(answers))
	for _, a := range answers {
		v, ok := answerValue(a)
		if !ok {
			continue
		}
		bindAnswer(env, a, v)
	}
	return env
}

// buildRuleEnv is the recommendation-pass variant: list-valued
// (multi-choice) answers are left out, so they are not addressable
// inside rules.
func buildRuleEnv(answers []*Answer) Env {
	env := make(Env, len(answers))
	for _, a := range answers {
		if a.Values != nil {
			continue
		}
		v, ok := answerValue(a)
		if !ok {
			continue
		}
		bindAnswer(env, a, v)
	}
	return env
}

func answerValue(a *Answer) (Value, bool) {
	switch {
	case a.DateValue != nil:
		return DateValue(*a.DateValue), true
	case a.Values != nil:
		return NumberList(a.Values), true
	case a.Value != nil:
		return Number(*a.Value), true
	}
	return Value{}, false
}

func bindAnswer(env Env, a *Answer, v Value) {
	if a.ValueNumber == nil {
		env[a.FieldName] = v
		return
	}
	existing, ok := env[a.FieldName]
	if !ok || existing.Type != ValList {
		env[a.FieldName] = ListValue([]Value{v})
		return
	}
	existing.List = append(existing.List, v)
	env[a.FieldName] = existing
}

// Score runs the points computation for every answered question and
// accumulates the axis totals. Each distinct field is computed once
// (indexed answers share the result, recorded on every row) and added
// to an axis at most once. A computation failure at this stage degrades
// the field to "not scored" rather than failing the submission.
func Score(questions map[string]*Question, answers []*Answer) ScoreResult {
	env := BuildEnv(answers)
	computed := make(map[string]*float64)
	var res ScoreResult

	for _, a := range answers {
		points, seen := computed[a.FieldName]
		if !seen {
			points = computePoints(questions[a.FieldName], env)
			computed[a.FieldName] = points
			if points != nil {
				q := questions[a.FieldName]
				if q.Scoring.XAxis {
					res.XAxis = round2(res.XAxis + *points)
				}
				if q.Scoring.YAxis {
					res.YAxis = round2(res.YAxis + *points)
				}
			}
		}
		a.Points = points
	}
	return res
}

func computePoints(q *Question, env Env) *float64 {
	if q == nil || q.Scoring == nil {
		return nil
	}
	points, err := q.Scoring.CalculatePoints(q, env)
	if err != nil {
		return nil
	}
	return points
}

// CollectRecommendations evaluates each answered question's rule
// against the submission and copies the recommendation payload onto
// answers whose rule holds. A missing recommendation or a failing rule
// simply leaves the answer untouched.
func CollectRecommendations(questions map[string]*Question, answers []*Answer) {
	env := buildRuleEnv(answers)
	for _, a := range answers {
		q := questions[a.FieldName]
		if q == nil || q.Recommendation == nil {
			continue
		}
		ok, err := EvalRule(q.Recommendation.Rule, env)
		if err != nil || !ok {
			continue
		}
		r := q.Recommendation
		a.Recommendation = &RecommendationPayload{
			ResponseText:   r.ResponseText,
			AffiliateName:  r.AffiliateName,
			AffiliateImage: r.AffiliateImage,
			AffiliateLink:  r.AffiliateLink,
			RedirectURL:    r.RedirectURL,
		}
	}
}

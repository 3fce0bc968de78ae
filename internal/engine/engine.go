// Package engine implements the rule and formula mini-language used for
// lead scoring: a closed expression grammar over question field names,
// its validation, safe evaluation against submitted answer values, the
// half-open range lookup that converts computed values into points, and
// the X/Y axis aggregation over a full submission.
//
// The package is pure computation: it receives configuration and answer
// data as plain values and performs no I/O.
package engine

import "time"

// QuestionType tags how a question's raw response is interpreted.
type QuestionType string

const (
	TypeOpen            QuestionType = "open"
	TypeChoices         QuestionType = "choices"
	TypeMultipleChoices QuestionType = "multiple_choices"
	TypeInteger         QuestionType = "integer"
	TypeSlider          QuestionType = "slider"
	TypeDate            QuestionType = "date"
)

// Question is one questionnaire field, together with its optional
// scoring model and recommendation. FieldName is the only vocabulary
// usable inside rule/formula expressions.
type Question struct {
	FieldName      string
	Type           QuestionType
	MultipleValues bool
	MinValue       *float64
	MaxValue       *float64
	Choices        []Choice
	Scoring        *ScoringModel
	Recommendation *Recommendation
}

// Choice is one allowed answer option for choice-typed questions.
// Slug is the machine key used in submissions, Value the number the
// field substitutes to inside expressions.
type Choice struct {
	Text  string
	Slug  string
	Value float64
}

// ScoringModel converts a question's answer (or a formula over several
// answers) into points on the X and/or Y axis. Exactly one of Ranges or
// DateRanges is populated, depending on the question type. Ranges are
// scanned in declaration order and the first match wins.
type ScoringModel struct {
	Weight     float64
	XAxis      bool
	YAxis      bool
	Formula    string
	Ranges     []ValueRange
	DateRanges []DatesRange
}

// ValueRange is a half-open numeric interval [Start, End) mapped to
// points. A nil bound means unbounded on that side.
type ValueRange struct {
	Start  *float64
	End    *float64
	Points int
}

// DatesRange is a half-open date interval [Start, End) mapped to points.
type DatesRange struct {
	Start  *time.Time
	End    *time.Time
	Points int
}

// Recommendation attaches a payload to an answer when its rule holds.
type Recommendation struct {
	Rule           string
	ResponseText   string
	AffiliateName  string
	AffiliateImage string
	AffiliateLink  string
	RedirectURL    string
}

// RecommendationPayload is the slice of a Recommendation copied onto a
// matched answer.
type RecommendationPayload struct {
	ResponseText   string
	AffiliateName  string
	AffiliateImage string
	AffiliateLink  string
	RedirectURL    string
}

// Answer is one submitted value flowing through coercion, scoring and
// the recommendation pass. Exactly one of Value, Values or DateValue is
// populated after coercion, depending on the question type.
type Answer struct {
	FieldName      string
	Response       string
	ValueNumber    *int
	Value          *float64
	Values         []float64
	DateValue      *time.Time
	Points         *float64
	Recommendation *RecommendationPayload
}

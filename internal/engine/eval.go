package engine

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// errDivisionByZero is an internal sentinel: callers translate it to a
// nil formula result or a false rule result, never to a failure.
var errDivisionByZero = errors.New("division by zero")

// UnknownFieldError reports a field reference with no binding in the
// environment. Definition-time dry runs swallow it.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

// evalError is a type-level evaluation failure (e.g. arithmetic on a
// list value).
type evalError struct {
	pos int
	msg string
}

func (e *evalError) Error() string { return e.msg }

// EvalFormula parses and evaluates a formula against env.
// A nil result with nil error means "no value" (division by zero).
func EvalFormula(src string, env Env) (*Value, error) {
	expr, err := Parse(src, KindFormula)
	if err != nil {
		return nil, err
	}
	return expr.EvalFormula(env)
}

// EvalRule parses and evaluates a rule against env.
// Division by zero yields false, matching "condition not met".
func EvalRule(src string, env Env) (bool, error) {
	expr, err := Parse(src, KindRule)
	if err != nil {
		return false, err
	}
	return expr.EvalRule(env)
}

// EvalFormula evaluates a parsed formula. Division by zero anywhere in
// the tree yields (nil, nil).
func (e *Expr) EvalFormula(env Env) (*Value, error) {
	v, err := e.eval(e.root, env)
	if err != nil {
		if errors.Is(err, errDivisionByZero) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// EvalRule evaluates a parsed rule to a boolean by truthiness.
func (e *Expr) EvalRule(env Env) (bool, error) {
	v, err := e.eval(e.root, env)
	if err != nil {
		if errors.Is(err, errDivisionByZero) {
			return false, nil
		}
		return false, err
	}
	return truthy(v), nil
}

func (e *Expr) eval(n Node, env Env) (Value, error) {
	switch t := n.(type) {
	case *NumberLit:
		return Number(t.Value), nil
	case *DateLit:
		return DateValue(t.Value), nil
	case *FieldRef:
		return e.evalField(t, env)
	case *FuncCall:
		return e.evalCall(t, env)
	case *UnaryOp:
		return e.evalUnary(t, env)
	case *BinOp:
		return e.evalBinOp(t, env)
	}
	return Value{}, &evalError{n.Pos(), "unexpected expression node"}
}

func (e *Expr) evalField(f *FieldRef, env Env) (Value, error) {
	bound, ok := env[f.Name]
	if !ok {
		return Value{}, &UnknownFieldError{f.Name}
	}
	if f.Index == nil {
		return bound, nil
	}

	list := bound.List
	if bound.Type != ValList {
		list = []Value{bound}
	}
	idx := *f.Index
	if idx < 0 {
		idx += len(list)
	}
	if idx < 0 || idx >= len(list) {
		// Out-of-range indexes fall back to 1 rather than failing the
		// whole evaluation.
		return Number(1), nil
	}
	return list[idx], nil
}

func (e *Expr) evalUnary(u *UnaryOp, env Env) (Value, error) {
	v, err := e.eval(u.Expr, env)
	if err != nil {
		return Value{}, err
	}
	switch u.Op {
	case tokNot:
		return BoolValue(!truthy(v)), nil
	case tokMinus:
		if v.Type != ValNumber {
			return Value{}, &evalError{u.Pos(), "negation requires a number"}
		}
		return Number(-v.Num), nil
	}
	return Value{}, &evalError{u.Pos(), "unsupported unary operator"}
}

func (e *Expr) evalBinOp(b *BinOp, env Env) (Value, error) {
	// and/or short-circuit before the right side is touched.
	if b.Op == tokAnd || b.Op == tokOr {
		left, err := e.eval(b.Left, env)
		if err != nil {
			return Value{}, err
		}
		if b.Op == tokAnd && !truthy(left) {
			return BoolValue(false), nil
		}
		if b.Op == tokOr && truthy(left) {
			return BoolValue(true), nil
		}
		right, err := e.eval(b.Right, env)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(truthy(right)), nil
	}

	left, err := e.eval(b.Left, env)
	if err != nil {
		return Value{}, err
	}
	right, err := e.eval(b.Right, env)
	if err != nil {
		return Value{}, err
	}

	if isComparison(b.Op) {
		return e.compare(b, left, right)
	}
	return e.arith(b, left, right)
}

func (e *Expr) compare(b *BinOp, left, right Value) (Value, error) {
	// Equality across mismatched types is false, never an error.
	if b.Op == tokEQ || b.Op == tokNE {
		eq, err := valuesEqual(left, right)
		if err != nil {
			return Value{}, &evalError{b.Pos(), err.Error()}
		}
		if b.Op == tokNE {
			eq = !eq
		}
		return BoolValue(eq), nil
	}

	switch {
	case left.Type == ValNumber && right.Type == ValNumber:
		return BoolValue(compareFloats(b.Op, left.Num, right.Num)), nil
	case left.Type == ValDate && right.Type == ValDate:
		return BoolValue(compareFloats(b.Op, dayNumber(left.Date), dayNumber(right.Date))), nil
	}
	return Value{}, &evalError{b.Pos(), "ordering comparison requires two numbers or two dates"}
}

func valuesEqual(a, b Value) (bool, error) {
	if a.Type != b.Type {
		return false, nil
	}
	switch a.Type {
	case ValNumber:
		return a.Num == b.Num, nil
	case ValBool:
		return a.Bool == b.Bool, nil
	case ValDate:
		return a.Date.Equal(b.Date), nil
	}
	return false, errors.New("list values cannot be compared")
}

func compareFloats(op tokenType, a, b float64) bool {
	switch op {
	case tokGT:
		return a > b
	case tokLT:
		return a < b
	case tokGE:
		return a >= b
	case tokLE:
		return a <= b
	}
	return false
}

func (e *Expr) arith(b *BinOp, left, right Value) (Value, error) {
	// Date difference yields a day count; all other date arithmetic is
	// rejected.
	if left.Type == ValDate || right.Type == ValDate {
		if b.Op == tokMinus && left.Type == ValDate && right.Type == ValDate {
			return Number(daysBetween(right.Date, left.Date)), nil
		}
		return Value{}, &evalError{b.Pos(), "unsupported date arithmetic"}
	}
	if left.Type != ValNumber || right.Type != ValNumber {
		return Value{}, &evalError{b.Pos(), "arithmetic requires numeric operands"}
	}

	a, c := left.Num, right.Num
	switch b.Op {
	case tokPlus:
		return Number(a + c), nil
	case tokMinus:
		return Number(a - c), nil
	case tokStar:
		return Number(a * c), nil
	case tokSlash:
		if c == 0 {
			return Value{}, errDivisionByZero
		}
		return Number(a / c), nil
	case tokFloorDiv:
		if c == 0 {
			return Value{}, errDivisionByZero
		}
		return Number(math.Floor(a / c)), nil
	case tokPercent:
		if c == 0 {
			return Value{}, errDivisionByZero
		}
		return Number(pythonMod(a, c)), nil
	case tokPower:
		return Number(math.Pow(a, c)), nil
	}
	return Value{}, &evalError{b.Pos(), "unsupported operator"}
}

// pythonMod matches the modulo semantics the expression language
// inherited: the result takes the sign of the divisor.
func pythonMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func (e *Expr) evalCall(c *FuncCall, env Env) (Value, error) {
	if aggregateNames[c.Name] {
		field := c.Args[0].(*FieldRef)
		return e.evalAggregate(c, field, env)
	}

	switch c.Name {
	case "today":
		return DateValue(Today()), nil
	case "sqrt":
		arg, err := e.eval(c.Args[0], env)
		if err != nil {
			return Value{}, err
		}
		if arg.Type != ValNumber || arg.Num < 0 {
			return Value{}, &evalError{c.Pos(), "sqrt requires a non-negative number"}
		}
		return Number(math.Sqrt(arg.Num)), nil
	case "days":
		arg, err := e.eval(c.Args[0], env)
		if err != nil {
			return Value{}, err
		}
		if arg.Type != ValNumber {
			return Value{}, &evalError{c.Pos(), "days requires a day count"}
		}
		return Number(arg.Num), nil
	}
	return Value{}, &evalError{c.Pos(), "unknown function " + c.Name}
}

// evalAggregate applies sum/mean/median/min/max/count to the list bound
// to a field. A scalar binding behaves as a one-element list. Date
// lists aggregate over the pairwise day-deltas between consecutive
// entries rather than the raw values; "median" is deliberately the
// range midpoint (max-min)/2, not a statistical median.
func (e *Expr) evalAggregate(c *FuncCall, field *FieldRef, env Env) (Value, error) {
	bound, ok := env[field.Name]
	if !ok {
		return Value{}, &UnknownFieldError{field.Name}
	}

	items := bound.List
	if bound.Type != ValList {
		items = []Value{bound}
	}

	if c.Name == "count" {
		return Number(float64(len(items))), nil
	}

	nums, dates, err := splitAggregateItems(c, items)
	if err != nil {
		return Value{}, err
	}
	if dates != nil {
		return Number(dateAggregate(c.Name, dates, len(items))), nil
	}
	return e.numericAggregate(c, nums)
}

func splitAggregateItems(c *FuncCall, items []Value) ([]float64, []time.Time, error) {
	var nums []float64
	var dates []time.Time
	for _, item := range items {
		switch item.Type {
		case ValNumber:
			nums = append(nums, item.Num)
		case ValDate:
			dates = append(dates, item.Date)
		default:
			return nil, nil, &evalError{c.Pos(), "aggregate over non-numeric value"}
		}
	}
	if len(nums) > 0 && len(dates) > 0 {
		return nil, nil, &evalError{c.Pos(), "aggregate over mixed value types"}
	}
	return nums, dates, nil
}

func (e *Expr) numericAggregate(c *FuncCall, nums []float64) (Value, error) {
	total := 0.0
	for _, n := range nums {
		total += n
	}
	switch c.Name {
	case "sum":
		return Number(total), nil
	case "mean":
		if len(nums) == 0 {
			return Value{}, errDivisionByZero
		}
		return Number(total / float64(len(nums))), nil
	case "min":
		return Number(minOf(nums)), nil
	case "max":
		return Number(maxOf(nums)), nil
	case "median":
		// Range midpoint, kept for compatibility with stored formulas.
		if len(nums) == 0 {
			return Number(0), nil
		}
		return Number((maxOf(nums) - minOf(nums)) / 2), nil
	}
	return Value{}, &evalError{c.Pos(), "unknown aggregate " + c.Name}
}

// dateAggregate operates on the signed day-gaps between consecutive
// dates. With fewer than two dates every function yields 0.
func dateAggregate(name string, dates []time.Time, count int) float64 {
	if len(dates) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gaps = append(gaps, daysBetween(dates[i-1], dates[i]))
	}

	span := daysBetween(dates[0], dates[len(dates)-1])
	switch name {
	case "sum":
		return span
	case "mean":
		return span / float64(count)
	case "min":
		return minOf(gaps)
	case "max":
		return maxOf(gaps)
	case "median":
		return (maxOf(gaps) - minOf(gaps)) / 2
	}
	return 0
}

func minOf(fs []float64) float64 {
	if len(fs) == 0 {
		return 0
	}
	m := fs[0]
	for _, f := range fs[1:] {
		m = math.Min(m, f)
	}
	return m
}

func maxOf(fs []float64) float64 {
	if len(fs) == 0 {
		return 0
	}
	m := fs[0]
	for _, f := range fs[1:] {
		m = math.Max(m, f)
	}
	return m
}

// daysBetween returns the signed number of days from a to b.
func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}

func dayNumber(t time.Time) float64 {
	return float64(t.Unix()) / 86400
}

// Today returns the current calendar date in UTC.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

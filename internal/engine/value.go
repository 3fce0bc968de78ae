package engine

import "time"

// ValueType tags the variant held by a Value.
type ValueType int

const (
	ValNumber ValueType = iota
	ValBool
	ValDate
	ValList
)

// Value is the tagged union flowing through evaluation: a number, a
// boolean, a calendar date, or a list of values (multi-value answers).
type Value struct {
	Type ValueType
	Num  float64
	Bool bool
	Date time.Time
	List []Value
}

// Number wraps a float as a Value.
func Number(f float64) Value { return Value{Type: ValNumber, Num: f} }

// BoolValue wraps a bool as a Value.
func BoolValue(b bool) Value { return Value{Type: ValBool, Bool: b} }

// DateValue wraps a date as a Value.
func DateValue(t time.Time) Value { return Value{Type: ValDate, Date: t} }

// ListValue wraps a slice of values as a Value.
func ListValue(vs []Value) Value { return Value{Type: ValList, List: vs} }

// NumberList builds a list value from floats.
func NumberList(fs []float64) Value {
	vs := make([]Value, len(fs))
	for i, f := range fs {
		vs[i] = Number(f)
	}
	return ListValue(vs)
}

// DateList builds a list value from dates.
func DateList(ts []time.Time) Value {
	vs := make([]Value, len(ts))
	for i, t := range ts {
		vs[i] = DateValue(t)
	}
	return ListValue(vs)
}

// Env maps field names to their bound answer values.
type Env map[string]Value

func truthy(v Value) bool {
	switch v.Type {
	case ValNumber:
		return v.Num != 0
	case ValBool:
		return v.Bool
	case ValDate:
		return true
	case ValList:
		return len(v.List) > 0
	}
	return false
}

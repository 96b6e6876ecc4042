package valuetype

import (
	"fmt"
	"time"
)

// Value is the canonical in-memory representation of a cell. It is a
// tagged union over the 14 semantic types plus null: exactly one of
// the scalar fields is meaningful, selected by Type, unless Null is
// set. Lists populate List with per-element Values of Type.Element().
//
// Modeling it this way (rather than host-language subclasses per
// type) keeps the polymorphism inside the type system, not in Go's
// type hierarchy, matching the design note that column lookups return
// a reified descriptor and values stay a flat sum type.
type Value struct {
	Type SemanticType
	Null bool

	Bool  bool
	Str   string
	Int   int64
	Float float64
	Time  time.Time // used for Date, Time, and DateTime

	List []Value
}

// NullValue returns the absent value for type t.
func NullValue(t SemanticType) Value {
	return Value{Type: t, Null: true}
}

func NewBool(b bool) Value           { return Value{Type: Boolean, Bool: b} }
func NewString(s string) Value       { return Value{Type: String, Str: s} }
func NewInt(i int64) Value           { return Value{Type: Integer, Int: i} }
func NewFloat(f float64) Value       { return Value{Type: Float, Float: f} }
func NewDate(t time.Time) Value      { return Value{Type: Date, Time: t} }
func NewTime(t time.Time) Value      { return Value{Type: Time, Time: t} }
func NewDateTime(t time.Time) Value  { return Value{Type: DateTime, Time: t} }

// NewList builds a list value; elementType is the type of each entry.
func NewList(elementType SemanticType, elems []Value) Value {
	return Value{Type: ListOf(elementType), List: elems}
}

// Equal reports structural, element-wise equality, used by
// is_value_modified (current != initial) and by filter comparisons.
func (v Value) Equal(other Value) bool {
	if v.Null != other.Null {
		return false
	}
	if v.Null {
		return true
	}
	if v.Type.IsList() {
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	}
	switch v.Type {
	case Boolean:
		return v.Bool == other.Bool
	case String:
		return v.Str == other.Str
	case Integer:
		return v.Int == other.Int
	case Float:
		return v.Float == other.Float
	case Date, Time, DateTime:
		return v.Time.Equal(other.Time)
	default:
		return false
	}
}

// Less defines the lexicographic ordering used for <, <=, >, >= on
// list-valued comparisons (§4.7): element by element, shorter-prefix
// loses ties the way string comparison does.
func (v Value) Less(other Value) bool {
	if v.Type.IsList() {
		for i := 0; i < len(v.List) && i < len(other.List); i++ {
			if v.List[i].Equal(other.List[i]) {
				continue
			}
			return v.List[i].Less(other.List[i])
		}
		return len(v.List) < len(other.List)
	}
	switch v.Type {
	case Boolean:
		return !v.Bool && other.Bool
	case String:
		return v.Str < other.Str
	case Integer:
		return v.Int < other.Int
	case Float:
		return v.Float < other.Float
	case Date, Time, DateTime:
		return v.Time.Before(other.Time)
	default:
		return false
	}
}

func (v Value) String() string {
	if v.Null {
		return "null"
	}
	if v.Type.IsList() {
		return fmt.Sprintf("%v", v.List)
	}
	switch v.Type {
	case Boolean:
		return fmt.Sprintf("%t", v.Bool)
	case String:
		return v.Str
	case Integer:
		return fmt.Sprintf("%d", v.Int)
	case Float:
		return fmt.Sprintf("%g", v.Float)
	case Date:
		return v.Time.Format(DateLayout)
	case Time:
		return v.Time.Format(TimeLayout)
	case DateTime:
		return v.Time.Format(DateTimeLayout)
	default:
		return ""
	}
}

// Package valuetype implements the closed semantic type system shared
// by the schema registry, the document store, and the filter compiler:
// the 14-variant SemanticType set, the typed Value representation, and
// the strict membership predicate every candidate value must pass
// before it is allowed into a cell.
package valuetype

import "fmt"

// SemanticType is one of the 14 closed-set logical types a Column can
// declare. String-valued, matching the teacher's Dialect convention of
// representing small closed enumerations as named strings rather than
// ints, so the value round-trips through the metadata table unchanged.
type SemanticType string

const (
	Boolean      SemanticType = "boolean"
	String       SemanticType = "string"
	Integer      SemanticType = "integer"
	Float        SemanticType = "float"
	Date         SemanticType = "date"
	Time         SemanticType = "time"
	DateTime     SemanticType = "datetime"
	ListBoolean  SemanticType = "list_boolean"
	ListString   SemanticType = "list_string"
	ListInteger  SemanticType = "list_integer"
	ListFloat    SemanticType = "list_float"
	ListDate     SemanticType = "list_date"
	ListTime     SemanticType = "list_time"
	ListDateTime SemanticType = "list_datetime"
)

// AllTypes lists every semantic type in declaration order.
var AllTypes = []SemanticType{
	Boolean, String, Integer, Float, Date, Time, DateTime,
	ListBoolean, ListString, ListInteger, ListFloat, ListDate, ListTime, ListDateTime,
}

// Valid reports whether t is a member of the closed set.
func (t SemanticType) Valid() bool {
	switch t {
	case Boolean, String, Integer, Float, Date, Time, DateTime,
		ListBoolean, ListString, ListInteger, ListFloat, ListDate, ListTime, ListDateTime:
		return true
	default:
		return false
	}
}

// IsList reports whether t is one of the seven list forms.
func (t SemanticType) IsList() bool {
	switch t {
	case ListBoolean, ListString, ListInteger, ListFloat, ListDate, ListTime, ListDateTime:
		return true
	default:
		return false
	}
}

// Element returns the scalar type carried by a list type. Calling it
// on a scalar type returns the type unchanged, which lets callers write
// comparisons without a separate branch for the non-list case.
func (t SemanticType) Element() SemanticType {
	switch t {
	case ListBoolean:
		return Boolean
	case ListString:
		return String
	case ListInteger:
		return Integer
	case ListFloat:
		return Float
	case ListDate:
		return Date
	case ListTime:
		return Time
	case ListDateTime:
		return DateTime
	default:
		return t
	}
}

// ListOf returns the list type whose elements are t. Panics on a type
// that is already a list, since lists of lists are not part of the
// closed set (caller bug, not a runtime condition).
func ListOf(t SemanticType) SemanticType {
	switch t {
	case Boolean:
		return ListBoolean
	case String:
		return ListString
	case Integer:
		return ListInteger
	case Float:
		return ListFloat
	case Date:
		return ListDate
	case Time:
		return ListTime
	case DateTime:
		return ListDateTime
	default:
		panic(fmt.Sprintf("valuetype: %s has no list form", t))
	}
}

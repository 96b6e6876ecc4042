package valuetype

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/populse/scandex/internal/errs"
)

// Temporal wire layouts (§6). Encoding always zero-pads; decoding of
// stored values uses the same layout since scandex itself wrote them.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05.000000"
	DateTimeLayout = "2006-01-02 15:04:05.000000"
)

// listSeparator joins encoded list elements. The ASCII unit separator
// (0x1F) is chosen because it cannot appear in any of our encoded scalar
// forms (strings escape it explicitly below), so the encode/decode
// pair round-trips lists containing empty strings or elements that
// themselves contain the separator byte.
const (
	listSeparator = "\x1f"
	listEscape    = "\x5c" // backslash
	emptyListSentinel = "\x00EMPTY\x00"
)

// Validate checks the strict typing predicate (§4.3): v must be null
// or a member of t, with no implicit widening between scalar types
// except Integer values being acceptable wherever a Float is expected.
func Validate(t SemanticType, v Value) error {
	if v.Null {
		return nil
	}
	if t.IsList() {
		if v.Type != t {
			return errs.New(errs.TypeMismatch, "expected list of %s, got %s", t.Element(), v.Type)
		}
		elem := t.Element()
		for i, e := range v.List {
			if err := Validate(elem, e); err != nil {
				return errs.New(errs.TypeMismatch, "element %d: %v", i, err)
			}
		}
		return nil
	}
	switch t {
	case Boolean:
		if v.Type != Boolean {
			return errs.New(errs.TypeMismatch, "expected boolean, got %s", v.Type)
		}
	case Integer:
		if v.Type != Integer {
			return errs.New(errs.TypeMismatch, "expected integer, got %s", v.Type)
		}
	case Float:
		if v.Type != Float && v.Type != Integer {
			return errs.New(errs.TypeMismatch, "expected float, got %s", v.Type)
		}
	case String:
		if v.Type != String {
			return errs.New(errs.TypeMismatch, "expected string, got %s", v.Type)
		}
	case Date:
		if v.Type != Date {
			return errs.New(errs.TypeMismatch, "expected date, got %s", v.Type)
		}
	case Time:
		if v.Type != Time {
			return errs.New(errs.TypeMismatch, "expected time, got %s", v.Type)
		}
	case DateTime:
		if v.Type != DateTime {
			return errs.New(errs.TypeMismatch, "expected datetime, got %s", v.Type)
		}
	default:
		return errs.New(errs.InvalidArgument, "unknown semantic type %q", t)
	}
	return nil
}

// Encode converts v to a primitive the backend adapter can bind as a
// parameterized query argument. Null encodes to nil. List and temporal
// values encode to their §6 textual wire form; other scalars map to
// native backend-bindable Go types.
func Encode(t SemanticType, v Value) (any, error) {
	if v.Null {
		return nil, nil
	}
	if err := Validate(t, v); err != nil {
		return nil, err
	}
	if t.IsList() {
		elem := t.Element()
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			s, err := encodeScalarText(elem, e)
			if err != nil {
				return nil, err
			}
			parts[i] = escapeListElement(s)
		}
		if len(parts) == 0 {
			return emptyListSentinel, nil
		}
		return strings.Join(parts, listSeparator), nil
	}
	switch t {
	case Boolean:
		if v.Bool {
			return int64(1), nil
		}
		return int64(0), nil
	case Integer:
		return v.Int, nil
	case Float:
		if v.Type == Integer {
			return float64(v.Int), nil
		}
		return v.Float, nil
	case String:
		return v.Str, nil
	case Date:
		return v.Time.UTC().Format(DateLayout), nil
	case Time:
		return v.Time.UTC().Format(TimeLayout), nil
	case DateTime:
		return v.Time.UTC().Format(DateTimeLayout), nil
	default:
		return nil, errs.New(errs.InvalidArgument, "unknown semantic type %q", t)
	}
}

// Decode inverts Encode: raw is whatever the backend driver returned
// for a column of semantic type t (int64, float64, string, or nil).
func Decode(t SemanticType, raw any) (Value, error) {
	if raw == nil {
		return NullValue(t), nil
	}
	if t.IsList() {
		s, ok := raw.(string)
		if !ok {
			return Value{}, errs.New(errs.BackendError, "expected text for list column, got %T", raw)
		}
		return decodeList(t, s)
	}
	switch t {
	case Boolean:
		n, err := asInt64(raw)
		if err != nil {
			return Value{}, err
		}
		return NewBool(n != 0), nil
	case Integer:
		n, err := asInt64(raw)
		if err != nil {
			return Value{}, err
		}
		return NewInt(n), nil
	case Float:
		f, err := asFloat64(raw)
		if err != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	case String:
		s, ok := raw.(string)
		if !ok {
			return Value{}, errs.New(errs.BackendError, "expected text for string column, got %T", raw)
		}
		return NewString(s), nil
	case Date:
		s, err := asString(raw)
		if err != nil {
			return Value{}, err
		}
		tm, err := time.Parse(DateLayout, s)
		if err != nil {
			return Value{}, errs.Wrap(errs.BackendError, err, "decoding date %q", s)
		}
		return NewDate(tm), nil
	case Time:
		s, err := asString(raw)
		if err != nil {
			return Value{}, err
		}
		tm, err := time.Parse(TimeLayout, s)
		if err != nil {
			return Value{}, errs.Wrap(errs.BackendError, err, "decoding time %q", s)
		}
		return NewTime(tm), nil
	case DateTime:
		s, err := asString(raw)
		if err != nil {
			return Value{}, err
		}
		tm, err := time.Parse(DateTimeLayout, s)
		if err != nil {
			return Value{}, errs.Wrap(errs.BackendError, err, "decoding datetime %q", s)
		}
		return NewDateTime(tm), nil
	default:
		return Value{}, errs.New(errs.InvalidArgument, "unknown semantic type %q", t)
	}
}

func encodeScalarText(t SemanticType, v Value) (string, error) {
	raw, err := Encode(t, v)
	if err != nil {
		return "", err
	}
	switch x := raw.(type) {
	case nil:
		return "", nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return x, nil
	default:
		return fmt.Sprintf("%v", x), nil
	}
}

func decodeList(t SemanticType, s string) (Value, error) {
	elem := t.Element()
	if s == emptyListSentinel {
		return NewList(elem, nil), nil
	}
	// Split only on unescaped separators; an escaped separator belongs
	// to its element and is restored by unescapeListElement below.
	var rawParts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == listEscape[0] {
			i++
			continue
		}
		if s[i] == listSeparator[0] {
			rawParts = append(rawParts, s[start:i])
			start = i + 1
		}
	}
	rawParts = append(rawParts, s[start:])
	vals := make([]Value, len(rawParts))
	for i, p := range rawParts {
		unescaped := unescapeListElement(p)
		var raw any
		switch elem {
		case Integer, Boolean:
			n, err := strconv.ParseInt(unescaped, 10, 64)
			if err != nil {
				return Value{}, errs.Wrap(errs.BackendError, err, "decoding list element %q", unescaped)
			}
			raw = n
		case Float:
			f, err := strconv.ParseFloat(unescaped, 64)
			if err != nil {
				return Value{}, errs.Wrap(errs.BackendError, err, "decoding list element %q", unescaped)
			}
			raw = f
		default:
			raw = unescaped
		}
		v, err := Decode(elem, raw)
		if err != nil {
			return Value{}, err
		}
		vals[i] = v
	}
	return NewList(elem, vals), nil
}

// escapeListElement backslash-escapes the separator and escape bytes so
// an element that happens to contain them cannot be mistaken for a
// boundary between elements.
func escapeListElement(s string) string {
	s = strings.ReplaceAll(s, listEscape, listEscape+listEscape)
	s = strings.ReplaceAll(s, listSeparator, listEscape+listSeparator)
	return s
}

func unescapeListElement(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == listEscape[0] && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func asInt64(raw any) (int64, error) {
	switch x := raw.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		return int64(x), nil
	default:
		return 0, errs.New(errs.BackendError, "expected integer, got %T", raw)
	}
}

func asFloat64(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	default:
		return 0, errs.New(errs.BackendError, "expected float, got %T", raw)
	}
}

func asString(raw any) (string, error) {
	switch x := raw.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", errs.New(errs.BackendError, "expected text, got %T", raw)
	}
}

// ParseFractionalSeconds right-zero-pads a fractional-second literal
// to microsecond precision, e.g. ".789" -> 789000. This is an
// interface contract (§4.6/§9), not an implementation accident: it
// must be replicated verbatim everywhere a Time or DateTime literal is
// parsed.
func ParseFractionalSeconds(frac string) (int, error) {
	frac = strings.TrimPrefix(frac, ".")
	if len(frac) > 6 {
		frac = frac[:6]
	}
	for len(frac) < 6 {
		frac += "0"
	}
	n, err := strconv.Atoi(frac)
	if err != nil {
		return 0, err
	}
	return n, nil
}

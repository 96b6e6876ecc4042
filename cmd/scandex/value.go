package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/populse/scandex/internal/valuetype"
)

// parseScalarValue converts a raw CLI argument into a typed Value
// according to t, for the handful of scalar types the set-value
// command accepts directly on the command line.
func parseScalarValue(raw string, t valuetype.SemanticType) (valuetype.Value, error) {
	switch t {
	case valuetype.Boolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return valuetype.Value{}, fmt.Errorf("invalid boolean %q: %w", raw, err)
		}
		return valuetype.NewBool(b), nil
	case valuetype.Integer:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return valuetype.Value{}, fmt.Errorf("invalid integer %q: %w", raw, err)
		}
		return valuetype.NewInt(i), nil
	case valuetype.Float:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return valuetype.Value{}, fmt.Errorf("invalid float %q: %w", raw, err)
		}
		return valuetype.NewFloat(f), nil
	case valuetype.String:
		return valuetype.NewString(raw), nil
	case valuetype.Date:
		tm, err := time.Parse(valuetype.DateLayout, raw)
		if err != nil {
			return valuetype.Value{}, fmt.Errorf("invalid date %q: %w", raw, err)
		}
		return valuetype.NewDate(tm), nil
	case valuetype.Time:
		tm, err := time.Parse(valuetype.TimeLayout, raw)
		if err != nil {
			return valuetype.Value{}, fmt.Errorf("invalid time %q: %w", raw, err)
		}
		return valuetype.NewTime(tm), nil
	case valuetype.DateTime:
		tm, err := time.Parse(valuetype.DateTimeLayout, raw)
		if err != nil {
			return valuetype.Value{}, fmt.Errorf("invalid datetime %q: %w", raw, err)
		}
		return valuetype.NewDateTime(tm), nil
	default:
		return valuetype.Value{}, fmt.Errorf("unsupported scalar type %q for CLI input; list columns cannot be set from the command line", t)
	}
}

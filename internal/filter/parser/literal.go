package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/populse/scandex/internal/valuetype"
)

// parseLiteralText classifies a bare (unquoted) literal token's text
// into the most specific form the grammar's literal table allows:
// integer, then float, then date, then datetime, then time. Quoted
// strings, true/false, and null are tokenized separately and never
// reach here.
func parseLiteralText(pos int, text string) (valuetype.Value, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return valuetype.NewInt(n), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return valuetype.NewFloat(f), nil
	}
	if t, ok := parseDate(text); ok {
		return valuetype.NewDate(t), nil
	}
	if t, ok := parseDateTime(text); ok {
		return valuetype.NewDateTime(t), nil
	}
	if t, ok := parseTime(text); ok {
		return valuetype.NewTime(t), nil
	}
	return valuetype.Value{}, newParseError(pos, "unrecognized literal %q", text)
}

// parseDate accepts YYYY-M-D, zero-padding month/day as needed.
func parseDate(text string) (time.Time, bool) {
	parts := strings.Split(text, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	y, okY := atoi(parts[0])
	m, okM := atoi(parts[1])
	d, okD := atoi(parts[2])
	if !okY || !okM || !okD || m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// parseTime accepts H:M[:S[.ffffff]].
func parseTime(text string) (time.Time, bool) {
	h, m, s, nsec, ok := splitClock(text)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(0, 1, 1, h, m, s, nsec, time.UTC), true
}

// parseDateTime accepts YYYY-M-DTH:M[:S[.ffffff]].
func parseDateTime(text string) (time.Time, bool) {
	idx := strings.IndexByte(text, 'T')
	if idx < 0 {
		return time.Time{}, false
	}
	datePart, clockPart := text[:idx], text[idx+1:]
	date, ok := parseDate(datePart)
	if !ok {
		return time.Time{}, false
	}
	h, m, s, nsec, ok := splitClock(clockPart)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, nsec, time.UTC), true
}

// splitClock parses H:M[:S[.ffffff]], applying the right-zero-pad
// fractional-second rule (§4.6/§9: ".789" -> 789000 microseconds).
func splitClock(text string) (hour, min, sec, nsec int, ok bool) {
	fracIdx := strings.IndexByte(text, '.')
	frac := ""
	if fracIdx >= 0 {
		frac = text[fracIdx+1:]
		text = text[:fracIdx]
	}
	parts := strings.Split(text, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, 0, false
	}
	h, okH := atoi(parts[0])
	m, okM := atoi(parts[1])
	if !okH || !okM || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, 0, 0, false
	}
	s := 0
	if len(parts) == 3 {
		var okS bool
		s, okS = atoi(parts[2])
		if !okS || s < 0 || s > 59 {
			return 0, 0, 0, 0, false
		}
	}
	micros := 0
	if frac != "" {
		us, err := valuetype.ParseFractionalSeconds(frac)
		if err != nil {
			return 0, 0, 0, 0, false
		}
		micros = us
	}
	return h, m, s, micros * 1000, true
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

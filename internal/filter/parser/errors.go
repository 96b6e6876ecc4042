package parser

import (
	"fmt"

	"github.com/populse/scandex/internal/errs"
)

// newParseError builds a position-annotated ParseError (§4.6: "unknown
// syntactic forms raise ParseError").
func newParseError(pos int, format string, args ...any) *errs.Error {
	return errs.New(errs.ParseError, "at offset %d: %s", pos, fmt.Sprintf(format, args...))
}

package compiler

import (
	"fmt"

	pgquery "github.com/pganalyze/pg_query_go/v6"

	"github.com/populse/scandex/internal/errs"
)

// validatePostgresWhere round-trips a generated WHERE fragment through
// the real Postgres grammar before it is executed, the same
// belt-and-suspenders check the teacher applies to generated DDL
// before running it against a live database.
func validatePostgresWhere(frag string) error {
	stmt := fmt.Sprintf("SELECT 1 WHERE %s", frag)
	if _, err := pgquery.Parse(stmt); err != nil {
		return errs.Wrap(errs.BackendError, err, "generated filter SQL failed validation")
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Introspector answers the narrow structural questions scandex's
// Open() needs about an existing SQLite file: which of the fixed
// table names already exist, adapted from the teacher's
// sqlite_master-based table listing (the teacher's full
// PRAGMA-table_info column/index/foreign-key introspection does not
// apply to scandex's fixed schema, so only table existence survives).
type Introspector struct{}

func NewIntrospector() *Introspector { return &Introspector{} }

// TableExists reports whether name is present in the database.
func (i *Introspector) TableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	const query = `SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`
	var discard int
	err := db.QueryRowContext(ctx, query, name).Scan(&discard)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking table %q: %w", name, err)
	}
	return true, nil
}

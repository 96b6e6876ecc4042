// Package sqlite is the SQLite Storage Backend Adapter (§4.1),
// backing the common case where the durable file is a local SQLite
// database. It also accepts libsql:// DSNs, treating libsql as
// SQLite-compatible the way the teacher's driver dispatch keyed off
// a driver name string.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/internal/valuetype"
)

// Driver implements database.Backend for SQLite and libsql DSNs,
// mirroring the teacher's Driver embedding Introspector+Generator.
type Driver struct {
	*Introspector
	*Generator
	db   *sql.DB
	path string
}

// Open opens path as a SQLite database, or dials a libsql:// DSN when
// path carries that scheme. path must already point at the private
// staging copy the Staged-Commit Engine manages -- the Driver itself
// has no notion of "durable" vs "temporary".
func Open(path string) (*Driver, error) {
	driverName, dsn := "sqlite", path
	if strings.HasPrefix(path, "libsql://") || strings.HasPrefix(path, "libsql:") {
		driverName = "libsql"
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", path, err)
	}
	if driverName == "sqlite" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}
	return &Driver{
		Introspector: NewIntrospector(),
		Generator:    NewGenerator(),
		db:           db,
		path:         path,
	}, nil
}

func (d *Driver) Dialect() database.Dialect { return database.DialectSQLite }
func (d *Driver) DB() *sql.DB               { return d.db }
func (d *Driver) Path() string              { return d.path }
func (d *Driver) Close() error              { return d.db.Close() }

func (d *Driver) Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *Driver) Placeholder(int) string { return "?" }

func (d *Driver) ColumnDDLType(t valuetype.SemanticType) string {
	return d.Generator.ColumnDDLType(t)
}

func (d *Driver) SupportsDropColumn() bool {
	return d.Generator.SupportsFeature("DROP_COLUMN")
}

var _ database.Backend = (*Driver)(nil)

// Package database defines the Storage Backend Adapter contract (§4.1):
// a thin facade over a relational engine that hides the concrete SQL
// dialect and connection lifecycle while preserving typed binding.
// Concrete adapters live in database/sqlite and database/postgres.
package database

import (
	"database/sql"

	"github.com/populse/scandex/internal/valuetype"
)

// Dialect names a concrete backend, mirroring the teacher's string-typed
// Dialect enum.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Fixed table and column names (§6, §9). The reserved primary-key
// column name is frozen as "index" per the open question in spec §9.
const (
	MetadataTable    = "column"
	DocumentTable    = "document"
	InitialTable     = "initial"
	PrimaryKeyColumn = "index"
)

// Backend is the facade every concrete adapter implements. It exposes
// a live *sql.DB plus the handful of dialect-specific fragments (quote
// style, placeholder style, column DDL type) that the registry, store,
// and filter compiler need to stay dialect-agnostic everywhere else.
type Backend interface {
	// Dialect identifies the concrete backend.
	Dialect() Dialect

	// DB returns the live connection. Every query against the backend,
	// staged or committed, goes through it.
	DB() *sql.DB

	// Quote renders name as a safely-quoted SQL identifier.
	Quote(name string) string

	// Placeholder renders the parameter placeholder for position pos
	// (1-indexed): "?" for SQLite, "$1"/"$2"/... for Postgres.
	Placeholder(pos int) string

	// ColumnDDLType returns the concrete backend column type to use for
	// a column declared with semantic type t.
	ColumnDDLType(t valuetype.SemanticType) string

	// SupportsDropColumn reports whether ALTER TABLE ... DROP COLUMN is
	// available without table recreation.
	SupportsDropColumn() bool

	// Close releases the connection.
	Close() error
}

// FileBackend is implemented by backends whose durable state is a
// single on-disk file the Staged-Commit Engine can copy wholesale
// (§4.5). Postgres, which stages via a shadow-schema swap instead,
// does not implement this.
type FileBackend interface {
	Backend
	Path() string
}

// IdentPattern is the allowed character set for column names. Table
// and column names are interpolated directly into generated DDL
// (identifiers cannot be bound as query parameters in any SQL
// dialect), so declare validates against this pattern up front rather
// than attempt to escape arbitrary input. Document ids are bound as
// query parameters and are not checked against it.
const IdentPattern = `^[A-Za-z_][A-Za-z0-9_]*$`

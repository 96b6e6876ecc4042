// Package postgres is the Postgres Storage Backend Adapter (§4.1).
// Unlike SQLite there is no durable file to copy for staging, so the
// Staged-Commit Engine (internal/staging) drives this adapter through
// a shadow-schema swap instead: every connection is scoped to one
// Postgres schema, and commit reduces to an atomic schema rename.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/internal/valuetype"
)

// Adapter implements database.Backend against a Postgres connection scoped to a single schema, adapted
// from the teacher's Driver.OpenConnection dial-and-ping pattern.
type Adapter struct {
	*Generator
	db     *sql.DB
	schema string
}

// Open dials url (a postgres:// connection string) and scopes every
// subsequent statement to schemaName via search_path.
func Open(ctx context.Context, url, schemaName string) (*Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, quoteIdent(schemaName))); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema %s: %w", schemaName, err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`SET search_path TO %s`, quoteIdent(schemaName))); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting search_path to %s: %w", schemaName, err)
	}
	return &Adapter{Generator: NewGenerator(), db: db, schema: schemaName}, nil
}

func (a *Adapter) Dialect() database.Dialect { return database.DialectPostgres }
func (a *Adapter) DB() *sql.DB               { return a.db }
func (a *Adapter) Schema() string            { return a.schema }
func (a *Adapter) Close() error              { return a.db.Close() }

func (a *Adapter) Quote(name string) string { return quoteIdent(name) }

func (a *Adapter) Placeholder(pos int) string { return fmt.Sprintf("$%d", pos) }

func (a *Adapter) ColumnDDLType(t valuetype.SemanticType) string {
	return a.Generator.ColumnDDLType(t)
}

func (a *Adapter) SupportsDropColumn() bool { return true }

// SchemaExists reports whether name already exists as a Postgres
// schema. The staging engine does not call it; it runs the same query
// through its own schemaExists helper.
func (a *Adapter) SchemaExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT 1 FROM information_schema.schemata WHERE schema_name = $1`
	var discard int
	err := a.db.QueryRowContext(ctx, query, name).Scan(&discard)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking schema %s: %w", name, err)
	}
	return true, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var _ database.Backend = (*Adapter)(nil)

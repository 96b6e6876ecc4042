// Package scandex implements a typed, schema-extensible document
// store with staged/committed semantics and an expressive filter
// language. Database is the single entry point (§4.8): it owns one
// open staged session over a backend, and wires the Schema Registry,
// Document Store, Filter Compiler, and Staged-Commit Engine together.
package scandex

import (
	"context"
	"database/sql"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/database/postgres"
	"github.com/populse/scandex/database/sqlite"
	"github.com/populse/scandex/internal/errs"
	"github.com/populse/scandex/internal/filter/compiler"
	"github.com/populse/scandex/internal/filter/parser"
	"github.com/populse/scandex/internal/registry"
	"github.com/populse/scandex/internal/staging"
	"github.com/populse/scandex/internal/store"
	"github.com/populse/scandex/internal/valuetype"
)

// Column is re-exported so callers never need to import internal/registry.
type Column = registry.Column

// Row is re-exported so callers never need to import internal/store.
type Row = store.Row

// SearchClause is re-exported for the legacy compound search helpers.
type SearchClause = compiler.SearchClause

// session is the minimal contract both staging engines satisfy; it
// lets Database stay backend-agnostic after construction.
type session interface {
	Backend() database.Backend
	Commit(ctx context.Context) error
	Close() error
}

// Database is a single handle over one staged session (§4.8/§5): all
// operations are synchronous, and the handle is not safe for
// concurrent use by multiple goroutines without external
// serialization, matching the single-threaded-per-handle model.
type Database struct {
	sess           session
	reg            *registry.Registry
	st             *store.Store
	comp           *compiler.Compiler
	initialEnabled bool
}

// Open opens or creates a database at path (a local filesystem path;
// the staging engine copies and renames it as a file, so libsql:// DSNs
// are not supported here) with the initial table disabled, matching the
// (path, initial_table_enabled=false) default constructor signature.
func Open(ctx context.Context, path string) (*Database, error) {
	return OpenWithOptions(ctx, path, false)
}

// OpenWithOptions is the full constructor (§4.8): if path exists it is
// opened, otherwise created. If initialTableEnabled does not match
// whether an existing durable file already has an initial table,
// construction fails with InitialTableConflict.
func OpenWithOptions(ctx context.Context, path string, initialTableEnabled bool) (*Database, error) {
	engine, existed, err := staging.OpenSQLite(path)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "opening database")
	}
	db, err := newDatabase(ctx, engine, existed, initialTableEnabled)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return db, nil
}

// OpenPostgres is the Postgres-backed equivalent of OpenWithOptions:
// url is a postgres:// connection string and schema scopes the
// database within it (§4.1's Postgres adapter uses a schema, not a
// file, as the durable unit).
func OpenPostgres(ctx context.Context, url, schema string, initialTableEnabled bool) (*Database, error) {
	engine, existed, err := staging.OpenPostgres(ctx, url, schema)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "opening database")
	}
	db, err := newDatabase(ctx, engine, existed, initialTableEnabled)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return db, nil
}

func newDatabase(ctx context.Context, sess session, existed, initialTableEnabled bool) (*Database, error) {
	backend := sess.Backend()

	if existed {
		hadInitial, err := initialTableExists(ctx, backend)
		if err != nil {
			return nil, err
		}
		if hadInitial != initialTableEnabled {
			return nil, errs.New(errs.InitialTableConflict,
				"database's initial-table state does not match the requested configuration")
		}
	}

	reg := registry.New(backend, initialTableEnabled)
	if err := reg.Bootstrap(ctx); err != nil {
		return nil, err
	}

	st := store.New(backend, reg, initialTableEnabled)
	comp := compiler.New(backend, reg)

	return &Database{
		sess:           sess,
		reg:            reg,
		st:             st,
		comp:           comp,
		initialEnabled: initialTableEnabled,
	}, nil
}

// initialTableExists reports whether the staged copy already carries
// the initial table, i.e. whether the durable source it was copied
// from had the initial table enabled.
func initialTableExists(ctx context.Context, backend database.Backend) (bool, error) {
	switch b := backend.(type) {
	case *sqlite.Driver:
		return b.TableExists(ctx, b.DB(), database.InitialTable)
	case *postgres.Adapter:
		const query = `SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
		var discard int
		err := b.DB().QueryRowContext(ctx, query, database.InitialTable).Scan(&discard)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, errs.Wrap(errs.BackendError, err, "checking initial table")
		}
		return true, nil
	default:
		return false, errs.New(errs.BackendError, "unrecognized backend type %T", backend)
	}
}

// Close abandons the handle without committing (§5's rollback path):
// the staged temp file / schema is discarded and the durable state is
// left as of the last SaveModifications (or as before Open, if there
// was none).
func (d *Database) Close() error {
	return d.sess.Close()
}

// SaveModifications implements save_modifications (§4.5): the staged
// session is atomically promoted to the durable backend. The handle
// remains live and usable afterward.
func (d *Database) SaveModifications(ctx context.Context) error {
	return d.sess.Commit(ctx)
}

// AddColumn implements declare (§4.2). The column is marked visible;
// the other optional metadata fields (origin, unit, default_value)
// are left empty.
func (d *Database) AddColumn(ctx context.Context, name string, t valuetype.SemanticType, description string) error {
	return d.reg.Declare(ctx, registry.Column{Name: name, Type: t, Description: description, Visible: true})
}

// AddColumnWithMetadata is AddColumn but takes a fully populated
// Column, including the visible/origin/unit/default_value fields.
func (d *Database) AddColumnWithMetadata(ctx context.Context, col registry.Column) error {
	return d.reg.Declare(ctx, col)
}

// RemoveColumn implements drop (§4.2).
func (d *Database) RemoveColumn(ctx context.Context, name string) error {
	return d.reg.Drop(ctx, name)
}

// GetColumn implements get (§4.2).
func (d *Database) GetColumn(ctx context.Context, name string) (registry.Column, error) {
	return d.reg.Get(ctx, name)
}

// ListColumns implements list (§4.2).
func (d *Database) ListColumns(ctx context.Context) ([]registry.Column, error) {
	return d.reg.List(ctx)
}

// AddDocument implements add_document (§4.4).
func (d *Database) AddDocument(ctx context.Context, id string) error {
	return d.st.AddDocument(ctx, id)
}

// RemoveDocument implements remove_document (§4.4).
func (d *Database) RemoveDocument(ctx context.Context, id string) error {
	return d.st.RemoveDocument(ctx, id)
}

// GetDocument implements get_document (§4.4).
func (d *Database) GetDocument(ctx context.Context, id string) (store.Row, error) {
	return d.st.GetDocument(ctx, id)
}

// NewValue implements new_value (§4.4). initial may be nil, in which
// case (when the initial table is enabled) it defaults to current,
// per the frozen §9 open-question decision.
func (d *Database) NewValue(ctx context.Context, doc, col string, current valuetype.Value, initial *valuetype.Value) error {
	return d.st.NewValue(ctx, doc, col, current, initial)
}

// SetCurrentValue implements set_current_value (§4.4).
func (d *Database) SetCurrentValue(ctx context.Context, doc, col string, v valuetype.Value) error {
	return d.st.SetCurrentValue(ctx, doc, col, v)
}

// ResetCurrentValue implements reset_current_value (§4.4).
func (d *Database) ResetCurrentValue(ctx context.Context, doc, col string) error {
	return d.st.ResetCurrentValue(ctx, doc, col)
}

// RemoveValue implements remove_value (§4.4).
func (d *Database) RemoveValue(ctx context.Context, doc, col string) error {
	return d.st.RemoveValue(ctx, doc, col)
}

// GetCurrentValue implements get_current_value (§4.4).
func (d *Database) GetCurrentValue(ctx context.Context, doc, col string) (valuetype.Value, error) {
	return d.st.GetCurrentValue(ctx, doc, col)
}

// GetInitialValue implements get_initial_value (§4.4).
func (d *Database) GetInitialValue(ctx context.Context, doc, col string) (valuetype.Value, error) {
	return d.st.GetInitialValue(ctx, doc, col)
}

// IsValueModified implements is_value_modified (§4.4).
func (d *Database) IsValueModified(ctx context.Context, doc, col string) (bool, error) {
	return d.st.IsValueModified(ctx, doc, col)
}

// FilterDocuments implements filter_documents (§4.6/§4.7): expr is
// parsed and compiled to either a pushed-down backend query or an
// in-memory scan, whichever the expression requires.
func (d *Database) FilterDocuments(ctx context.Context, expr string) ([]string, error) {
	node, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return d.comp.Match(ctx, node)
}

// MatchSearch implements the legacy get_documents_matching_search helper.
func (d *Database) MatchSearch(ctx context.Context, text string, columns []string) ([]string, error) {
	return d.comp.MatchSearch(ctx, text, columns)
}

// MatchAdvancedSearch implements the legacy
// get_documents_matching_advanced_search helper.
func (d *Database) MatchAdvancedSearch(ctx context.Context, clauses []compiler.SearchClause) ([]string, error) {
	return d.comp.MatchAdvancedSearch(ctx, clauses)
}

// MatchColumnValueCouples implements the legacy
// get_documents_matching_column_value_couples helper.
func (d *Database) MatchColumnValueCouples(ctx context.Context, pairs map[string]valuetype.Value) ([]string, error) {
	return d.comp.MatchColumnValueCouples(ctx, pairs)
}

// ExportSchema implements the supplemented JSON schema-interchange
// export feature.
func (d *Database) ExportSchema(ctx context.Context) ([]byte, error) {
	return d.reg.Export(ctx)
}

// ImportSchema implements the supplemented JSON schema-interchange
// import feature.
func (d *Database) ImportSchema(ctx context.Context, doc []byte) error {
	return d.reg.Import(ctx, doc)
}

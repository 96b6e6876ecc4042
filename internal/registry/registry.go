package registry

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/internal/errs"
	"github.com/populse/scandex/internal/valuetype"
)

var identRe = regexp.MustCompile(database.IdentPattern)

// Registry is the Schema Registry (§4.2): it owns the metadata table
// and keeps the physical columns on the current (and initial) document
// tables in lockstep with declared columns.
type Registry struct {
	db             database.Backend
	initialEnabled bool
}

// New wraps an opened backend. initialEnabled mirrors the Database
// constructor's initial_table_enabled flag (§9): when false, the
// registry never touches the initial table.
func New(db database.Backend, initialEnabled bool) *Registry {
	return &Registry{db: db, initialEnabled: initialEnabled}
}

// Bootstrap creates the metadata table and the primary-key-only
// document (and, when enabled, initial) tables if they do not already
// exist. Called once when a Database is opened.
func (r *Registry) Bootstrap(ctx context.Context) error {
	q := r.db.Quote
	metaDDL := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			%s TEXT PRIMARY KEY,
			semantic_type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			visible INTEGER NOT NULL DEFAULT 1,
			origin TEXT NOT NULL DEFAULT '',
			unit TEXT NOT NULL DEFAULT '',
			default_value TEXT NOT NULL DEFAULT ''
		)`,
		q(database.MetadataTable), q("name"),
	)
	if _, err := r.db.DB().ExecContext(ctx, metaDDL); err != nil {
		return errs.Wrap(errs.BackendError, err, "creating metadata table")
	}

	docDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY)`,
		q(database.DocumentTable), q(database.PrimaryKeyColumn))
	if _, err := r.db.DB().ExecContext(ctx, docDDL); err != nil {
		return errs.Wrap(errs.BackendError, err, "creating document table")
	}

	if r.initialEnabled {
		initDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY)`,
			q(database.InitialTable), q(database.PrimaryKeyColumn))
		if _, err := r.db.DB().ExecContext(ctx, initDDL); err != nil {
			return errs.Wrap(errs.BackendError, err, "creating initial table")
		}
	}
	return nil
}

// Declare validates and registers a new column, then adds the typed
// physical column to the current table (and initial table, when
// enabled) in the same operation (§4.2). It is the caller's
// responsibility to run this inside a transaction alongside any data
// migration the operation also needs.
func (r *Registry) Declare(ctx context.Context, col Column) error {
	if !identRe.MatchString(col.Name) {
		return errs.New(errs.InvalidArgument, "invalid column name %q", col.Name)
	}
	if col.Name == database.PrimaryKeyColumn {
		return errs.New(errs.ReservedName, "%q is the reserved primary key column", col.Name)
	}
	if !col.Type.Valid() {
		return errs.New(errs.InvalidArgument, "unknown semantic type %q", col.Type)
	}
	if _, err := r.Get(ctx, col.Name); err == nil {
		return errs.New(errs.DuplicateColumn, "column %q already declared", col.Name)
	} else if !errs.Is(err, errs.UnknownColumn) {
		return err
	}

	ddlType := r.db.ColumnDDLType(col.Type)
	q := r.db.Quote

	alterDoc := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", q(database.DocumentTable), q(col.Name), ddlType)
	if _, err := r.db.DB().ExecContext(ctx, alterDoc); err != nil {
		return errs.Wrap(errs.BackendError, err, "adding column %q to document table", col.Name)
	}
	if r.initialEnabled {
		alterInit := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", q(database.InitialTable), q(col.Name), ddlType)
		if _, err := r.db.DB().ExecContext(ctx, alterInit); err != nil {
			return errs.Wrap(errs.BackendError, err, "adding column %q to initial table", col.Name)
		}
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s, semantic_type, description, visible, origin, unit, default_value) VALUES (%s, %s, %s, %s, %s, %s, %s)",
		q(database.MetadataTable), q("name"),
		r.db.Placeholder(1), r.db.Placeholder(2), r.db.Placeholder(3),
		r.db.Placeholder(4), r.db.Placeholder(5), r.db.Placeholder(6), r.db.Placeholder(7),
	)
	visible := 0
	if col.Visible {
		visible = 1
	}
	if _, err := r.db.DB().ExecContext(ctx, insert, col.Name, string(col.Type), col.Description, visible, col.Origin, col.Unit, col.DefaultValue); err != nil {
		return errs.Wrap(errs.BackendError, err, "inserting metadata row for %q", col.Name)
	}
	return nil
}

// Drop removes a declared column: the metadata row and the physical
// column from the current table (and initial table, when enabled).
func (r *Registry) Drop(ctx context.Context, name string) error {
	if _, err := r.Get(ctx, name); err != nil {
		return err
	}
	q := r.db.Quote

	if r.db.SupportsDropColumn() {
		alterDoc := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", q(database.DocumentTable), q(name))
		if _, err := r.db.DB().ExecContext(ctx, alterDoc); err != nil {
			return errs.Wrap(errs.BackendError, err, "dropping column %q from document table", name)
		}
		if r.initialEnabled {
			alterInit := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", q(database.InitialTable), q(name))
			if _, err := r.db.DB().ExecContext(ctx, alterInit); err != nil {
				return errs.Wrap(errs.BackendError, err, "dropping column %q from initial table", name)
			}
		}
	}

	del := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", q(database.MetadataTable), q("name"), r.db.Placeholder(1))
	if _, err := r.db.DB().ExecContext(ctx, del, name); err != nil {
		return errs.Wrap(errs.BackendError, err, "deleting metadata row for %q", name)
	}
	return nil
}

// Get looks up a declared column by name.
func (r *Registry) Get(ctx context.Context, name string) (Column, error) {
	q := r.db.Quote
	query := fmt.Sprintf(
		"SELECT semantic_type, description, visible, origin, unit, default_value FROM %s WHERE %s = %s",
		q(database.MetadataTable), q("name"), r.db.Placeholder(1),
	)
	row := r.db.DB().QueryRowContext(ctx, query, name)

	var semantic, description, origin, unit, defVal string
	var visible int
	if err := row.Scan(&semantic, &description, &visible, &origin, &unit, &defVal); err != nil {
		if err == sql.ErrNoRows {
			return Column{}, errs.New(errs.UnknownColumn, "no column named %q", name)
		}
		return Column{}, errs.Wrap(errs.BackendError, err, "reading column %q", name)
	}
	return Column{
		Name:         name,
		Type:         valuetype.SemanticType(semantic),
		Description:  description,
		Visible:      visible != 0,
		Origin:       origin,
		Unit:         unit,
		DefaultValue: defVal,
	}, nil
}

// List returns every declared column, ordered by name.
func (r *Registry) List(ctx context.Context) ([]Column, error) {
	q := r.db.Quote
	query := fmt.Sprintf(
		"SELECT %s, semantic_type, description, visible, origin, unit, default_value FROM %s ORDER BY %s",
		q("name"), q(database.MetadataTable), q("name"),
	)
	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "listing columns")
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, semantic, description, origin, unit, defVal string
		var visible int
		if err := rows.Scan(&name, &semantic, &description, &visible, &origin, &unit, &defVal); err != nil {
			return nil, errs.Wrap(errs.BackendError, err, "scanning column row")
		}
		cols = append(cols, Column{
			Name:         name,
			Type:         valuetype.SemanticType(semantic),
			Description:  description,
			Visible:      visible != 0,
			Origin:       origin,
			Unit:         unit,
			DefaultValue: defVal,
		})
	}
	return cols, rows.Err()
}

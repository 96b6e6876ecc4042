package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/internal/errs"
	"github.com/populse/scandex/internal/registry"
	"github.com/populse/scandex/internal/valuetype"
)

// columnLookup is the slice of Registry the store needs: resolving a
// column name to its declared type. Defined as an interface (rather
// than taking *registry.Registry directly) so tests can stub it.
type columnLookup interface {
	Get(ctx context.Context, name string) (registry.Column, error)
	List(ctx context.Context) ([]registry.Column, error)
}

// Store is the Document Store: CRUD over the current/initial cell
// tables, scoped to one backend connection.
type Store struct {
	db             database.Backend
	cols           columnLookup
	initialEnabled bool
}

// New wraps an opened backend and its column registry.
func New(db database.Backend, cols columnLookup, initialEnabled bool) *Store {
	return &Store{db: db, cols: cols, initialEnabled: initialEnabled}
}

// AddDocument inserts a new, all-null document into the current table
// (and the initial table, when enabled). Rejects a duplicate primary
// key (§4.4 edge case).
func (s *Store) AddDocument(ctx context.Context, id string) error {
	if id == "" {
		return errs.New(errs.InvalidArgument, "document id must not be empty")
	}
	q := s.db.Quote
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q(database.DocumentTable), q(database.PrimaryKeyColumn), s.db.Placeholder(1))
	if _, err := s.db.DB().ExecContext(ctx, insert, id); err != nil {
		return errs.Wrap(errs.DuplicateDocument, err, "document %q already exists", id)
	}
	if s.initialEnabled {
		insertInit := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			q(database.InitialTable), q(database.PrimaryKeyColumn), s.db.Placeholder(1))
		if _, err := s.db.DB().ExecContext(ctx, insertInit, id); err != nil {
			return errs.Wrap(errs.BackendError, err, "inserting initial row for %q", id)
		}
	}
	return nil
}

// RemoveDocument deletes a document from both tables.
func (s *Store) RemoveDocument(ctx context.Context, id string) error {
	if err := s.requireDocument(ctx, id); err != nil {
		return err
	}
	q := s.db.Quote
	del := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", q(database.DocumentTable), q(database.PrimaryKeyColumn), s.db.Placeholder(1))
	if _, err := s.db.DB().ExecContext(ctx, del, id); err != nil {
		return errs.Wrap(errs.BackendError, err, "removing document %q", id)
	}
	if s.initialEnabled {
		delInit := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", q(database.InitialTable), q(database.PrimaryKeyColumn), s.db.Placeholder(1))
		if _, err := s.db.DB().ExecContext(ctx, delInit, id); err != nil {
			return errs.Wrap(errs.BackendError, err, "removing initial row for %q", id)
		}
	}
	return nil
}

// GetDocument reads every declared column's current value for id.
func (s *Store) GetDocument(ctx context.Context, id string) (Row, error) {
	cols, err := s.cols.List(ctx)
	if err != nil {
		return Row{}, err
	}
	row := newRow(id)
	if len(cols) == 0 {
		if err := s.requireDocument(ctx, id); err != nil {
			return Row{}, err
		}
		return row, nil
	}

	q := s.db.Quote
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = q(c.Name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		strings.Join(names, ", "), q(database.DocumentTable), q(database.PrimaryKeyColumn), s.db.Placeholder(1))

	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = new(any)
	}
	sqlRow := s.db.DB().QueryRowContext(ctx, query, id)
	if err := sqlRow.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return Row{}, errs.New(errs.UnknownDocument, "no document %q", id)
		}
		return Row{}, errs.Wrap(errs.BackendError, err, "reading document %q", id)
	}
	for i, c := range cols {
		raw := *(dest[i].(*any))
		v, err := valuetype.Decode(c.Type, raw)
		if err != nil {
			return Row{}, fmt.Errorf("decoding column %q: %w", c.Name, err)
		}
		row.cells[c.Name] = v
	}
	return row, nil
}

// requireDocument verifies id exists in the current table.
func (s *Store) requireDocument(ctx context.Context, id string) error {
	q := s.db.Quote
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = %s", q(database.DocumentTable), q(database.PrimaryKeyColumn), s.db.Placeholder(1))
	var discard int
	err := s.db.DB().QueryRowContext(ctx, query, id).Scan(&discard)
	if err == sql.ErrNoRows {
		return errs.New(errs.UnknownDocument, "no document %q", id)
	}
	if err != nil {
		return errs.Wrap(errs.BackendError, err, "checking document %q", id)
	}
	return nil
}

// resolveColumn validates that name is declared and returns its type.
func (s *Store) resolveColumn(ctx context.Context, name string) (registry.Column, error) {
	return s.cols.Get(ctx, name)
}

// getCell reads the raw current or initial cell for (id, column).
func (s *Store) getCell(ctx context.Context, table, id, column string, t valuetype.SemanticType) (valuetype.Value, error) {
	q := s.db.Quote
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", q(column), q(table), q(database.PrimaryKeyColumn), s.db.Placeholder(1))
	var raw any
	if err := s.db.DB().QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return valuetype.Value{}, errs.New(errs.UnknownDocument, "no document %q", id)
		}
		return valuetype.Value{}, errs.Wrap(errs.BackendError, err, "reading %s.%s for %q", table, column, id)
	}
	return valuetype.Decode(t, raw)
}

// setCell writes a raw value into (id, column) of table.
func (s *Store) setCell(ctx context.Context, table, id, column string, t valuetype.SemanticType, v valuetype.Value) error {
	enc, err := valuetype.Encode(t, v)
	if err != nil {
		return err
	}
	q := s.db.Quote
	update := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
		q(table), q(column), s.db.Placeholder(1), q(database.PrimaryKeyColumn), s.db.Placeholder(2))
	res, err := s.db.DB().ExecContext(ctx, update, enc, id)
	if err != nil {
		return errs.Wrap(errs.BackendError, err, "writing %s.%s for %q", table, column, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Wrap(errs.BackendError, err, "checking write result for %q", id)
	}
	if n == 0 {
		return errs.New(errs.UnknownDocument, "no document %q", id)
	}
	return nil
}

// GetCurrentValue reads a document's current value for column.
func (s *Store) GetCurrentValue(ctx context.Context, id, column string) (valuetype.Value, error) {
	col, err := s.resolveColumn(ctx, column)
	if err != nil {
		return valuetype.Value{}, err
	}
	return s.getCell(ctx, database.DocumentTable, id, column, col.Type)
}

// GetInitialValue reads a document's initial value for column. Fails
// with InitialDisabled if the store was opened without the initial
// table (§4.4 edge case).
func (s *Store) GetInitialValue(ctx context.Context, id, column string) (valuetype.Value, error) {
	if !s.initialEnabled {
		return valuetype.Value{}, errs.New(errs.InitialDisabled, "initial table is not enabled")
	}
	col, err := s.resolveColumn(ctx, column)
	if err != nil {
		return valuetype.Value{}, err
	}
	return s.getCell(ctx, database.InitialTable, id, column, col.Type)
}

// NewValue sets the current (and, per the frozen open-question
// decision, initial when omitted) value of a cell for the first time.
// Fails with ValueAlreadySet if the cell is already non-null, since
// new_value is a first-write operation, not an upsert.
func (s *Store) NewValue(ctx context.Context, id, column string, current valuetype.Value, initial *valuetype.Value) error {
	col, err := s.resolveColumn(ctx, column)
	if err != nil {
		return err
	}
	if initial != nil && !s.initialEnabled {
		return errs.New(errs.InitialDisabled, "initial table is not enabled")
	}
	existing, err := s.getCell(ctx, database.DocumentTable, id, column, col.Type)
	if err != nil {
		return err
	}
	if !existing.Null {
		return errs.New(errs.ValueAlreadySet, "column %q already has a value for %q", column, id)
	}
	if err := valuetype.Validate(col.Type, current); err != nil {
		return err
	}
	// Open question (§9), frozen: when initial is omitted, it defaults
	// to the current value rather than staying null.
	init := current
	if initial != nil {
		init = *initial
	}
	if s.initialEnabled {
		if err := valuetype.Validate(col.Type, init); err != nil {
			return err
		}
	}
	// Both values are validated before either is written, so a
	// TypeMismatch on either leaves the cell untouched (§7).
	if err := s.setCell(ctx, database.DocumentTable, id, column, col.Type, current); err != nil {
		return err
	}
	if !s.initialEnabled {
		return nil
	}
	return s.setCell(ctx, database.InitialTable, id, column, col.Type, init)
}

// SetCurrentValue overwrites the current value of a cell, null or not;
// the initial cell is left untouched.
func (s *Store) SetCurrentValue(ctx context.Context, id, column string, v valuetype.Value) error {
	col, err := s.resolveColumn(ctx, column)
	if err != nil {
		return err
	}
	if err := valuetype.Validate(col.Type, v); err != nil {
		return err
	}
	return s.setCell(ctx, database.DocumentTable, id, column, col.Type, v)
}

// ResetCurrentValue overwrites the current value with the initial
// value, discarding any staged edit for that single cell.
func (s *Store) ResetCurrentValue(ctx context.Context, id, column string) error {
	if !s.initialEnabled {
		return errs.New(errs.InitialDisabled, "initial table is not enabled")
	}
	col, err := s.resolveColumn(ctx, column)
	if err != nil {
		return err
	}
	init, err := s.getCell(ctx, database.InitialTable, id, column, col.Type)
	if err != nil {
		return err
	}
	return s.setCell(ctx, database.DocumentTable, id, column, col.Type, init)
}

// RemoveValue sets a cell back to null in the current table (and the
// initial table, when enabled).
func (s *Store) RemoveValue(ctx context.Context, id, column string) error {
	col, err := s.resolveColumn(ctx, column)
	if err != nil {
		return err
	}
	null := valuetype.NullValue(col.Type)
	if err := s.setCell(ctx, database.DocumentTable, id, column, col.Type, null); err != nil {
		return err
	}
	if !s.initialEnabled {
		return nil
	}
	return s.setCell(ctx, database.InitialTable, id, column, col.Type, null)
}

// IsValueModified reports whether a cell's current value differs from
// its initial value. Per §4.4 ("false when either cell is absent or
// inputs invalid"), an unknown document/column or a disabled initial
// table is not an error here -- it simply means there is nothing to
// compare, so the answer is false.
func (s *Store) IsValueModified(ctx context.Context, id, column string) (bool, error) {
	if !s.initialEnabled {
		return false, nil
	}
	current, err := s.GetCurrentValue(ctx, id, column)
	if err != nil {
		if isAbsentInput(err) {
			return false, nil
		}
		return false, err
	}
	initial, err := s.GetInitialValue(ctx, id, column)
	if err != nil {
		if isAbsentInput(err) {
			return false, nil
		}
		return false, err
	}
	return !current.Equal(initial), nil
}

// isAbsentInput reports whether err reflects a missing referent or an
// invalid input rather than a genuine backend failure.
func isAbsentInput(err error) bool {
	return errs.Is(err, errs.UnknownDocument) ||
		errs.Is(err, errs.UnknownColumn) ||
		errs.Is(err, errs.InvalidArgument) ||
		errs.Is(err, errs.InitialDisabled)
}

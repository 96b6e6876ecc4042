package store

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/internal/errs"
	"github.com/populse/scandex/internal/registry"
	"github.com/populse/scandex/internal/valuetype"
)

type testBackend struct{ db *sql.DB }

func (b *testBackend) Dialect() database.Dialect { return database.DialectSQLite }
func (b *testBackend) DB() *sql.DB               { return b.db }
func (b *testBackend) Quote(name string) string  { return `"` + name + `"` }
func (b *testBackend) Placeholder(int) string    { return "?" }
func (b *testBackend) SupportsDropColumn() bool  { return true }
func (b *testBackend) Close() error              { return b.db.Close() }
func (b *testBackend) ColumnDDLType(t valuetype.SemanticType) string {
	switch t {
	case valuetype.Integer, valuetype.Boolean:
		return "INTEGER"
	case valuetype.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

func newTestStore(t *testing.T, initialEnabled bool) (*Store, *registry.Registry, *testBackend) {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	be := &testBackend{db: sqlDB}
	reg := registry.New(be, initialEnabled)
	if err := reg.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return New(be, reg, initialEnabled), reg, be
}

func TestStore_AddGetRemoveDocument(t *testing.T) {
	ctx := context.Background()
	s, reg, be := newTestStore(t, true)
	defer be.Close()

	if err := reg.Declare(ctx, registry.Column{Name: "name", Type: valuetype.String}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := s.AddDocument(ctx, "doc1"); err != nil {
		t.Fatalf("add document: %v", err)
	}
	if err := s.AddDocument(ctx, "doc1"); !errs.Is(err, errs.DuplicateDocument) {
		t.Fatalf("expected DuplicateDocument, got %v", err)
	}

	row, err := s.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	v, ok := row.Get("name")
	if !ok || !v.Null {
		t.Fatalf("expected null name cell, got %+v ok=%v", v, ok)
	}

	if err := s.RemoveDocument(ctx, "doc1"); err != nil {
		t.Fatalf("remove document: %v", err)
	}
	if _, err := s.GetDocument(ctx, "doc1"); !errs.Is(err, errs.UnknownDocument) {
		t.Fatalf("expected UnknownDocument after remove, got %v", err)
	}
}

func TestStore_NewValueThenSetThenReset(t *testing.T) {
	ctx := context.Background()
	s, reg, be := newTestStore(t, true)
	defer be.Close()

	if err := reg.Declare(ctx, registry.Column{Name: "age", Type: valuetype.Integer}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := s.AddDocument(ctx, "doc1"); err != nil {
		t.Fatalf("add document: %v", err)
	}

	if err := s.NewValue(ctx, "doc1", "age", valuetype.NewInt(10), nil); err != nil {
		t.Fatalf("new value: %v", err)
	}
	if err := s.NewValue(ctx, "doc1", "age", valuetype.NewInt(20), nil); !errs.Is(err, errs.ValueAlreadySet) {
		t.Fatalf("expected ValueAlreadySet, got %v", err)
	}

	initial, err := s.GetInitialValue(ctx, "doc1", "age")
	if err != nil {
		t.Fatalf("get initial: %v", err)
	}
	if initial.Int != 10 {
		t.Fatalf("expected initial to default to current (10), got %v", initial)
	}

	if err := s.SetCurrentValue(ctx, "doc1", "age", valuetype.NewInt(99)); err != nil {
		t.Fatalf("set current: %v", err)
	}
	modified, err := s.IsValueModified(ctx, "doc1", "age")
	if err != nil {
		t.Fatalf("is modified: %v", err)
	}
	if !modified {
		t.Fatal("expected modified=true after set_current_value")
	}

	if err := s.ResetCurrentValue(ctx, "doc1", "age"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	current, err := s.GetCurrentValue(ctx, "doc1", "age")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.Int != 10 {
		t.Fatalf("expected reset to restore initial value 10, got %v", current)
	}
}

func TestStore_RemoveValue(t *testing.T) {
	ctx := context.Background()
	s, reg, be := newTestStore(t, true)
	defer be.Close()

	if err := reg.Declare(ctx, registry.Column{Name: "age", Type: valuetype.Integer}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := s.AddDocument(ctx, "doc1"); err != nil {
		t.Fatalf("add document: %v", err)
	}
	if err := s.NewValue(ctx, "doc1", "age", valuetype.NewInt(10), nil); err != nil {
		t.Fatalf("new value: %v", err)
	}
	if err := s.RemoveValue(ctx, "doc1", "age"); err != nil {
		t.Fatalf("remove value: %v", err)
	}
	v, err := s.GetCurrentValue(ctx, "doc1", "age")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if !v.Null {
		t.Fatalf("expected null after remove_value, got %v", v)
	}
}

func TestStore_InitialDisabled(t *testing.T) {
	ctx := context.Background()
	s, reg, be := newTestStore(t, false)
	defer be.Close()

	if err := reg.Declare(ctx, registry.Column{Name: "age", Type: valuetype.Integer}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := s.AddDocument(ctx, "doc1"); err != nil {
		t.Fatalf("add document: %v", err)
	}
	if _, err := s.GetInitialValue(ctx, "doc1", "age"); !errs.Is(err, errs.InitialDisabled) {
		t.Fatalf("expected InitialDisabled, got %v", err)
	}
	modified, err := s.IsValueModified(ctx, "doc1", "age")
	if err != nil {
		t.Fatalf("expected is_value_modified to return false, not an error, got %v", err)
	}
	if modified {
		t.Fatal("expected modified=false when the initial table is disabled")
	}

	initial := valuetype.NewInt(5)
	if err := s.NewValue(ctx, "doc1", "age", valuetype.NewInt(10), &initial); !errs.Is(err, errs.InitialDisabled) {
		t.Fatalf("expected InitialDisabled when passing an explicit initial with the initial table off, got %v", err)
	}
	current, err := s.GetCurrentValue(ctx, "doc1", "age")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if !current.Null {
		t.Fatalf("expected no partial write after InitialDisabled rejection, got %v", current)
	}
}

func TestStore_IsValueModifiedFalseForUnknownReferents(t *testing.T) {
	ctx := context.Background()
	s, reg, be := newTestStore(t, true)
	defer be.Close()

	if err := reg.Declare(ctx, registry.Column{Name: "age", Type: valuetype.Integer}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := s.AddDocument(ctx, "doc1"); err != nil {
		t.Fatalf("add document: %v", err)
	}

	if modified, err := s.IsValueModified(ctx, "nosuchdoc", "age"); err != nil || modified {
		t.Fatalf("expected (false, nil) for unknown document, got (%v, %v)", modified, err)
	}
	if modified, err := s.IsValueModified(ctx, "doc1", "nosuchcol"); err != nil || modified {
		t.Fatalf("expected (false, nil) for unknown column, got (%v, %v)", modified, err)
	}
}

func TestStore_NewValueTypeMismatchLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()
	s, reg, be := newTestStore(t, true)
	defer be.Close()

	if err := reg.Declare(ctx, registry.Column{Name: "bandwidth", Type: valuetype.Integer}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := s.AddDocument(ctx, "doc1"); err != nil {
		t.Fatalf("add document: %v", err)
	}

	// spec.md §8 seed scenario S3: current is a legal Integer, but the
	// initial argument (35.5) is not. Neither cell should be written.
	badInitial := valuetype.NewFloat(35.5)
	if err := s.NewValue(ctx, "doc1", "bandwidth", valuetype.NewInt(35), &badInitial); !errs.Is(err, errs.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}

	current, err := s.GetCurrentValue(ctx, "doc1", "bandwidth")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if !current.Null {
		t.Fatalf("expected current to remain null after rejected new_value, got %v", current)
	}
}

package scandex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/populse/scandex/internal/errs"
	"github.com/populse/scandex/internal/valuetype"
)

func openTestDatabase(t *testing.T, initial bool) (*Database, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scandex.db")
	db, err := OpenWithOptions(context.Background(), path, initial)
	if err != nil {
		t.Fatalf("OpenWithOptions: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestAddColumnAndDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDatabase(t, true)

	if err := db.AddColumn(ctx, "PatientName", valuetype.String, "subject identifier"); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := db.AddDocument(ctx, "d1"); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	if err := db.NewValue(ctx, "d1", "PatientName", valuetype.NewString("alice"), nil); err != nil {
		t.Fatalf("NewValue: %v", err)
	}

	current, err := db.GetCurrentValue(ctx, "d1", "PatientName")
	if err != nil {
		t.Fatalf("GetCurrentValue: %v", err)
	}
	if current.String() != "alice" {
		t.Errorf("GetCurrentValue = %q, want alice", current.String())
	}

	initial, err := db.GetInitialValue(ctx, "d1", "PatientName")
	if err != nil {
		t.Fatalf("GetInitialValue: %v", err)
	}
	if !initial.Equal(current) {
		t.Errorf("expected initial to default to current when omitted, got %q vs %q", initial.String(), current.String())
	}

	if err := db.SetCurrentValue(ctx, "d1", "PatientName", valuetype.NewString("bob")); err != nil {
		t.Fatalf("SetCurrentValue: %v", err)
	}
	modified, err := db.IsValueModified(ctx, "d1", "PatientName")
	if err != nil {
		t.Fatalf("IsValueModified: %v", err)
	}
	if !modified {
		t.Error("expected cell to be reported modified after SetCurrentValue")
	}

	if err := db.ResetCurrentValue(ctx, "d1", "PatientName"); err != nil {
		t.Fatalf("ResetCurrentValue: %v", err)
	}
	reset, err := db.GetCurrentValue(ctx, "d1", "PatientName")
	if err != nil {
		t.Fatalf("GetCurrentValue after reset: %v", err)
	}
	if reset.String() != "alice" {
		t.Errorf("expected reset value alice, got %q", reset.String())
	}

	if err := db.SaveModifications(ctx); err != nil {
		t.Fatalf("SaveModifications: %v", err)
	}
}

func TestNewValueRejectsAlreadySetCell(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDatabase(t, false)

	if err := db.AddColumn(ctx, "Count", valuetype.Integer, ""); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := db.AddDocument(ctx, "d1"); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if err := db.NewValue(ctx, "d1", "Count", valuetype.NewInt(1), nil); err != nil {
		t.Fatalf("NewValue: %v", err)
	}
	err := db.NewValue(ctx, "d1", "Count", valuetype.NewInt(2), nil)
	if !errs.Is(err, errs.ValueAlreadySet) {
		t.Fatalf("expected ValueAlreadySet, got %v", err)
	}
}

func TestInitialDisabledRejectsInitialOperations(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDatabase(t, false)

	if err := db.AddColumn(ctx, "Count", valuetype.Integer, ""); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := db.AddDocument(ctx, "d1"); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	_, err := db.GetInitialValue(ctx, "d1", "Count")
	if !errs.Is(err, errs.InitialDisabled) {
		t.Fatalf("expected InitialDisabled, got %v", err)
	}
}

func TestReopenWithMismatchedInitialTableFails(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scandex.db")

	db, err := OpenWithOptions(ctx, path, true)
	if err != nil {
		t.Fatalf("OpenWithOptions: %v", err)
	}
	if err := db.SaveModifications(ctx); err != nil {
		t.Fatalf("SaveModifications: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err = OpenWithOptions(ctx, path, false)
	if !errs.Is(err, errs.InitialTableConflict) {
		t.Fatalf("expected InitialTableConflict, got %v", err)
	}
}

func TestFilterDocumentsMatchesExpression(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDatabase(t, false)

	if err := db.AddColumn(ctx, "format", valuetype.String, ""); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := db.AddDocument(ctx, "d1"); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if err := db.AddDocument(ctx, "d2"); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if err := db.NewValue(ctx, "d1", "format", valuetype.NewString("NIFTI"), nil); err != nil {
		t.Fatalf("NewValue d1: %v", err)
	}
	if err := db.NewValue(ctx, "d2", "format", valuetype.NewString("DICOM"), nil); err != nil {
		t.Fatalf("NewValue d2: %v", err)
	}

	ids, err := db.FilterDocuments(ctx, `format == "NIFTI"`)
	if err != nil {
		t.Fatalf("FilterDocuments: %v", err)
	}
	if len(ids) != 1 || ids[0] != "d1" {
		t.Fatalf("FilterDocuments = %v, want [d1]", ids)
	}
}

func TestSchemaExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _ := openTestDatabase(t, false)
	if err := src.AddColumn(ctx, "format", valuetype.String, "file format"); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}

	doc, err := src.ExportSchema(ctx)
	if err != nil {
		t.Fatalf("ExportSchema: %v", err)
	}

	dst, _ := openTestDatabase(t, false)
	if err := dst.ImportSchema(ctx, doc); err != nil {
		t.Fatalf("ImportSchema: %v", err)
	}

	col, err := dst.GetColumn(ctx, "format")
	if err != nil {
		t.Fatalf("GetColumn: %v", err)
	}
	if col.Type != valuetype.String || col.Description != "file format" {
		t.Errorf("unexpected imported column: %+v", col)
	}
}

func TestCloseWithoutCommitDiscardsChanges(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scandex.db")

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.SaveModifications(ctx); err != nil {
		t.Fatalf("initial SaveModifications: %v", err)
	}
	if err := db.AddColumn(ctx, "Transient", valuetype.Integer, ""); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	_, err = reopened.GetColumn(ctx, "Transient")
	if !errs.Is(err, errs.UnknownColumn) {
		t.Fatalf("expected uncommitted column to be discarded, got %v", err)
	}
}

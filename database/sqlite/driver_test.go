package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/populse/scandex/internal/valuetype"
)

func openTestDriver(t *testing.T) *Driver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scandex.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestOpenCreatesUsableConnection(t *testing.T) {
	d := openTestDriver(t)
	if d.Dialect() != "sqlite" {
		t.Errorf("Dialect() = %q, want sqlite", d.Dialect())
	}
	if err := d.DB().Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestTableExists(t *testing.T) {
	d := openTestDriver(t)
	ctx := context.Background()

	exists, err := d.TableExists(ctx, d.DB(), "document")
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if exists {
		t.Fatal("expected document table to not exist yet")
	}

	if _, err := d.DB().ExecContext(ctx, `CREATE TABLE document ("index" TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	exists, err = d.TableExists(ctx, d.DB(), "document")
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if !exists {
		t.Fatal("expected document table to exist after creation")
	}
}

func TestQuoteEscapesDoubleQuotes(t *testing.T) {
	d := openTestDriver(t)
	got := d.Quote(`weird"name`)
	want := `"weird""name"`
	if got != want {
		t.Errorf("Quote() = %q, want %q", got, want)
	}
}

func TestPlaceholderIsPositionIndependent(t *testing.T) {
	d := openTestDriver(t)
	if d.Placeholder(1) != "?" || d.Placeholder(7) != "?" {
		t.Errorf("expected ? regardless of position, got %q / %q", d.Placeholder(1), d.Placeholder(7))
	}
}

func TestColumnDDLType(t *testing.T) {
	d := openTestDriver(t)
	tests := []struct {
		typ  valuetype.SemanticType
		want string
	}{
		{valuetype.Boolean, "INTEGER"},
		{valuetype.Integer, "INTEGER"},
		{valuetype.Float, "REAL"},
		{valuetype.String, "TEXT"},
		{valuetype.Date, "TEXT"},
		{valuetype.ListOf(valuetype.Integer), "TEXT"},
	}
	for _, tt := range tests {
		if got := d.ColumnDDLType(tt.typ); got != tt.want {
			t.Errorf("ColumnDDLType(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestSupportsDropColumn(t *testing.T) {
	d := openTestDriver(t)
	if !d.SupportsDropColumn() {
		t.Error("expected SQLite driver to support DROP COLUMN")
	}
}

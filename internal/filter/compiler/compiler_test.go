package compiler

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/internal/filter/parser"
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

func setup(t *testing.T) (*Compiler, *registry.Registry, *testBackend) {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	be := &testBackend{db: sqlDB}
	reg := registry.New(be, false)
	ctx := context.Background()
	if err := reg.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	for _, col := range []registry.Column{
		{Name: "age", Type: valuetype.Integer},
		{Name: "name", Type: valuetype.String},
		{Name: "tags", Type: valuetype.ListString},
	} {
		if err := reg.Declare(ctx, col); err != nil {
			t.Fatalf("declare %s: %v", col.Name, err)
		}
	}

	insert := `INSERT INTO "document" ("index", "age", "name", "tags") VALUES (?, ?, ?, ?)`
	rows := []struct {
		id, name string
		age      int
		tags     string
	}{
		{"d1", "alice", 30, "red\x1fblue"},
		{"d2", "bob", 17, "green"},
		{"d3", "carol", 45, "\x00EMPTY\x00"},
	}
	for _, r := range rows {
		if _, err := sqlDB.ExecContext(ctx, insert, r.id, r.age, r.name, r.tags); err != nil {
			t.Fatalf("inserting %s: %v", r.id, err)
		}
	}
	return New(be, reg), reg, be
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func TestCompiler_ScalarComparisonPushesToSQL(t *testing.T) {
	c, _, be := setup(t)
	defer be.Close()
	ctx := context.Background()

	expr, err := parser.Parse(`age >= 18`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ids, err := c.Match(ctx, expr)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	want := []string{"d1", "d3"}
	if got := sorted(ids); !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompiler_TypeMismatchYieldsNoMatches(t *testing.T) {
	c, _, be := setup(t)
	defer be.Close()
	ctx := context.Background()

	expr, err := parser.Parse(`age == "30"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ids, err := c.Match(ctx, expr)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no matches for type-mismatched comparison, got %v", ids)
	}
}

func TestCompiler_UnknownColumnYieldsEmptyResult(t *testing.T) {
	c, _, be := setup(t)
	defer be.Close()
	ctx := context.Background()

	expr, err := parser.Parse(`nope == 1`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ids, err := c.Match(ctx, expr)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty result for unknown column, got %v", ids)
	}
}

func TestCompiler_ListContainsUsesScan(t *testing.T) {
	c, _, be := setup(t)
	defer be.Close()
	ctx := context.Background()

	expr, err := parser.Parse(`tags CONTAINS "red"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ids, err := c.Match(ctx, expr)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got := sorted(ids); !equalSlices(got, []string{"d1"}) {
		t.Fatalf("got %v, want [d1]", got)
	}
}

func TestCompiler_AndOr(t *testing.T) {
	c, _, be := setup(t)
	defer be.Close()
	ctx := context.Background()

	expr, err := parser.Parse(`name == "alice" OR name == "bob"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ids, err := c.Match(ctx, expr)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got := sorted(ids); !equalSlices(got, []string{"d1", "d2"}) {
		t.Fatalf("got %v, want [d1 d2]", got)
	}
}

func TestCompiler_LegacySearch(t *testing.T) {
	c, _, be := setup(t)
	defer be.Close()
	ctx := context.Background()

	ids, err := c.MatchSearch(ctx, "ali", []string{"name"})
	if err != nil {
		t.Fatalf("match search: %v", err)
	}
	if got := sorted(ids); !equalSlices(got, []string{"d1"}) {
		t.Fatalf("got %v, want [d1]", got)
	}
}

func TestCompiler_LegacyColumnValueCouples(t *testing.T) {
	c, _, be := setup(t)
	defer be.Close()
	ctx := context.Background()

	ids, err := c.MatchColumnValueCouples(ctx, map[string]valuetype.Value{
		"name": valuetype.NewString("carol"),
	})
	if err != nil {
		t.Fatalf("match couples: %v", err)
	}
	if got := sorted(ids); !equalSlices(got, []string{"d3"}) {
		t.Fatalf("got %v, want [d3]", got)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

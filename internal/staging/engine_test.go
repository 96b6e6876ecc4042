package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenSQLiteFreshFile(t *testing.T) {
	durable := filepath.Join(t.TempDir(), "scandex.db")

	engine, existed, err := OpenSQLite(durable)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer engine.Close()

	if existed {
		t.Fatalf("existed = true for a path that had never been committed")
	}
	if _, err := os.Stat(durable); !os.IsNotExist(err) {
		t.Fatalf("durable file should not exist before the first commit")
	}
}

func TestCommitCreatesDurableFile(t *testing.T) {
	durable := filepath.Join(t.TempDir(), "scandex.db")

	engine, _, err := OpenSQLite(durable)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Backend().DB().Exec(
		`CREATE TABLE probe (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("creating probe table: %v", err)
	}

	if err := engine.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := os.Stat(durable); err != nil {
		t.Fatalf("durable file missing after commit: %v", err)
	}
}

func TestCloseWithoutCommitLeavesDurableUntouched(t *testing.T) {
	durable := filepath.Join(t.TempDir(), "scandex.db")

	first, _, err := OpenSQLite(durable)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := first.Backend().DB().Exec(`CREATE TABLE probe (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("creating probe table: %v", err)
	}
	if err := first.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	second, existed, err := OpenSQLite(durable)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	if !existed {
		t.Fatalf("existed = false after a prior commit")
	}
	if _, err := second.Backend().DB().Exec(`CREATE TABLE never_committed (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("mutating staged copy: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	first.Close()

	third, _, err := OpenSQLite(durable)
	if err != nil {
		t.Fatalf("reopening after discard: %v", err)
	}
	defer third.Close()

	var name string
	row := third.Backend().DB().QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'never_committed'`)
	if err := row.Scan(&name); err == nil {
		t.Fatalf("uncommitted table survived a discarded handle")
	}
}

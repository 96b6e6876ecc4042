// Package staging implements the Staged-Commit Engine (§4.5): on
// open, a private copy of the durable file is made and every
// operation runs against that copy; save_modifications atomically
// replaces the durable file with it. Abandoning a handle without
// committing is the documented way to roll back (§5).
package staging

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/database/sqlite"
)

// SQLiteEngine manages the private temporary-file copy for a local
// SQLite durable file, adapted from internal/shadow/reservation.go's
// atomic write-to-temp-then-rename pattern -- here applied to the
// entire database file rather than a small JSON reservation record.
type SQLiteEngine struct {
	durablePath string
	tempPath    string
	backend     *sqlite.Driver
}

// OpenSQLite copies durablePath to a private temporary file and opens
// the backend against the copy. When durablePath does not exist, the
// backend opens a fresh temporary file and the durable file is only
// created by the first Commit. existed reports whether the durable file
// was already present, which the caller (the root Database
// constructor) needs to enforce the InitialTableConflict rule (§4.8).
func OpenSQLite(durablePath string) (engine *SQLiteEngine, existed bool, err error) {
	tempPath := fmt.Sprintf("%s.%s.scandex-tmp", durablePath, uuid.NewString())

	existed = true
	if _, statErr := os.Stat(durablePath); os.IsNotExist(statErr) {
		existed = false
	} else if statErr != nil {
		return nil, false, fmt.Errorf("checking durable file %s: %w", durablePath, statErr)
	}

	if existed {
		if err := copyFile(durablePath, tempPath); err != nil {
			return nil, false, fmt.Errorf("staging copy of %s: %w", durablePath, err)
		}
	}

	backend, err := sqlite.Open(tempPath)
	if err != nil {
		os.Remove(tempPath)
		return nil, false, fmt.Errorf("opening staged copy: %w", err)
	}
	return &SQLiteEngine{durablePath: durablePath, tempPath: tempPath, backend: backend}, existed, nil
}

// Backend returns the live backend operating against the staged copy.
func (e *SQLiteEngine) Backend() database.Backend { return e.backend }

// Commit implements save_modifications: it flushes the staged copy
// and atomically replaces the durable file with it. The handle stays
// live against the same staged copy afterward, so further mutations
// and a later Commit are both well-defined.
func (e *SQLiteEngine) Commit(ctx context.Context) error {
	// Best-effort checkpoint; harmless if the connection is not in WAL
	// mode (the common case for a freshly created file).
	_, _ = e.backend.DB().ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")

	swap := e.durablePath + ".scandex-commit-tmp"
	if err := copyFile(e.tempPath, swap); err != nil {
		return fmt.Errorf("preparing commit: %w", err)
	}
	if err := os.Rename(swap, e.durablePath); err != nil {
		os.Remove(swap)
		return fmt.Errorf("committing %s: %w", e.durablePath, err)
	}
	return nil
}

// Close releases the staged copy. Calling it before Commit is the
// documented rollback: the durable file is left exactly as it was.
func (e *SQLiteEngine) Close() error {
	err := e.backend.Close()
	if rmErr := os.Remove(e.tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
		if err == nil {
			err = rmErr
		}
	}
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

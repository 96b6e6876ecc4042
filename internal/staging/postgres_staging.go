package staging

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/populse/scandex/database"
	"github.com/populse/scandex/database/postgres"
)

// PostgresEngine drives the Postgres adapter through a shadow-schema
// swap instead of a file copy: every mutation lands in a private
// schema, and commit is an atomic pair of ALTER SCHEMA renames.
type PostgresEngine struct {
	url           string
	durableSchema string
	stagingSchema string
	adapter       *postgres.Adapter
}

// OpenPostgres clones durableSchema (if it exists) into a private
// staging schema and returns an adapter scoped to the clone. existed
// mirrors OpenSQLite's return value and feeds the same
// InitialTableConflict check in the root Database constructor.
func OpenPostgres(ctx context.Context, url, durableSchema string) (engine *PostgresEngine, existed bool, err error) {
	probe, err := sql.Open("postgres", url)
	if err != nil {
		return nil, false, fmt.Errorf("opening postgres connection: %w", err)
	}
	defer probe.Close()

	existed, err = schemaExists(ctx, probe, durableSchema)
	if err != nil {
		return nil, false, err
	}

	stagingSchema := fmt.Sprintf("%s_staging_%s", durableSchema, uuid.NewString()[:8])
	adapter, err := postgres.Open(ctx, url, stagingSchema)
	if err != nil {
		return nil, false, fmt.Errorf("opening staging schema: %w", err)
	}

	if existed {
		if err := cloneSchema(ctx, adapter.DB(), durableSchema, stagingSchema); err != nil {
			adapter.Close()
			return nil, false, fmt.Errorf("cloning %s into %s: %w", durableSchema, stagingSchema, err)
		}
	}

	return &PostgresEngine{
		url:           url,
		durableSchema: durableSchema,
		stagingSchema: stagingSchema,
		adapter:       adapter,
	}, existed, nil
}

// Backend returns the live backend operating against the staging schema.
func (e *PostgresEngine) Backend() database.Backend { return e.adapter }

// Commit implements save_modifications as an atomic schema rename:
// the current durable schema (if any) is renamed aside, the staging
// schema takes its place, then the aside copy is dropped. A fresh
// staging schema is cloned immediately afterward so the handle stays
// live for further mutations, matching SQLiteEngine's behavior.
func (e *PostgresEngine) Commit(ctx context.Context) error {
	db := e.adapter.DB()

	retiredSchema := fmt.Sprintf("%s_retired_%s", e.durableSchema, uuid.NewString()[:8])

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning commit transaction: %w", err)
	}
	defer tx.Rollback()

	durableExists, err := schemaExists(ctx, db, e.durableSchema)
	if err != nil {
		return err
	}
	if durableExists {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER SCHEMA %s RENAME TO %s`,
			quoteIdent(e.durableSchema), quoteIdent(retiredSchema))); err != nil {
			return fmt.Errorf("retiring old schema: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER SCHEMA %s RENAME TO %s`,
		quoteIdent(e.stagingSchema), quoteIdent(e.durableSchema))); err != nil {
		return fmt.Errorf("promoting staging schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema swap: %w", err)
	}

	if durableExists {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(`DROP SCHEMA %s CASCADE`, quoteIdent(retiredSchema))); err != nil {
			return fmt.Errorf("dropping retired schema: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`SET search_path TO %s`, quoteIdent(e.durableSchema))); err != nil {
		return fmt.Errorf("restoring search_path: %w", err)
	}

	newStaging := fmt.Sprintf("%s_staging_%s", e.durableSchema, uuid.NewString()[:8])
	if err := cloneSchema(ctx, db, e.durableSchema, newStaging); err != nil {
		return fmt.Errorf("re-staging after commit: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`SET search_path TO %s`, quoteIdent(newStaging))); err != nil {
		return fmt.Errorf("switching to new staging schema: %w", err)
	}
	e.stagingSchema = newStaging
	return nil
}

// Close drops the staging schema without ever touching the durable
// one -- the rollback path for a handle abandoned before Commit.
func (e *PostgresEngine) Close() error {
	db := e.adapter.DB()
	_, dropErr := db.ExecContext(context.Background(), fmt.Sprintf(`DROP SCHEMA %s CASCADE`, quoteIdent(e.stagingSchema)))
	closeErr := e.adapter.Close()
	if dropErr != nil {
		return dropErr
	}
	return closeErr
}

func schemaExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	const query = `SELECT 1 FROM information_schema.schemata WHERE schema_name = $1`
	var discard int
	err := db.QueryRowContext(ctx, query, name).Scan(&discard)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking schema %s: %w", name, err)
	}
	return true, nil
}

// cloneSchema recreates every table in src under dst, copying both
// structure and rows. Used both for the initial stage and for
// re-staging immediately after a commit.
func cloneSchema(ctx context.Context, db *sql.DB, src, dst string) error {
	rows, err := db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1`, src)
	if err != nil {
		return fmt.Errorf("listing tables in %s: %w", src, err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for _, table := range tables {
		ddl := fmt.Sprintf(`CREATE TABLE %s.%s (LIKE %s.%s INCLUDING ALL)`,
			quoteIdent(dst), quoteIdent(table), quoteIdent(src), quoteIdent(table))
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("cloning table %s: %w", table, err)
		}
		insert := fmt.Sprintf(`INSERT INTO %s.%s SELECT * FROM %s.%s`,
			quoteIdent(dst), quoteIdent(table), quoteIdent(src), quoteIdent(table))
		if _, err := db.ExecContext(ctx, insert); err != nil {
			return fmt.Errorf("copying rows for %s: %w", table, err)
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

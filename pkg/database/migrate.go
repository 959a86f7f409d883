package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

const dialect = "postgres"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationSource exposes the embedded schema migrations.
func MigrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
}

// MigrateUp applies every pending migration and returns how many ran.
func MigrateUp(ctx context.Context, db *sql.DB) (int, error) {
	return run(ctx, db, migrate.Up, 0)
}

// MigrateDown rolls back the given number of migrations (0 means all).
func MigrateDown(ctx context.Context, db *sql.DB, steps int) (int, error) {
	return run(ctx, db, migrate.Down, steps)
}

// MigrationRecords lists applied migrations.
func MigrationRecords(db *sql.DB) ([]*migrate.MigrationRecord, error) {
	records, err := migrate.GetMigrationRecords(db, dialect)
	if err != nil {
		return nil, fmt.Errorf("read migration records: %w", err)
	}
	return records, nil
}

func run(ctx context.Context, db *sql.DB, dir migrate.MigrationDirection, max int) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := migrate.ExecMax(db, dialect, MigrationSource(), dir, max)
		done <- result{n: n, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("migration interrupted: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return 0, fmt.Errorf("db migrations have failed: %w", res.err)
		}
		return res.n, nil
	}
}

package database

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version  int
	name     string
	postgres string
	sqlite   string
}

func (m migration) statement(d Dialect) string {
	if d == SQLite {
		return m.sqlite
	}
	return m.postgres
}

// migrations must stay append-only.
var migrations = []migration{
	{
		version: 1,
		name:    "create_images_table",
		postgres: `
			CREATE TABLE IF NOT EXISTS images (
				id          BIGSERIAL PRIMARY KEY,
				name        TEXT NOT NULL,
				url         TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_images_created_at ON images (created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_images_name ON images (name);
		`,
		sqlite: `
			CREATE TABLE IF NOT EXISTS images (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				name        TEXT NOT NULL,
				url         TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_images_created_at ON images (created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_images_name ON images (name);
		`,
	},
}

// Migrate applies every migration newer than the recorded schema version.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := RunInTransaction(ctx, db, func(txCtx context.Context) error {
			exec := ExecutorFor(txCtx, db)
			if _, err := exec.ExecContext(txCtx, m.statement(d)); err != nil {
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
			_, err := exec.ExecContext(txCtx,
				d.Rebind("INSERT INTO schema_migrations (version, name) VALUES (?, ?)"),
				m.version, m.name)
			if err != nil {
				return fmt.Errorf("record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

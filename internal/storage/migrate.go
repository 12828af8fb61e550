package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp applies every up migration in file-name order. Migrations are
// written to be idempotent, so running it on an existing database is safe.
func MigrateUp(db *sql.DB) error {
	entries, err := migrationNames(".up.sql")
	if err != nil {
		return err
	}
	return applyMigrations(db, entries)
}

// MigrateDown applies every down migration in reverse order.
func MigrateDown(db *sql.DB) error {
	entries, err := migrationNames(".down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	return applyMigrations(db, entries)
}

func migrationNames(suffix string) ([]string, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

func applyMigrations(db *sql.DB, entries []string) error {
	for _, name := range entries {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if _, execErr := db.Exec(string(sqlBytes)); execErr != nil {
			return fmt.Errorf("apply migration %s: %w", name, execErr)
		}
	}
	return nil
}

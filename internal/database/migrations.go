package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations executes the embedded SQL migrations for the active dialect
// that have not run yet and returns the names of the files it applied.
func (db *DB) RunMigrations(ctx context.Context) ([]string, error) {
	if _, err := db.ExecContext(ctx, db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	dir := path.Join("migrations", db.Dialect.MigrationsSubdir())
	files, err := fs.Glob(migrationsFS, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to read migration files: %w", err)
	}

	// Sort files to ensure they run in order
	sort.Strings(files)

	var applied []string
	for _, file := range files {
		filename := path.Base(file)

		hasRun, err := db.hasMigrationRun(ctx, filename)
		if err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if hasRun {
			continue
		}

		content, err := migrationsFS.ReadFile(file)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		// The whole file is sent in one Exec; every supported driver accepts
		// multiple statements there (MySQL via multiStatements in the DSN).
		if _, err := db.DB.ExecContext(ctx, string(content)); err != nil {
			return applied, fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO migrations (filename) VALUES (?)", filename); err != nil {
			return applied, fmt.Errorf("failed to record migration %s: %w", filename, err)
		}
		applied = append(applied, filename)
	}

	return applied, nil
}

// hasMigrationRun checks if a migration has already been executed
func (db *DB) hasMigrationRun(ctx context.Context, filename string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

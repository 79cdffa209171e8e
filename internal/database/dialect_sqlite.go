package database

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(config DialectConfig) string {
	return "file:" + config.Path + "?_busy_timeout=5000&_foreign_keys=on"
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) SupportsLastInsertId() bool {
	return true
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// a single connection serializes writers on the database file
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return err
	}
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *SQLiteDialect) AccumulateProgressQuery() string {
	return `INSERT INTO progress (user_id, example_id, last_answer_id, score) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, example_id)
		DO UPDATE SET score = progress.score + excluded.score,
			last_answer_id = excluded.last_answer_id, updated_at = CURRENT_TIMESTAMP
		WHERE progress.last_answer_id IS NOT excluded.last_answer_id`
}

func (d *SQLiteDialect) EnrollProgressQuery() string {
	return enrollSelect + ` ON CONFLICT (user_id, example_id) DO NOTHING`
}

func (d *SQLiteDialect) MergeProgressQuery() string {
	return `INSERT INTO progress (user_id, example_id, score) VALUES (?, ?, ?)
		ON CONFLICT (user_id, example_id)
		DO UPDATE SET score = MAX(progress.score, excluded.score), updated_at = CURRENT_TIMESTAMP`
}

func (d *SQLiteDialect) InsertIgnoreQuery(table string, columns ...string) string {
	return "INSERT INTO " + insertColumns(table, columns) + " ON CONFLICT DO NOTHING"
}

func (d *SQLiteDialect) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) SupportsLastInsertId() bool {
	// PostgreSQL doesn't support LastInsertId(), needs RETURNING clause
	return false
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *PostgresDialect) AccumulateProgressQuery() string {
	return `INSERT INTO progress (user_id, example_id, last_answer_id, score) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, example_id)
		DO UPDATE SET score = progress.score + EXCLUDED.score,
			last_answer_id = EXCLUDED.last_answer_id, updated_at = CURRENT_TIMESTAMP
		WHERE progress.last_answer_id IS DISTINCT FROM EXCLUDED.last_answer_id`
}

func (d *PostgresDialect) EnrollProgressQuery() string {
	return enrollSelect + ` ON CONFLICT (user_id, example_id) DO NOTHING`
}

func (d *PostgresDialect) MergeProgressQuery() string {
	return `INSERT INTO progress (user_id, example_id, score) VALUES (?, ?, ?)
		ON CONFLICT (user_id, example_id)
		DO UPDATE SET score = GREATEST(progress.score, EXCLUDED.score), updated_at = CURRENT_TIMESTAMP`
}

func (d *PostgresDialect) InsertIgnoreQuery(table string, columns ...string) string {
	return "INSERT INTO " + insertColumns(table, columns) + " ON CONFLICT DO NOTHING"
}

func (d *PostgresDialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgUniqueViolation
}

package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// AccumulateProgressQuery adds a score to a progress row, creating it if
	// absent. A repeat of the row's last answer id adds nothing.
	// Args: user_id, example_id, answer_id, score.
	AccumulateProgressQuery() string

	// EnrollProgressQuery creates a zero-score progress row unless one exists.
	// Rows referencing an unknown user or example are skipped. Args: user_id, example_id.
	EnrollProgressQuery() string

	// MergeProgressQuery writes a score without ever lowering an existing one.
	// Args: user_id, example_id, score.
	MergeProgressQuery() string

	// InsertIgnoreQuery builds an insert that silently skips rows hitting a unique key
	InsertIgnoreQuery(table string, columns ...string) string

	// IsUniqueViolation reports whether err is a unique or primary key conflict
	IsUniqueViolation(err error) bool
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func insertColumns(table string, columns []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return table + " (" + strings.Join(columns, ", ") + ") VALUES (" + marks + ")"
}

// enrollSelect is shared by the dialects; selecting the ids back out of their
// tables drops enrollments for rows that do not exist.
const enrollSelect = `INSERT INTO progress (user_id, example_id, score)
		SELECT u.id, e.id, 0 FROM users u, examples e
		WHERE u.id = ? AND e.id = ?`

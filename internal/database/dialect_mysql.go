package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN adds the options the repositories depend on: DATETIME columns scanned
// as time.Time and multi-statement migration files.
func (d *MySQLDialect) DSN(config DialectConfig) string {
	dsn := config.URL
	for _, opt := range []string{"parseTime=true", "multiStatements=true"} {
		name := opt[:strings.Index(opt, "=")+1]
		if strings.Contains(dsn, name) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + opt
		} else {
			dsn += "?" + opt
		}
	}
	return dsn
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

func (d *MySQLDialect) AccumulateProgressQuery() string {
	// assignments run left to right, so score still sees the previous answer id
	return "INSERT INTO progress (user_id, example_id, last_answer_id, score) VALUES (?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE score = IF(last_answer_id <=> VALUES(last_answer_id), score, score + VALUES(score)), " +
		"last_answer_id = VALUES(last_answer_id), updated_at = CURRENT_TIMESTAMP"
}

func (d *MySQLDialect) EnrollProgressQuery() string {
	return strings.Replace(enrollSelect, "INSERT INTO", "INSERT IGNORE INTO", 1)
}

func (d *MySQLDialect) MergeProgressQuery() string {
	return "INSERT INTO progress (user_id, example_id, score) VALUES (?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE score = GREATEST(score, VALUES(score)), updated_at = CURRENT_TIMESTAMP"
}

func (d *MySQLDialect) InsertIgnoreQuery(table string, columns ...string) string {
	return "INSERT IGNORE INTO " + insertColumns(table, columns)
}

func (d *MySQLDialect) IsUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == mysqlDuplicateEntry
}

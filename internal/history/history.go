// Package history persists validation reports in SQLite.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/dotlint/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	root          TEXT NOT NULL,
	mode          TEXT NOT NULL,
	started_at    DATETIME NOT NULL,
	files_checked INTEGER NOT NULL DEFAULT 0,
	errors        INTEGER NOT NULL DEFAULT 0,
	warnings      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	path       TEXT NOT NULL,
	rel_path   TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	read_error TEXT NOT NULL DEFAULT '',
	skipped    INTEGER NOT NULL DEFAULT 0,
	findings   TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_results_path ON results(rel_path);
`

// Store defines the run history operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type Store interface {
	SaveRun(rep *models.Report) error
	ListRuns(limit int) ([]RunRow, error)
	GetRun(id string) (*models.Report, error)
	Close() error
}

var _ Store = (*DB)(nil)

// DB wraps a sql.DB with history-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	*sql.DB
}

// Open creates or opens the history database at the given path and runs
// schema initialization.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  started_at INTEGER NOT NULL,
  finished_at INTEGER,
  num_disks INTEGER NOT NULL,
  thread_limit INTEGER NOT NULL DEFAULT 1,
  restored INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  total_moves INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
`
	_, err := db.Exec(schema)
	return err
}

// runMigrations applies schema changes added after the initial schema.
// Each step is idempotent.
func runMigrations(db *sql.DB) error {
	hasFinal, err := columnExists(db, "sessions", "final_state")
	if err != nil {
		return fmt.Errorf("check final_state column: %w", err)
	}
	if !hasFinal {
		if _, err := db.Exec(`ALTER TABLE sessions ADD COLUMN final_state TEXT`); err != nil {
			return fmt.Errorf("run migration v1: %w", err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(
		fmt.Sprintf("SELECT name FROM pragma_table_info('%s') WHERE name = ?", table),
		column,
	)
	if err != nil {
		return false, err
	}
	found := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}
	return found, nil
}

// SessionCount returns how many sessions are recorded
func (db *DB) SessionCount() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

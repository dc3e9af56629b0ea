package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dash-soft/hanoi/internal/model"
)

// SessionStore handles solve session records on SQLite.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new session store.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Begin inserts a running session. StartedAt defaults to now.
func (s *SessionStore) Begin(rec model.SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if rec.StartedAt == 0 {
		rec.StartedAt = time.Now().Unix()
	}
	if rec.Status == "" {
		rec.Status = model.SessionStatusRunning
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, started_at, num_disks, thread_limit, restored, status, total_moves)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, rec.ID, rec.StartedAt, rec.NumDisks, rec.ThreadLimit, rec.Restored, string(rec.Status))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Finish records the outcome of a session.
func (s *SessionStore) Finish(id string, status model.SessionStatus, totalMoves int, final map[string][]int) error {
	finalJSON, err := json.Marshal(final)
	if err != nil {
		return fmt.Errorf("encode final state: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE sessions SET finished_at = ?, status = ?, total_moves = ?, final_state = ?
		WHERE id = ?
	`, time.Now().Unix(), string(status), totalMoves, string(finalJSON), id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish session: %s not found", id)
	}
	return nil
}

// Get fetches a session by ID. It returns nil if none exists.
func (s *SessionStore) Get(id string) (*model.SessionRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, num_disks, thread_limit, restored, status, total_moves, final_state
		FROM sessions WHERE id = ?
	`, id)

	rec, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return rec, nil
}

// List returns recent sessions, newest first.
func (s *SessionStore) List(limit int) ([]*model.SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, num_disks, thread_limit, restored, status, total_moves, final_state
		FROM sessions
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, rec)
	}
	return sessions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*model.SessionRecord, error) {
	var (
		rec        model.SessionRecord
		finishedAt sql.NullInt64
		status     string
		finalState sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.StartedAt, &finishedAt, &rec.NumDisks, &rec.ThreadLimit,
		&rec.Restored, &status, &rec.TotalMoves, &finalState); err != nil {
		return nil, err
	}

	rec.Status = model.SessionStatus(status)
	if finishedAt.Valid {
		rec.FinishedAt = &finishedAt.Int64
	}
	if finalState.Valid && finalState.String != "" && finalState.String != "null" {
		if err := json.Unmarshal([]byte(finalState.String), &rec.Final); err != nil {
			return nil, fmt.Errorf("decode final state: %w", err)
		}
	}
	return &rec, nil
}

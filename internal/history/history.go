// Package history keeps an audit log of command runs in a local sqlite
// database. Recording is advisory: callers log and move on if it fails.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	args TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL,
	summary TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one recorded command invocation.
type Run struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	Args       string    `json:"args"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Summary    string    `json:"summary"`
}

type Store struct {
	db *sql.DB
}

// Open opens (and initializes if needed) the audit database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run, assigning an ID when the caller left it empty.
func (s *Store) Record(run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, command, args, started_at, duration_ms, summary) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.Args, run.StartedAt.UTC(), run.DurationMS, run.Summary,
	)
	return err
}

// Recent returns up to n runs, most recent first.
func (s *Store) Recent(n int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, command, args, started_at, duration_ms, summary FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0, n)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Command, &run.Args, &run.StartedAt, &run.DurationMS, &run.Summary); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

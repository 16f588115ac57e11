// ABOUTME: SQLite journal of capture attempts
// ABOUTME: Records outcome, storage key, failure reason, and duration per attempt

package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Outcome classifies how a capture attempt ended.
type Outcome string

const (
	OutcomeDone   Outcome = "done"
	OutcomeFailed Outcome = "failed"
)

// Entry is one journaled capture attempt.
type Entry struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    Outcome
	// StorageKey is set for successful attempts.
	StorageKey string
	// Failure holds the error text for failed attempts.
	Failure string
}

// Duration returns how long the attempt took.
func (e *Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Journal persists capture attempts in a local SQLite database.
type Journal struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal database at path.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	j := &Journal{db: db, path: path}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			outcome TEXT NOT NULL,
			storage_key TEXT,
			failure TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_started_at ON attempts(started_at DESC);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record inserts a finished attempt.
func (j *Journal) Record(e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := j.db.Exec(
		`INSERT INTO attempts (id, started_at, finished_at, outcome, storage_key, failure)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID.String(),
		e.StartedAt.UTC().Format(time.RFC3339Nano),
		e.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(e.Outcome),
		e.StorageKey,
		e.Failure,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Recent returns the most recent attempts, newest first.
func (j *Journal) Recent(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(
		`SELECT id, started_at, finished_at, outcome, storage_key, failure
		 FROM attempts ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			idStr, startedStr, finishedStr, outcome string
			storageKey, failure                     sql.NullString
		)
		if err := rows.Scan(&idStr, &startedStr, &finishedStr, &outcome, &storageKey, &failure); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse attempt id %q: %w", idStr, err)
		}
		startedAt, err := time.Parse(time.RFC3339Nano, startedStr)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedStr, err)
		}
		finishedAt, err := time.Parse(time.RFC3339Nano, finishedStr)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finishedStr, err)
		}

		entries = append(entries, &Entry{
			ID:         id,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Outcome:    Outcome(outcome),
			StorageKey: storageKey.String,
			Failure:    failure.String,
		})
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

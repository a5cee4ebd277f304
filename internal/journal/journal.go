// Package journal keeps a local history of bootstrap runs in SQLite so
// `stackup history` can answer "when did this last come up healthy".
// Resource state is never read back from here (every run recomputes it);
// the journal is purely an operator-facing record.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stackup"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at      INTEGER NOT NULL,
	project         TEXT NOT NULL,
	outcome         TEXT NOT NULL,
	elapsed_ms      INTEGER NOT NULL,
	health_ms       INTEGER NOT NULL,
	warnings        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at DESC);
`

// Journal is an append-only run log backed by SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Entry is one recorded run.
type Entry struct {
	ID            int64
	StartedAt     time.Time
	Project       string
	Outcome       stackup.Outcome
	Elapsed       time.Duration
	HealthElapsed time.Duration
	Warnings      []string
}

// Record appends a run report.
func (j *Journal) Record(ctx context.Context, report stackup.Report) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, project, outcome, elapsed_ms, health_ms, warnings)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.StartedAt.Unix(),
		report.Project,
		report.Outcome.String(),
		report.Elapsed.Milliseconds(),
		report.HealthElapsed.Milliseconds(),
		strings.Join(report.Warnings, "\n"),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, project, outcome, elapsed_ms, health_ms, warnings
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			startedAt int64
			outcome   string
			elapsedMS int64
			healthMS  int64
			warnings  string
		)
		if err := rows.Scan(&e.ID, &startedAt, &e.Project, &outcome, &elapsedMS, &healthMS, &warnings); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		e.StartedAt = time.Unix(startedAt, 0)
		e.Outcome = stackup.ParseOutcome(outcome)
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		e.HealthElapsed = time.Duration(healthMS) * time.Millisecond
		if warnings != "" {
			e.Warnings = strings.Split(warnings, "\n")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return entries, nil
}

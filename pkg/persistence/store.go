// Package persistence provides SQLite-backed storage of run history:
// one row per pipeline run plus the ordered progress events observed
// during it.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"codeagents/pkg/logx"
	"codeagents/pkg/orch"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	task_description TEXT NOT NULL,
	provider         TEXT NOT NULL,
	model            TEXT NOT NULL,
	status           TEXT NOT NULL,
	success          INTEGER NOT NULL,
	error            TEXT NOT NULL DEFAULT '',
	total_files      INTEGER NOT NULL,
	iterations       INTEGER NOT NULL,
	duration_seconds REAL NOT NULL,
	result_json      TEXT NOT NULL,
	file_digests     TEXT NOT NULL DEFAULT '{}',
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS progress_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	timestamp     TEXT NOT NULL,
	status        TEXT NOT NULL,
	message       TEXT NOT NULL,
	current       INTEGER NOT NULL,
	total         INTEGER NOT NULL,
	files_created INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_progress_run ON progress_events(run_id);
`

// Store is one open run-history database.
type Store struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open creates or opens the database at dbPath and ensures the schema
// exists.
func Open(dbPath string, logger *logx.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_foreign_keys=ON&_journal_mode=WAL&_busy_timeout=5000",
		dbPath,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	logger.Info("run store initialized: %s", dbPath)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunRecord is one persisted run. FileDigests maps each created file's
// relative path to the BLAKE2b-256 digest of its content at save time,
// so stored runs can be checked against later modification of the
// output directory.
type RunRecord struct {
	RunID           string
	TaskDescription string
	Provider        string
	Model           string
	Result          orch.RunResult
	FileDigests     map[string]string
	CreatedAt       time.Time
}

// SaveRun persists one completed run. The full result is stored as
// JSON alongside the queryable summary columns.
func (s *Store) SaveRun(rec *RunRecord) error {
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to encode run result: %w", err)
	}
	digests := rec.FileDigests
	if digests == nil {
		digests = map[string]string{}
	}
	digestJSON, err := json.Marshal(digests)
	if err != nil {
		return fmt.Errorf("failed to encode file digests: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (run_id, task_description, provider, model, status, success,
			error, total_files, iterations, duration_seconds, result_json, file_digests, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.TaskDescription, rec.Provider, rec.Model,
		string(rec.Result.Status), boolToInt(rec.Result.Success),
		rec.Result.Error, rec.Result.TotalFiles, rec.Result.Iterations,
		rec.Result.DurationSeconds, string(resultJSON), string(digestJSON),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.RunID, err)
	}
	return nil
}

// RecordProgress appends one progress event for a run.
func (s *Store) RecordProgress(runID string, event orch.ProgressEvent) error {
	_, err := s.db.Exec(`
		INSERT INTO progress_events (run_id, timestamp, status, message, current, total, files_created)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano),
		string(event.Status), event.Message, event.Current, event.Total, event.FilesCreated,
	)
	if err != nil {
		return fmt.Errorf("failed to record progress for run %s: %w", runID, err)
	}
	return nil
}

// GetRun loads one run by id, or sql.ErrNoRows if absent.
func (s *Store) GetRun(runID string) (*RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT run_id, task_description, provider, model, result_json, file_digests, created_at
		FROM runs WHERE run_id = ?`, runID)

	var rec RunRecord
	var resultJSON, digestJSON, createdAt string
	if err := row.Scan(&rec.RunID, &rec.TaskDescription, &rec.Provider, &rec.Model, &resultJSON, &digestJSON, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to decode run result for %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(digestJSON), &rec.FileDigests); err != nil {
		return nil, fmt.Errorf("failed to decode file digests for %s: %w", runID, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for %s: %w", runID, err)
	}
	rec.CreatedAt = ts
	return &rec, nil
}

// ProgressEventRecord is one stored progress event.
type ProgressEventRecord struct {
	Timestamp time.Time
	Event     orch.ProgressEvent
}

// ProgressEvents returns a run's progress events in insertion order.
func (s *Store) ProgressEvents(runID string) ([]ProgressEventRecord, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, status, message, current, total, files_created
		FROM progress_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress for run %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var events []ProgressEventRecord
	for rows.Next() {
		var rec ProgressEventRecord
		var ts, status string
		if err := rows.Scan(&ts, &status, &rec.Event.Message, &rec.Event.Current, &rec.Event.Total, &rec.Event.FilesCreated); err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		rec.Event.Status = orch.Status(status)
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("failed to parse progress timestamp: %w", err)
		}
		events = append(events, rec)
	}
	return events, rows.Err()
}

// RunSummary is one row of ListRuns output.
type RunSummary struct {
	RunID      string
	Status     string
	Success    bool
	TotalFiles int
	CreatedAt  time.Time
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, status, success, total_files, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []RunSummary
	for rows.Next() {
		var sum RunSummary
		var success int
		var createdAt string
		if err := rows.Scan(&sum.RunID, &sum.Status, &success, &sum.TotalFiles, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		sum.Success = success != 0
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse run created_at: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

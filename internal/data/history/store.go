// # internal/data/history/store.go
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"camelize/internal/core/decision"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
	timeLayout  = time.RFC3339Nano
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun inserts the run or updates the row with the same ID.
func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	finished := ""
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().Format(timeLayout)
	}

	query := `
INSERT INTO runs (
  run_id, root, started_at_utc, finished_at_utc, dry_run, file_count, candidate_count,
  renamed_count, skipped_count, shorthand_count, dirty_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  root=excluded.root,
  started_at_utc=excluded.started_at_utc,
  finished_at_utc=excluded.finished_at_utc,
  dry_run=excluded.dry_run,
  file_count=excluded.file_count,
  candidate_count=excluded.candidate_count,
  renamed_count=excluded.renamed_count,
  skipped_count=excluded.skipped_count,
  shorthand_count=excluded.shorthand_count,
  dirty_count=excluded.dirty_count
`
	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.ID,
			run.Root,
			run.StartedAt.UTC().Format(timeLayout),
			finished,
			boolToInt(run.DryRun),
			run.Files,
			run.Candidates,
			run.Renamed,
			run.Skipped,
			run.ShorthandRewrites,
			run.DirtyFiles,
		)
		return err
	})
}

// SaveDecisions replaces the decisions of runID with records, preserving their order.
func (s *Store) SaveDecisions(runID string, records []decision.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("save decisions", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM decisions WHERE run_id = ?`, runID); err != nil {
			_ = tx.Rollback()
			return err
		}
		stmt, err := tx.Prepare(`
INSERT INTO decisions (run_id, seq, ts_utc, file, identifier, status, reason, shorthand_handled)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()

		for i, r := range records {
			if _, err := stmt.Exec(
				runID,
				i,
				r.Time.UTC().Format(timeLayout),
				r.File,
				r.Identifier,
				string(r.Status),
				string(r.Reason),
				boolToInt(r.ShorthandHandled),
			); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// ListRuns returns the newest runs first. A limit of zero or less returns every run.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  run_id, root, started_at_utc, finished_at_utc, dry_run, file_count, candidate_count,
  renamed_count, skipped_count, shorthand_count, dirty_count
FROM runs
ORDER BY started_at_utc DESC, run_id ASC
`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("list runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run         Run
			startedRaw  string
			finishedRaw string
			dryRun      int
		)
		if err := rows.Scan(
			&run.ID,
			&run.Root,
			&startedRaw,
			&finishedRaw,
			&dryRun,
			&run.Files,
			&run.Candidates,
			&run.Renamed,
			&run.Skipped,
			&run.ShorthandRewrites,
			&run.DirtyFiles,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.DryRun = dryRun != 0

		started, err := time.Parse(timeLayout, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		run.StartedAt = started.UTC()
		if finishedRaw != "" {
			finished, err := time.Parse(timeLayout, finishedRaw)
			if err != nil {
				return nil, fmt.Errorf("parse run timestamp %q: %w", finishedRaw, err)
			}
			run.FinishedAt = finished.UTC()
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LoadDecisions returns the decisions of runID in emission order.
func (s *Store) LoadDecisions(runID string) ([]decision.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load decisions", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT ts_utc, file, identifier, status, reason, shorthand_handled
FROM decisions
WHERE run_id = ?
ORDER BY seq ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]decision.Record, 0)
	for rows.Next() {
		var (
			r         decision.Record
			tsRaw     string
			status    string
			reason    string
			shorthand int
		)
		if err := rows.Scan(&tsRaw, &r.File, &r.Identifier, &status, &reason, &shorthand); err != nil {
			return nil, fmt.Errorf("scan decision row: %w", err)
		}
		ts, err := time.Parse(timeLayout, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse decision timestamp %q: %w", tsRaw, err)
		}
		r.Time = ts.UTC()
		r.Status = decision.Status(status)
		r.Reason = decision.Reason(reason)
		r.ShorthandHandled = shorthand != 0
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decision rows: %w", err)
	}
	return records, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}

package statedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// StateDB wraps a SQLite database for run history persistence.
// Thread-safe for concurrent use from multiple goroutines within one process.
// Multiple OS processes can safely read/write via WAL mode + busy timeout.
type StateDB struct {
	db  *sql.DB
	pid int
}

// RunRow is one recorded activity run.
type RunRow struct {
	ID          string
	Kind        string // "mouse" or "editor"
	Outcome     string // locate outcome or "ok"/"error" for non-window activities
	WindowID    string
	WindowTitle string
	StartedAt   time.Time
	Duration    time.Duration
	Detail      string
	Err         string
}

// RunStats aggregates the run history.
type RunStats struct {
	Total   int
	Failed  int
	ByKind  map[string]int
	LastRun time.Time
	LastErr string
}

// global singleton for cross-package access (run writes from the scheduler)
var (
	globalDB   *StateDB
	globalDBMu sync.RWMutex
)

// SetGlobal sets the global StateDB instance.
func SetGlobal(db *StateDB) {
	globalDBMu.Lock()
	globalDB = db
	globalDBMu.Unlock()
}

// GetGlobal returns the global StateDB instance (may be nil).
func GetGlobal() *StateDB {
	globalDBMu.RLock()
	defer globalDBMu.RUnlock()
	return globalDB
}

// Open creates or opens a SQLite database at dbPath with WAL mode and busy timeout.
func Open(dbPath string) (*StateDB, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("statedb: mkdir: %w", err)
	}

	// Pragmas go in the DSN so every connection database/sql pools gets
	// them: WAL allows concurrent readers while writing, busy timeout
	// waits up to 5s if another connection or process holds a lock.
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("statedb: open: %w", err)
	}

	return &StateDB{db: db, pid: os.Getpid()}, nil
}

// Close checkpoints WAL and closes the database.
func (s *StateDB) Close() error {
	// Checkpoint WAL to merge it back into the main database file
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced use cases (e.g., testing).
func (s *StateDB) DB() *sql.DB {
	return s.db
}

// Migrate creates tables if they don't exist and runs any pending migrations.
func (s *StateDB) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// metadata table
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create metadata: %w", err)
	}

	// runs table
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			outcome      TEXT NOT NULL DEFAULT '',
			window_id    TEXT NOT NULL DEFAULT '',
			window_title TEXT NOT NULL DEFAULT '',
			started_at   INTEGER NOT NULL,
			duration_ms  INTEGER NOT NULL DEFAULT 0,
			detail       TEXT NOT NULL DEFAULT '',
			error        TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return fmt.Errorf("statedb: create runs: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs (started_at DESC)
	`); err != nil {
		return fmt.Errorf("statedb: create runs index: %w", err)
	}

	// Set schema version
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("statedb: set schema version: %w", err)
	}

	return tx.Commit()
}

// IsEmpty returns true if the runs table has no rows.
func (s *StateDB) IsEmpty() (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// --- Run history ---

// RecordRun inserts a single run.
func (s *StateDB) RecordRun(r *RunRow) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO runs (
			id, kind, outcome, window_id, window_title,
			started_at, duration_ms, detail, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.Kind, r.Outcome, r.WindowID, r.WindowTitle,
		r.StartedAt.Unix(), r.Duration.Milliseconds(), r.Detail, r.Err,
	)
	if err != nil {
		return fmt.Errorf("statedb: record run: %w", err)
	}
	return s.Touch()
}

// RecentRuns returns the newest runs, most recent first, up to limit.
// A non-positive limit returns everything.
func (s *StateDB) RecentRuns(limit int) ([]*RunRow, error) {
	query := `
		SELECT id, kind, outcome, window_id, window_title,
			started_at, duration_ms, detail, error
		FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*RunRow
	for rows.Next() {
		r := &RunRow{}
		var startedUnix, durationMS int64
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.Outcome, &r.WindowID, &r.WindowTitle,
			&startedUnix, &durationMS, &r.Detail, &r.Err,
		); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(startedUnix, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		result = append(result, r)
	}
	return result, rows.Err()
}

// Stats summarizes the whole run history.
func (s *StateDB) Stats() (*RunStats, error) {
	stats := &RunStats{ByKind: make(map[string]int)}

	rows, err := s.db.Query("SELECT kind, COUNT(*) FROM runs GROUP BY kind")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		stats.ByKind[kind] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs WHERE error != ''").Scan(&stats.Failed); err != nil {
		return nil, err
	}

	var startedUnix int64
	var lastErr string
	err = s.db.QueryRow(
		"SELECT started_at, error FROM runs ORDER BY started_at DESC, id LIMIT 1",
	).Scan(&startedUnix, &lastErr)
	if err == nil {
		stats.LastRun = time.Unix(startedUnix, 0)
		stats.LastErr = lastErr
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	return stats, nil
}

// PruneRuns deletes runs older than the cutoff and returns how many were removed.
func (s *StateDB) PruneRuns(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := s.db.Exec("DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Metadata ---

// SetMeta sets a key-value pair in the metadata table.
func (s *StateDB) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta gets a value from the metadata table. Returns "" if not found.
func (s *StateDB) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// --- Change Detection ---

// Touch updates a metadata timestamp that other instances can poll to detect changes.
func (s *StateDB) Touch() error {
	return s.SetMeta("last_modified", fmt.Sprintf("%d", time.Now().UnixNano()))
}

// LastModified returns the last_modified timestamp from metadata.
func (s *StateDB) LastModified() (int64, error) {
	val, err := s.GetMeta("last_modified")
	if err != nil || val == "" {
		return 0, err
	}
	var ts int64
	_, err = fmt.Sscanf(val, "%d", &ts)
	return ts, err
}

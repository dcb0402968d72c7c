package statedb

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestDB(t *testing.T) *StateDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "state.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRun(kind string, started time.Time) *RunRow {
	return &RunRow{
		ID:          uuid.NewString(),
		Kind:        kind,
		Outcome:     "found",
		WindowID:    "w1",
		WindowTitle: "[Activity Simulation] - Notepad",
		StartedAt:   started,
		Duration:    250 * time.Millisecond,
	}
}

func TestOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	// Open and write
	db1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db1.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db1.RecordRun(testRun("editor", time.Now())); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	db1.Close()

	// Reopen and verify the run survived
	db2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer db2.Close()
	if err := db2.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	runs, err := db2.RecentRuns(0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Kind != "editor" {
		t.Errorf("kind = %q, want editor", runs[0].Kind)
	}
	if runs[0].Duration != 250*time.Millisecond {
		t.Errorf("duration = %v, want 250ms", runs[0].Duration)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 3; i++ {
		if err := db.Migrate(); err != nil {
			t.Fatalf("Migrate #%d: %v", i, err)
		}
	}
	v, err := db.GetMeta("schema_version")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if v != "1" {
		t.Errorf("schema_version = %q, want 1", v)
	}
}

func TestRecentRunsOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		r := testRun("mouse", base.Add(time.Duration(i)*time.Minute))
		if err := db.RecordRun(r); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := db.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Errorf("runs out of order: %v before %v", runs[i-1].StartedAt, runs[i].StartedAt)
		}
	}
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		if err := db.RecordRun(testRun("mouse", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
	failed := testRun("editor", base.Add(10*time.Minute))
	failed.Err = "window never appeared"
	if err := db.RecordRun(failed); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if stats.ByKind["mouse"] != 3 || stats.ByKind["editor"] != 1 {
		t.Errorf("ByKind = %v", stats.ByKind)
	}
	if stats.LastErr != "window never appeared" {
		t.Errorf("LastErr = %q", stats.LastErr)
	}
}

func TestStatsEmptyDB(t *testing.T) {
	db := newTestDB(t)
	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 || stats.Failed != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
	empty, err := db.IsEmpty()
	if err != nil {
		t.Fatalf("IsEmpty: %v", err)
	}
	if !empty {
		t.Error("IsEmpty = false on a fresh database")
	}
}

func TestPruneRuns(t *testing.T) {
	db := newTestDB(t)
	old := testRun("mouse", time.Now().Add(-48*time.Hour))
	fresh := testRun("mouse", time.Now())
	if err := db.RecordRun(old); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := db.RecordRun(fresh); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	n, err := db.PruneRuns(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneRuns: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
	runs, err := db.RecentRuns(0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != fresh.ID {
		t.Errorf("wrong survivor: %+v", runs)
	}
}

func TestPragmasApplyToEveryPooledConnection(t *testing.T) {
	db := newTestDB(t)
	db.DB().SetMaxOpenConns(4)

	// journal_mode is set through the DSN, so any connection the pool
	// hands out must already be in WAL.
	for i := 0; i < 8; i++ {
		var mode string
		if err := db.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("PRAGMA journal_mode: %v", err)
		}
		if mode != "wal" {
			t.Fatalf("journal_mode = %q, want wal", mode)
		}
	}
}

func TestConcurrentWrites(t *testing.T) {
	db := newTestDB(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = db.RecordRun(testRun("mouse", time.Now()))
		}()
	}
	wg.Wait()

	runs, err := db.RecentRuns(0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 10 {
		t.Errorf("expected 10 runs, got %d", len(runs))
	}
}

func TestTouchAndLastModified(t *testing.T) {
	db := newTestDB(t)

	before, err := db.LastModified()
	if err != nil {
		t.Fatalf("LastModified: %v", err)
	}
	if err := db.RecordRun(testRun("mouse", time.Now())); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	after, err := db.LastModified()
	if err != nil {
		t.Fatalf("LastModified: %v", err)
	}
	if after <= before {
		t.Errorf("last_modified did not advance: %d -> %d", before, after)
	}
}

func TestGlobalAccessor(t *testing.T) {
	db := newTestDB(t)
	SetGlobal(db)
	defer SetGlobal(nil)
	if GetGlobal() != db {
		t.Error("GetGlobal did not return the set instance")
	}
}

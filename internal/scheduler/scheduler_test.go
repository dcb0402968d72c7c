package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/activity"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/statedb"
)

type countingActivity struct {
	mu   sync.Mutex
	runs int
	rep  *activity.Report
	err  error
}

func (a *countingActivity) Name() string { return "counting" }

func (a *countingActivity) Run(ctx context.Context) (*activity.Report, error) {
	a.mu.Lock()
	a.runs++
	a.mu.Unlock()
	return a.rep, a.err
}

func (a *countingActivity) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runs
}

type captureRecorder struct {
	mu   sync.Mutex
	rows []*statedb.RunRow
	err  error
}

func (r *captureRecorder) RecordRun(row *statedb.RunRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
	return r.err
}

func (r *captureRecorder) recorded() []*statedb.RunRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*statedb.RunRow(nil), r.rows...)
}

// tickClock counts sleeps and cancels the run after a fixed number of them,
// so the loop runs a deterministic number of iterations without real delays.
type tickClock struct {
	mu          sync.Mutex
	sleeps      []time.Duration
	cancelAfter int
	cancel      context.CancelFunc
}

func (c *tickClock) Now() time.Time { return time.Now() }

func (c *tickClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	done := len(c.sleeps) >= c.cancelAfter
	c.mu.Unlock()
	if done && c.cancel != nil {
		c.cancel()
		return context.Canceled
	}
	return nil
}

func TestRunExecutesImmediatelyThenOnInterval(t *testing.T) {
	act := &countingActivity{rep: &activity.Report{Kind: "counting", Outcome: "ok"}}
	rec := &captureRecorder{}
	s := New(act, rec, Config{Interval: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	clock := &tickClock{cancelAfter: 3, cancel: cancel}
	s.clock = clock

	require.NoError(t, s.Run(ctx))

	assert.Equal(t, 3, act.count(), "one run before each sleep")
	assert.Equal(t, time.Minute, clock.sleeps[0])
	assert.Len(t, rec.recorded(), 3)
}

func TestRunRecordsOutcomeDetails(t *testing.T) {
	act := &countingActivity{rep: &activity.Report{
		Kind:        "counting",
		Outcome:     "found",
		WindowID:    "w1",
		WindowTitle: "[Activity Simulation] - Notepad",
		Detail:      "typed ab1!",
		Duration:    42 * time.Millisecond,
	}}
	rec := &captureRecorder{}
	s := New(act, rec, Config{Interval: time.Minute})

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	rows := rec.recorded()
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].ID)
	assert.Equal(t, "counting", rows[0].Kind)
	assert.Equal(t, "found", rows[0].Outcome)
	assert.Equal(t, "w1", rows[0].WindowID)
	assert.Equal(t, 42*time.Millisecond, rows[0].Duration)
	assert.Empty(t, rows[0].Err)
}

func TestActivityFailureIsRecordedNotFatal(t *testing.T) {
	act := &countingActivity{err: errors.New("no display")}
	rec := &captureRecorder{}
	s := New(act, rec, Config{Interval: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	clock := &tickClock{cancelAfter: 2, cancel: cancel}
	s.clock = clock

	require.NoError(t, s.Run(ctx), "a failing activity never stops the loop")
	assert.Equal(t, 2, act.count())

	rows := rec.recorded()
	require.Len(t, rows, 2)
	assert.Equal(t, "no display", rows[0].Err)
}

func TestNilRecorderIsAccepted(t *testing.T) {
	act := &countingActivity{rep: &activity.Report{Outcome: "ok"}}
	s := New(act, nil, Config{Interval: time.Minute})

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, act.count())
}

func TestSetIntervalTakesEffectNextTick(t *testing.T) {
	act := &countingActivity{rep: &activity.Report{Outcome: "ok"}}
	s := New(act, nil, Config{Interval: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	clock := &tickClock{cancelAfter: 2, cancel: cancel}
	s.clock = clock

	s.SetInterval(30 * time.Second)
	require.NoError(t, s.Run(ctx))

	assert.Equal(t, 30*time.Second, clock.sleeps[0])
	assert.Equal(t, 30*time.Second, clock.sleeps[1])
}

func TestSetIntervalRejectsNonPositive(t *testing.T) {
	s := New(&countingActivity{}, nil, Config{Interval: time.Minute})
	s.SetInterval(0)
	s.SetInterval(-time.Second)
	assert.Equal(t, time.Minute, s.currentInterval())
}

func TestCancelledContextStopsBeforeFirstRun(t *testing.T) {
	act := &countingActivity{}
	s := New(act, nil, Config{Interval: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))
	assert.Zero(t, act.count())
}

func TestSchedulerRecordsToRealDatabase(t *testing.T) {
	dbPath := t.TempDir() + "/state.db"
	db, err := statedb.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	act := &countingActivity{rep: &activity.Report{Outcome: "ok", Detail: "moved (+1, -2)"}}
	s := New(act, db, Config{Interval: time.Minute})

	_, err = s.RunOnce(context.Background())
	require.NoError(t, err)

	runs, err := db.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "counting", runs[0].Kind)
	assert.Equal(t, "moved (+1, -2)", runs[0].Detail)
}

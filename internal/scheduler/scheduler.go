// Package scheduler drives the periodic activity loop and records each run.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/activity"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/session"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/statedb"
)

// Recorder persists completed runs. *statedb.StateDB satisfies it.
type Recorder interface {
	RecordRun(*statedb.RunRow) error
}

// Config tunes the scheduler.
type Config struct {
	// Interval is the pause between activity runs (default 4m).
	Interval time.Duration

	// PreventSleep holds the OS awake while the loop runs, best effort.
	PreventSleep bool
}

// Scheduler runs one activity on a fixed interval until its context is
// cancelled. The activity runs immediately on start, then after each pause.
type Scheduler struct {
	act activity.Activity
	rec Recorder

	mu       sync.Mutex
	interval time.Duration

	preventSleep bool
	clock        session.Clock
	newID        func() string
	log          *slog.Logger
}

// New builds a scheduler. rec may be nil when run history is not wanted.
func New(act activity.Activity, rec Recorder, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 4 * time.Minute
	}
	return &Scheduler{
		act:          act,
		rec:          rec,
		interval:     cfg.Interval,
		preventSleep: cfg.PreventSleep,
		clock:        session.SystemClock(),
		newID:        uuid.NewString,
		log:          logging.ForComponent(logging.CompSched),
	}
}

// SetInterval changes the pause between runs. Takes effect after the
// currently pending pause.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

func (s *Scheduler) currentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Run blocks until ctx is cancelled. Activity failures are logged and
// recorded, never fatal: the loop's job is to keep trying.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler_start",
		slog.String("activity", s.act.Name()),
		slog.Duration("interval", s.currentInterval()))

	g, ctx := errgroup.WithContext(ctx)
	if s.preventSleep {
		g.Go(func() error {
			holdAwake(ctx, s.log)
			return nil
		})
	}
	g.Go(func() error {
		return s.loop(ctx)
	})
	return g.Wait()
}

// RunOnce performs a single activity run and records it.
func (s *Scheduler) RunOnce(ctx context.Context) (*activity.Report, error) {
	started := time.Now()
	rep, err := s.act.Run(ctx)
	s.record(started, rep, err)
	if err != nil {
		s.log.Warn("activity_failed",
			slog.String("activity", s.act.Name()),
			slog.String("error", err.Error()))
	}
	return rep, err
}

func (s *Scheduler) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		_, _ = s.RunOnce(ctx)
		if err := s.clock.Sleep(ctx, s.currentInterval()); err != nil {
			s.log.Info("scheduler_stop")
			return nil
		}
	}
}

func (s *Scheduler) record(started time.Time, rep *activity.Report, runErr error) {
	if s.rec == nil {
		return
	}
	row := &statedb.RunRow{
		ID:        s.newID(),
		Kind:      s.act.Name(),
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if rep != nil {
		row.Outcome = rep.Outcome
		row.WindowID = rep.WindowID
		row.WindowTitle = rep.WindowTitle
		row.Detail = rep.Detail
		if rep.Duration > 0 {
			row.Duration = rep.Duration
		}
	}
	if runErr != nil {
		row.Err = runErr.Error()
	}
	if err := s.rec.RecordRun(row); err != nil {
		s.log.Warn("record_run_failed", slog.String("error", err.Error()))
	}
}

package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/winctl"
)

var termLog = logging.ForComponent(logging.CompSession)

// Terminator tears down the target application: polite window close first,
// then graceful process termination, then a forced kill. Every step's
// failure is caught and means "try the next step"; Close never errors.
type Terminator struct {
	dir        *winctl.Directory
	clock      Clock
	killByName func(executable string) error
	cfg        Config
}

// NewTerminator builds a terminator sharing the locator's configuration.
func NewTerminator(dir *winctl.Directory, cfg Config) *Terminator {
	return &Terminator{dir: dir, clock: realClock{}, killByName: KillByName, cfg: cfg.withDefaults()}
}

// Close attempts to close the target application and reports whether it is
// confirmed gone.
//
// Escalation order:
//  1. polite close request to the window, polling up to timeout for the
//     handle to disappear or change identity
//  2. graceful termination of the owned process, waiting up to timeout
//  3. forced kill of the owned process (force only)
//  4. kill-by-name across all matching processes (force only, last resort)
//
// A window handle that changes identity counts as closed: identity here is
// title/class-based, so a different handle matching the same search after a
// posted close means the original window went away.
func (t *Terminator) Close(ctx context.Context, w winctl.Window, hasWindow bool, proc ProcessHandle, timeout time.Duration, force bool) bool {
	if !hasWindow {
		w, hasWindow = t.dir.Find(t.cfg.WindowHint)
	}

	closed := false

	if hasWindow && t.dir.RequestClose(w) {
		closed = t.pollWindowGone(ctx, w, timeout)
	}

	if !closed && proc != nil && proc.Owned() {
		if !proc.Alive() {
			// The spawned process already exited on its own; that is a
			// confirmation, not a reason to escalate.
			closed = true
		} else {
			if err := proc.Terminate(); err != nil {
				termLog.Debug("terminate_failed", slog.String("error", err.Error()))
			}
			if proc.WaitExit(ctx, timeout) {
				closed = true
			} else if force {
				if err := proc.Kill(); err == nil && proc.WaitExit(ctx, 2*time.Second) {
					closed = true
				}
			}
		}
	}

	if !closed && force {
		if err := t.killByName(t.cfg.Executable); err == nil {
			closed = true
		}
	}

	termLog.Info("close_finished", slog.Bool("closed", closed), slog.Bool("force", force))
	return closed
}

// pollWindowGone waits for the window to disappear or be replaced by a
// different handle matching the same search.
func (t *Terminator) pollWindowGone(ctx context.Context, w winctl.Window, timeout time.Duration) bool {
	deadline := t.clock.Now().Add(timeout)
	for t.clock.Now().Before(deadline) {
		found, ok := t.dir.Find(t.cfg.WindowHint)
		if !ok || found.ID != w.ID {
			return true
		}
		if err := t.clock.Sleep(ctx, t.cfg.PollInterval); err != nil {
			return false
		}
	}
	return false
}

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/input"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/winctl"
)

var locLog = logging.ForComponent(logging.CompSession)

// Outcome classifies a locate operation's result. Soft absences are
// outcomes, not errors: first run, slow startup and unusual UI state are
// all expected.
type Outcome string

const (
	// OutcomeFound means an existing tab whose title contains the marker
	// is now focused.
	OutcomeFound Outcome = "found"

	// OutcomeCreated means no tab matched, a new tagged tab was created,
	// and whatever window the directory now reports is returned. The
	// handle may still be absent if creation silently failed.
	OutcomeCreated Outcome = "created"

	// OutcomeNotFound means no tab matched and creation was not requested,
	// or the target application is entirely unavailable.
	OutcomeNotFound Outcome = "not_found"
)

// Query describes what a locate operation searches for. Immutable input.
type Query struct {
	// Marker is the distinguishing substring embedded in a tab title.
	// Must be non-empty.
	Marker string

	// Timeout bounds the wait for a window to appear after launch.
	Timeout time.Duration

	// CreateIfMissing creates a new tagged tab when no title matches.
	CreateIfMissing bool
}

// Result is a locate operation's typed outcome plus, when one exists, the
// window believed to host the matching tab. The handle is a weak reference:
// it was valid at return time and nothing more.
type Result struct {
	Outcome   Outcome
	Window    winctl.Window
	HasWindow bool

	// Process is non-nil when this call spawned the target application.
	// Ownership transfers to the caller, who must terminate or disown it.
	Process *Process
}

// Config tunes the locator. Zero values select the defaults, which match
// the simulator's stock configuration.
type Config struct {
	// Executable is the target application binary ("notepad.exe", "gedit").
	Executable string

	// WindowHint is the substring identifying the application's windows
	// by title or class. Derived from Executable when empty.
	WindowHint string

	// PollInterval is the window-appearance polling period (default 100ms).
	PollInterval time.Duration

	// SettleDelay lets the UI react to a focus change or gesture before
	// the title is re-read (default 150ms).
	SettleDelay time.Duration

	// MaxCycles caps the tab-cycling loop so it terminates even when
	// cycling never converges (default 50).
	MaxCycles int

	// KeyInterval is the inter-key delay for typed content (default 10ms).
	KeyInterval time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.WindowHint == "" {
		out.WindowHint = HintFromExecutable(out.Executable)
	}
	if out.PollInterval <= 0 {
		out.PollInterval = 100 * time.Millisecond
	}
	if out.SettleDelay <= 0 {
		out.SettleDelay = 150 * time.Millisecond
	}
	if out.MaxCycles <= 0 {
		out.MaxCycles = 50
	}
	if out.KeyInterval <= 0 {
		out.KeyInterval = 10 * time.Millisecond
	}
	return out
}

// HintFromExecutable derives a window-matching substring from an executable
// name: "notepad.exe" -> "Notepad", "gedit" -> "Gedit". Title bars and
// window classes conventionally capitalize the application name.
func HintFromExecutable(executable string) string {
	base := filepath.Base(executable)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		return ""
	}
	r := []rune(base)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Locator finds or creates the tagged document session inside the target
// application. Single-actor precondition: during the cycling loop the
// locator assumes exclusive control of the foreground window, since tab
// gestures race with any other process injecting input. Callers serialize
// invocations.
type Locator struct {
	dir    *winctl.Directory
	inj    input.Injector
	clock  Clock
	launch func(executable string, args ...string) (*Process, error)
	cfg    Config
}

// NewLocator builds a locator over the given capability providers.
func NewLocator(dir *winctl.Directory, inj input.Injector, cfg Config) *Locator {
	return &Locator{dir: dir, inj: inj, clock: realClock{}, launch: Launch, cfg: cfg.withDefaults()}
}

// EnsureWindow guarantees the target application has a window, launching it
// if necessary, and polls for the window up to timeout.
//
// Returns (window, true, nil, nil) for an already-open application: an
// existing window is never considered owned. After a launch it returns the
// new process alongside whatever window appeared; on timeout the window is
// absent but the process is still handed back so the caller can clean it
// up later. Only a spawn failure (LaunchError) or cancellation is an error.
func (l *Locator) EnsureWindow(ctx context.Context, timeout time.Duration) (winctl.Window, bool, *Process, error) {
	if w, ok := l.dir.Find(l.cfg.WindowHint); ok {
		return w, true, nil, nil
	}

	proc, err := l.launch(l.cfg.Executable)
	if err != nil {
		return winctl.Window{}, false, nil, err
	}

	if !l.dir.Available() {
		// Degraded mode: no introspection means no handle, by design.
		// The process is still useful to the caller for teardown.
		locLog.Debug("ensure_window_degraded", slog.String("executable", l.cfg.Executable))
		return winctl.Window{}, false, proc, nil
	}

	deadline := l.clock.Now().Add(timeout)
	for l.clock.Now().Before(deadline) {
		if w, ok := l.dir.Find(l.cfg.WindowHint); ok {
			return w, true, proc, nil
		}
		if err := l.clock.Sleep(ctx, l.cfg.PollInterval); err != nil {
			return winctl.Window{}, false, proc, err
		}
	}

	// The process may still be starting; soft failure, caller decides.
	locLog.Debug("ensure_window_timeout", slog.Duration("timeout", timeout))
	return winctl.Window{}, false, proc, nil
}

// Locate runs the session state machine: ensure a window, then cycle the
// application's tabs looking for one whose title contains the marker,
// creating a tagged tab when asked to.
//
// The search leaves the found tab focused. Duplicate titles across tabs
// are indistinguishable; the first occurrence wins. Cycling stops as soon
// as an observed title repeats, which can end the search early when
// distinct tabs share a title — a known limitation of title-only identity.
func (l *Locator) Locate(ctx context.Context, q Query) (Result, error) {
	if q.Marker == "" {
		return Result{Outcome: OutcomeNotFound}, errors.New("marker must not be empty")
	}

	w, hasWindow, proc, err := l.EnsureWindow(ctx, q.Timeout)
	if err != nil {
		return Result{Outcome: OutcomeNotFound, Process: proc}, err
	}
	if !hasWindow && proc == nil {
		// Target application entirely unavailable.
		return Result{Outcome: OutcomeNotFound}, nil
	}

	res := Result{Window: w, HasWindow: hasWindow, Process: proc}

	// Best-effort focus, then let the UI settle before reading the title.
	l.dir.Focus(w)
	if err := l.clock.Sleep(ctx, l.cfg.SettleDelay); err != nil {
		res.Outcome = OutcomeNotFound
		return res, err
	}

	title := l.dir.Title(w)
	if strings.Contains(title, q.Marker) {
		// Already on the correct tab: no cycling, no gestures.
		res.Outcome = OutcomeFound
		return res, nil
	}

	found, err := l.cycleTabs(ctx, w, q.Marker, title)
	if err != nil {
		res.Outcome = OutcomeNotFound
		return res, err
	}
	if found {
		res.Outcome = OutcomeFound
		return res, nil
	}

	if !q.CreateIfMissing {
		res.Outcome = OutcomeNotFound
		return res, nil
	}

	return l.createTab(ctx, q, res)
}

// cycleTabs drives the next-tab gesture until the marker shows up in the
// window title, an observed title repeats (the tab set wrapped), or the
// iteration cap is hit. In degraded mode titles read as empty, so the loop
// exits on the first repeat after one blind gesture.
func (l *Locator) cycleTabs(ctx context.Context, w winctl.Window, marker, title string) (bool, error) {
	seen := map[string]bool{title: true}

	for i := 0; i < l.cfg.MaxCycles; i++ {
		if err := l.gesture("ctrl", "Tab"); err != nil {
			return false, err
		}
		if err := l.clock.Sleep(ctx, l.cfg.SettleDelay); err != nil {
			return false, err
		}

		title = l.dir.Title(w)
		if strings.Contains(title, marker) {
			locLog.Debug("tab_found", slog.Int("cycles", i+1))
			return true, nil
		}
		if seen[title] {
			// Wrapped around: the marker is not among existing tabs.
			locLog.Debug("tab_cycle_wrapped", slog.Int("cycles", i+1))
			return false, nil
		}
		seen[title] = true
	}

	locLog.Debug("tab_cycle_cap_reached", slog.Int("cap", l.cfg.MaxCycles))
	return false, nil
}

// createTab opens a new tab, types the marker so future searches find it,
// commits the content, then re-queries the directory since the title has
// likely changed. Creation is best effort end to end: the returned handle
// may be absent when it silently failed.
func (l *Locator) createTab(ctx context.Context, q Query, res Result) (Result, error) {
	// Primary gesture is Ctrl+T (tabbed editors); Ctrl+N is the fallback
	// for editors that only open new windows/documents.
	if err := l.gesture("ctrl", "t"); err != nil {
		if errors.Is(err, input.ErrCapabilityUnavailable) {
			res.Outcome = OutcomeNotFound
			return res, err
		}
		_ = l.inj.Hotkey("ctrl", "n")
	}
	if err := l.clock.Sleep(ctx, l.cfg.SettleDelay); err != nil {
		res.Outcome = OutcomeCreated
		return res, err
	}

	// Tag the fresh tab with the marker so the next locate finds it.
	if err := l.inj.TypeText(q.Marker, l.cfg.KeyInterval); err != nil && errors.Is(err, input.ErrCapabilityUnavailable) {
		res.Outcome = OutcomeNotFound
		return res, err
	}
	_ = l.inj.PressKey("Return", 2, l.cfg.KeyInterval)

	if err := l.clock.Sleep(ctx, l.cfg.SettleDelay); err != nil {
		res.Outcome = OutcomeCreated
		return res, err
	}

	// The title changed; the old handle is stale by definition. Re-query
	// and re-focus whatever the directory reports now.
	res.Window, res.HasWindow = l.dir.Find(l.cfg.WindowHint)
	if res.HasWindow {
		l.dir.Focus(res.Window)
	}
	res.Outcome = OutcomeCreated
	locLog.Info("tab_created", slog.String("marker", q.Marker), slog.Bool("window", res.HasWindow))
	return res, nil
}

// gesture sends a hotkey. Capability absence is the one hard failure; any
// other dispatch error is swallowed as "this attempt failed".
func (l *Locator) gesture(keys ...string) error {
	err := l.inj.Hotkey(keys...)
	if err == nil {
		return nil
	}
	if errors.Is(err, input.ErrCapabilityUnavailable) {
		return fmt.Errorf("tab gesture: %w", err)
	}
	locLog.Debug("gesture_failed", slog.String("keys", strings.Join(keys, "+")), slog.String("error", err.Error()))
	return nil
}

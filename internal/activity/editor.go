package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/session"
)

// windowLocator is the slice of the session locator the editor activity
// needs.
type windowLocator interface {
	Locate(ctx context.Context, q session.Query) (session.Result, error)
}

// EditorConfig tunes the editor activity.
type EditorConfig struct {
	// Marker identifies the session tab (default "[Activity Simulation]").
	Marker string

	// Timeout bounds the wait for the editor window (default 5s).
	Timeout time.Duration

	// CreateIfMissing creates the tagged tab when absent. Nil means the
	// default, which is to create.
	CreateIfMissing *bool

	// SymbolCount is how many random symbols to type per run (default 8).
	SymbolCount int

	// FocusDelay lets focus land before typing starts (default 200ms).
	FocusDelay time.Duration

	// EraseAfter removes the typed symbols again, keeping the session tab's
	// content stable across runs.
	EraseAfter bool
}

func (c *EditorConfig) withDefaults() EditorConfig {
	out := *c
	if out.Marker == "" {
		out.Marker = "[Activity Simulation]"
	}
	if out.Timeout <= 0 {
		out.Timeout = 5 * time.Second
	}
	if out.SymbolCount <= 0 {
		out.SymbolCount = 8
	}
	if out.FocusDelay <= 0 {
		out.FocusDelay = 200 * time.Millisecond
	}
	if out.CreateIfMissing == nil {
		yes := true
		out.CreateIfMissing = &yes
	}
	return out
}

// Editor locates (or creates) the tagged editor tab, then types a short
// burst of random symbols into it.
type Editor struct {
	loc   windowLocator
	typer *Typer
	clock session.Clock
	cfg   EditorConfig
	log   *slog.Logger
}

// NewEditor builds the editor activity over a locator and a typer.
func NewEditor(loc *session.Locator, typer *Typer, cfg EditorConfig) *Editor {
	return &Editor{
		loc:   loc,
		typer: typer,
		clock: session.SystemClock(),
		cfg:   cfg.withDefaults(),
		log:   logging.ForComponent(logging.CompActivity),
	}
}

func (e *Editor) Name() string { return KindEditor }

func (e *Editor) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	res, err := e.loc.Locate(ctx, session.Query{
		Marker:          e.cfg.Marker,
		Timeout:         e.cfg.Timeout,
		CreateIfMissing: *e.cfg.CreateIfMissing,
	})
	report := &Report{
		Kind:        KindEditor,
		Outcome:     string(res.Outcome),
		WindowID:    res.Window.ID,
		WindowTitle: res.Window.Title,
	}
	if err != nil {
		report.Duration = time.Since(start)
		return report, err
	}
	if res.Outcome == session.OutcomeNotFound {
		// No tab to type into; still a completed run, not an error.
		report.Duration = time.Since(start)
		return report, nil
	}

	// Focus needs a beat to land before keystrokes go anywhere useful.
	if err := e.clock.Sleep(ctx, e.cfg.FocusDelay); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	typed, err := e.typer.TypeRandom(ctx, e.cfg.SymbolCount)
	if err != nil {
		report.Detail = "typed " + typed
		report.Duration = time.Since(start)
		return report, err
	}
	if e.cfg.EraseAfter {
		if err := e.typer.Erase(ctx, len(typed)); err != nil {
			report.Detail = "typed " + typed + " (erase interrupted)"
			report.Duration = time.Since(start)
			return report, err
		}
	}

	e.log.Debug("editor_activity",
		slog.String("outcome", string(res.Outcome)),
		slog.Int("typed", len(typed)))
	report.Detail = "typed " + typed
	report.Duration = time.Since(start)
	return report, nil
}

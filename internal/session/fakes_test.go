package session

import (
	"context"
	"strings"
	"time"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/winctl"
)

// fakeEditor simulates a tabbed editor: one top-level window whose title is
// the active tab's title. It implements both the introspector and the
// injector so gestures visibly mutate the observable window state, the way
// they do against a real editor.
type fakeEditor struct {
	unavailable bool

	present       bool
	windowID      string
	class         string
	tabs          []string
	active        int
	pendingAppear int // List calls until a launched window appears (0 = immediately)
	launched      bool

	pendingClose int // List calls after a close request until the window is gone
	closeAsked   bool
	ignoreClose  bool
	replaceOnGo  string // when set, close replaces the window id instead of removing it

	gestures []string
	typed    []string
	pressed  []string
	injErr   error
	focused  int
}

func newFakeEditor(tabs ...string) *fakeEditor {
	return &fakeEditor{
		present:  true,
		windowID: "w1",
		class:    "Notepad",
		tabs:     tabs,
	}
}

func (f *fakeEditor) title() string {
	if len(f.tabs) == 0 {
		return ""
	}
	return f.tabs[f.active]
}

// --- winctl.Introspector ---

func (f *fakeEditor) List() ([]winctl.Window, error) {
	if f.unavailable {
		return nil, winctl.ErrCapabilityUnavailable
	}
	if !f.present && f.launched {
		if f.pendingAppear > 0 {
			f.pendingAppear--
		}
		if f.pendingAppear == 0 {
			f.present = true
		}
	}
	if f.present && f.closeAsked && !f.ignoreClose {
		if f.pendingClose > 0 {
			f.pendingClose--
		}
		if f.pendingClose == 0 {
			if f.replaceOnGo != "" {
				f.windowID = f.replaceOnGo
				f.closeAsked = false
			} else {
				f.present = false
			}
		}
	}
	if !f.present {
		return nil, nil
	}
	return []winctl.Window{{ID: f.windowID, Title: f.title(), Class: f.class}}, nil
}

func (f *fakeEditor) Title(id string) (string, error) {
	if f.unavailable {
		return "", winctl.ErrCapabilityUnavailable
	}
	if !f.present || id != f.windowID {
		return "", winctl.ErrCapabilityUnavailable
	}
	return f.title(), nil
}

func (f *fakeEditor) Raise(id string) error {
	f.focused++
	return nil
}

func (f *fakeEditor) RequestClose(id string) error {
	f.closeAsked = true
	if f.pendingClose == 0 {
		f.pendingClose = 1
	}
	return nil
}

// --- input.Injector ---

func (f *fakeEditor) Hotkey(keys ...string) error {
	if f.injErr != nil {
		return f.injErr
	}
	combo := strings.Join(keys, "+")
	f.gestures = append(f.gestures, combo)
	switch combo {
	case "ctrl+Tab":
		if len(f.tabs) > 0 {
			f.active = (f.active + 1) % len(f.tabs)
		}
	case "ctrl+t":
		f.tabs = append(f.tabs, "Untitled")
		f.active = len(f.tabs) - 1
	}
	return nil
}

func (f *fakeEditor) TypeText(text string, _ time.Duration) error {
	if f.injErr != nil {
		return f.injErr
	}
	f.typed = append(f.typed, text)
	// Editors title the tab after its content's first line.
	if len(f.tabs) > 0 {
		f.tabs[f.active] = text
	}
	return nil
}

func (f *fakeEditor) PressKey(key string, presses int, _ time.Duration) error {
	if f.injErr != nil {
		return f.injErr
	}
	f.pressed = append(f.pressed, key)
	return nil
}

func (f *fakeEditor) nextTabGestures() int {
	n := 0
	for _, g := range f.gestures {
		if g == "ctrl+Tab" {
			n++
		}
	}
	return n
}

func (f *fakeEditor) newTabGestures() int {
	n := 0
	for _, g := range f.gestures {
		if g == "ctrl+t" || g == "ctrl+n" {
			n++
		}
	}
	return n
}

// fakeClock advances virtual time on every sleep, so poll loops that would
// take seconds of wall-clock time run instantly.
type fakeClock struct {
	now         time.Time
	slept       []time.Duration
	cancelAfter int // when > 0, invoke cancel after this many sleeps
	cancel      context.CancelFunc
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	if c.cancelAfter > 0 {
		c.cancelAfter--
		if c.cancelAfter == 0 && c.cancel != nil {
			c.cancel()
		}
	}
	return nil
}

func (c *fakeClock) totalSlept() time.Duration {
	var total time.Duration
	for _, d := range c.slept {
		total += d
	}
	return total
}

// fakeProcess stands in for an owned child process.
type fakeProcess struct {
	owned      bool
	alive      bool
	dieOnTerm  bool
	dieOnKill  bool
	termErr    error
	killErr    error
	terminated int
	killed     int
}

func (p *fakeProcess) Alive() bool { return p.alive }

func (p *fakeProcess) Terminate() error {
	p.terminated++
	if p.termErr != nil {
		return p.termErr
	}
	if p.dieOnTerm {
		p.alive = false
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.killed++
	if p.killErr != nil {
		return p.killErr
	}
	if p.dieOnKill {
		p.alive = false
	}
	return nil
}

func (p *fakeProcess) WaitExit(ctx context.Context, timeout time.Duration) bool {
	return !p.alive
}

func (p *fakeProcess) Owned() bool { return p.owned }

// newTestLocator wires a locator to the fake editor and fake clock, with a
// launch stub that marks the editor as started.
func newTestLocator(ed *fakeEditor, clock *fakeClock) *Locator {
	l := NewLocator(winctl.NewDirectory(ed), ed, Config{
		Executable: "notepad.exe",
		WindowHint: "Notepad",
	})
	l.clock = clock
	l.launch = func(executable string, args ...string) (*Process, error) {
		ed.launched = true
		return &Process{executable: executable, done: make(chan struct{})}, nil
	}
	return l
}

package winctl

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
)

var winLog = logging.ForComponent(logging.CompWindow)

// ErrCapabilityUnavailable indicates the host cannot enumerate windows at
// all (no display server, no helper tool). This is a supported degraded
// mode: callers proceed without a handle rather than aborting.
var ErrCapabilityUnavailable = errors.New("window introspection unavailable")

// Window describes a top-level OS window at the moment of enumeration.
// The ID is a weak reference into OS-managed state: the window may close or
// be replaced at any time, so callers re-query the Directory instead of
// trusting a Window across a time gap.
type Window struct {
	ID    string
	Title string
	Class string
}

// Introspector is the OS capability needed to observe and nudge windows.
// Implementations live behind build tags; NewIntrospector picks one.
type Introspector interface {
	// List enumerates visible, enabled top-level windows in enumeration
	// order. A single window's inspection failure is skipped, not
	// propagated; List errors only when the capability is missing outright.
	List() ([]Window, error)

	// Title re-reads the current title of a window.
	Title(id string) (string, error)

	// Raise restores the window if minimized and requests foreground
	// activation. The OS may decline to steal focus.
	Raise(id string) error

	// RequestClose posts a polite close request to the window.
	RequestClose(id string) error
}

// Directory finds windows by title/class substring over an Introspector.
type Directory struct {
	intro Introspector
}

// NewDirectory creates a Directory over the given introspector.
// A nil introspector yields a directory that is permanently unavailable.
func NewDirectory(in Introspector) *Directory {
	return &Directory{intro: in}
}

// Available reports whether window introspection works on this host.
func (d *Directory) Available() bool {
	if d.intro == nil {
		return false
	}
	_, err := d.intro.List()
	return !errors.Is(err, ErrCapabilityUnavailable)
}

// List returns all visible top-level windows. Callers that treat absence as
// a degraded mode (Find, Focus paths) ignore the error; callers with a
// status surface report it.
func (d *Directory) List() ([]Window, error) {
	if d.intro == nil {
		return nil, ErrCapabilityUnavailable
	}
	wins, err := d.intro.List()
	if err != nil {
		winLog.Debug("enumeration_failed", slog.String("error", err.Error()))
		return nil, err
	}
	return wins, nil
}

// Find returns the first window whose title or class contains substr
// (case-sensitive). Returns false when no match or introspection is
// unavailable. No side effects.
func (d *Directory) Find(substr string) (Window, bool) {
	wins, _ := d.List()
	for _, w := range wins {
		if strings.Contains(w.Title, substr) || strings.Contains(w.Class, substr) {
			return w, true
		}
	}
	return Window{}, false
}

// Title re-reads a window's current title. Empty string when the window is
// gone or introspection is unavailable.
func (d *Directory) Title(w Window) string {
	if d.intro == nil {
		return ""
	}
	title, err := d.intro.Title(w.ID)
	if err != nil {
		return ""
	}
	return title
}

// Focus brings the window to the foreground, best effort. False is not an
// error: the OS refusing to steal focus from another application is a
// normal outcome.
func (d *Directory) Focus(w Window) bool {
	if d.intro == nil || w.ID == "" {
		return false
	}
	if err := d.intro.Raise(w.ID); err != nil {
		winLog.Debug("focus_declined", slog.String("window", w.ID), slog.String("error", err.Error()))
		return false
	}
	return true
}

// RequestClose posts a polite close request. False when the request could
// not be delivered; the window may still ignore a delivered request.
func (d *Directory) RequestClose(w Window) bool {
	if d.intro == nil || w.ID == "" {
		return false
	}
	if err := d.intro.RequestClose(w.ID); err != nil {
		winLog.Debug("close_request_failed", slog.String("window", w.ID), slog.String("error", err.Error()))
		return false
	}
	return true
}

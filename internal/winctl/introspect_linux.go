//go:build linux

package winctl

import (
	"os/exec"
	"strings"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/platform"
)

// NewIntrospector returns the X11 introspector when xdotool is usable,
// otherwise the unavailable stub. Wayland compositors do not expose a
// global window list, so they get the stub too.
func NewIntrospector() Introspector {
	if platform.Display() == platform.DisplayX11 && platform.HasTool("xdotool") {
		return &x11Introspector{}
	}
	return unavailableIntrospector{}
}

// x11Introspector shells out to xdotool/xprop. Every per-window query can
// fail independently (the window may vanish between enumeration and
// inspection); those failures skip the window and continue.
type x11Introspector struct{}

func (x *x11Introspector) List() ([]Window, error) {
	// --onlyvisible filters unmapped windows; searching for any name
	// matches every titled top-level window.
	out, err := exec.Command("xdotool", "search", "--onlyvisible", "--name", ".").Output()
	if err != nil {
		// xdotool present but the search failed (no display, no matches).
		// Exit status 1 with empty output means "no matches", not an error.
		if len(strings.TrimSpace(string(out))) == 0 {
			return nil, nil
		}
		return nil, err
	}

	var wins []Window
	for _, id := range strings.Fields(string(out)) {
		title, err := x.Title(id)
		if err != nil {
			continue // window vanished mid-enumeration
		}
		wins = append(wins, Window{ID: id, Title: title, Class: windowClass(id)})
	}
	return wins, nil
}

func (x *x11Introspector) Title(id string) (string, error) {
	out, err := exec.Command("xdotool", "getwindowname", id).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (x *x11Introspector) Raise(id string) error {
	// windowmap restores a minimized (iconified) window; windowactivate
	// asks the WM for foreground focus. The WM may decline.
	_ = exec.Command("xdotool", "windowmap", id).Run()
	return exec.Command("xdotool", "windowactivate", id).Run()
}

func (x *x11Introspector) RequestClose(id string) error {
	// Sends WM_DELETE_WINDOW, the polite close protocol: the application
	// may prompt to save and may refuse.
	return exec.Command("xdotool", "windowclose", id).Run()
}

// windowClass reads WM_CLASS via xprop. Best effort: empty on any failure.
func windowClass(id string) string {
	out, err := exec.Command("xprop", "-id", id, "WM_CLASS").Output()
	if err != nil {
		return ""
	}
	// Format: WM_CLASS(STRING) = "instance", "Class"
	line := string(out)
	if i := strings.LastIndex(line, `"`); i > 0 {
		if j := strings.LastIndex(line[:i], `"`); j >= 0 {
			return line[j+1 : i]
		}
	}
	return ""
}

//go:build darwin

package winctl

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/platform"
)

// NewIntrospector returns the AppleScript-backed introspector when
// osascript is present, otherwise the unavailable stub.
func NewIntrospector() Introspector {
	if platform.HasTool("osascript") {
		return &quartzIntrospector{}
	}
	return unavailableIntrospector{}
}

// quartzIntrospector drives System Events via osascript. Window IDs are
// "app name/window name" pairs since Quartz gives scripts no stable
// numeric handle; identity is title-based, matching the Directory's
// substring model.
type quartzIntrospector struct{}

const listScript = `
tell application "System Events"
	set out to ""
	repeat with proc in (application processes whose visible is true)
		try
			repeat with w in (windows of proc)
				set out to out & (name of proc) & (ASCII character 9) & (name of w) & linefeed
			end repeat
		end try
	end repeat
	return out
end tell
`

func (q *quartzIntrospector) List() ([]Window, error) {
	out, err := exec.Command("osascript", "-e", listScript).Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}
	var wins []Window
	for _, line := range strings.Split(string(out), "\n") {
		app, title, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		wins = append(wins, Window{ID: app + "/" + title, Title: title, Class: app})
	}
	return wins, nil
}

func (q *quartzIntrospector) Title(id string) (string, error) {
	app, _, _ := strings.Cut(id, "/")
	script := fmt.Sprintf(`tell application "System Events" to get name of front window of application process %q`, app)
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (q *quartzIntrospector) Raise(id string) error {
	app, _, _ := strings.Cut(id, "/")
	script := fmt.Sprintf(`tell application %q to activate`, app)
	return exec.Command("osascript", "-e", script).Run()
}

func (q *quartzIntrospector) RequestClose(id string) error {
	app, title, _ := strings.Cut(id, "/")
	script := fmt.Sprintf(`tell application "System Events" to click button 1 of window %q of application process %q`, title, app)
	return exec.Command("osascript", "-e", script).Run()
}

//go:build darwin

package input

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/platform"
)

// NewInjector returns the AppleScript-backed injector when osascript is
// present, otherwise the unavailable stub.
func NewInjector() Injector {
	if platform.HasTool("osascript") {
		return &quartzInjector{}
	}
	return unavailableInjector{}
}

// NewPointer returns the cliclick-backed pointer when present. osascript
// cannot move the cursor, so without cliclick mouse activity degrades.
func NewPointer() Pointer {
	if platform.HasTool("cliclick") {
		return &cliclickPointer{}
	}
	return unavailablePointer{}
}

type quartzInjector struct{}

// macOS key codes for the named keys the simulator sends.
var darwinKeyCodes = map[string]int{
	"Return":    36,
	"Tab":       48,
	"BackSpace": 51,
	"t":         17,
	"n":         45,
}

func (q *quartzInjector) TypeText(text string, interval time.Duration) error {
	if text == "" {
		return nil
	}
	// System Events keystroke types the whole string; osascript offers no
	// per-key delay, so interval is approximated by chunking per character
	// only when an interval is requested.
	if interval <= 0 {
		script := fmt.Sprintf(`tell application "System Events" to keystroke %q`, text)
		return exec.Command("osascript", "-e", script).Run()
	}
	for _, r := range text {
		script := fmt.Sprintf(`tell application "System Events" to keystroke %q`, string(r))
		if err := exec.Command("osascript", "-e", script).Run(); err != nil {
			return err
		}
		time.Sleep(interval)
	}
	return nil
}

func (q *quartzInjector) PressKey(key string, presses int, interval time.Duration) error {
	code, ok := darwinKeyCodes[key]
	if !ok {
		return fmt.Errorf("unmapped key %q", key)
	}
	for i := 0; i < presses; i++ {
		script := fmt.Sprintf(`tell application "System Events" to key code %d`, code)
		if err := exec.Command("osascript", "-e", script).Run(); err != nil {
			return err
		}
		if interval > 0 && i < presses-1 {
			time.Sleep(interval)
		}
	}
	return nil
}

func (q *quartzInjector) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	final := keys[len(keys)-1]
	code, ok := darwinKeyCodes[final]
	if !ok {
		return fmt.Errorf("unmapped key %q", final)
	}
	var mods []string
	for _, k := range keys[:len(keys)-1] {
		switch k {
		case "ctrl":
			mods = append(mods, "control down")
		case "cmd":
			mods = append(mods, "command down")
		case "shift":
			mods = append(mods, "shift down")
		case "alt":
			mods = append(mods, "option down")
		}
	}
	script := fmt.Sprintf(`tell application "System Events" to key code %d using {%s}`,
		code, strings.Join(mods, ", "))
	return exec.Command("osascript", "-e", script).Run()
}

// cliclickPointer reads/moves the cursor via the cliclick helper.
type cliclickPointer struct{}

func (c *cliclickPointer) CursorPos() (int, int, error) {
	out, err := exec.Command("cliclick", "p").Output()
	if err != nil {
		return 0, 0, err
	}
	// Output: "123,456"
	xs, ys, ok := strings.Cut(strings.TrimSpace(string(out)), ",")
	if !ok {
		return 0, 0, fmt.Errorf("unexpected cliclick output %q", out)
	}
	x, _ := strconv.Atoi(xs)
	y, _ := strconv.Atoi(ys)
	return x, y, nil
}

func (c *cliclickPointer) MoveTo(x, y int) error {
	return exec.Command("cliclick", fmt.Sprintf("m:%d,%d", x, y)).Run()
}

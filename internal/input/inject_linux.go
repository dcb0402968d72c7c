//go:build linux

package input

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/platform"
)

// NewInjector returns the xdotool-backed injector when usable, otherwise
// the unavailable stub.
func NewInjector() Injector {
	if platform.Display() == platform.DisplayX11 && platform.HasTool("xdotool") {
		return &x11Injector{}
	}
	return unavailableInjector{}
}

// NewPointer returns the xdotool-backed pointer when usable.
func NewPointer() Pointer {
	if platform.Display() == platform.DisplayX11 && platform.HasTool("xdotool") {
		return &x11Injector{}
	}
	return unavailablePointer{}
}

// x11Injector shells out to xdotool. Keystrokes land in whatever window
// holds focus, which is why the locator focuses before typing.
type x11Injector struct{}

func (x *x11Injector) TypeText(text string, interval time.Duration) error {
	if text == "" {
		return nil
	}
	delay := strconv.FormatInt(interval.Milliseconds(), 10)
	return exec.Command("xdotool", "type", "--delay", delay, text).Run()
}

func (x *x11Injector) PressKey(key string, presses int, interval time.Duration) error {
	if presses <= 0 {
		return nil
	}
	delay := strconv.FormatInt(interval.Milliseconds(), 10)
	return exec.Command("xdotool", "key", "--repeat", strconv.Itoa(presses),
		"--repeat-delay", delay, key).Run()
}

func (x *x11Injector) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return exec.Command("xdotool", "key", strings.Join(keys, "+")).Run()
}

func (x *x11Injector) CursorPos() (int, int, error) {
	out, err := exec.Command("xdotool", "getmouselocation", "--shell").Output()
	if err != nil {
		return 0, 0, err
	}
	// --shell output: X=123\nY=456\nSCREEN=0\nWINDOW=...
	var xPos, yPos int
	for _, line := range strings.Split(string(out), "\n") {
		if v, ok := strings.CutPrefix(line, "X="); ok {
			xPos, _ = strconv.Atoi(strings.TrimSpace(v))
		}
		if v, ok := strings.CutPrefix(line, "Y="); ok {
			yPos, _ = strconv.Atoi(strings.TrimSpace(v))
		}
	}
	return xPos, yPos, nil
}

func (x *x11Injector) MoveTo(xPos, yPos int) error {
	return exec.Command("xdotool", "mousemove", fmt.Sprint(xPos), fmt.Sprint(yPos)).Run()
}

package input

import (
	"errors"
	"time"
)

// ErrCapabilityUnavailable indicates the host cannot synthesize input.
// Unlike window introspection, this is a hard dependency for tab cycling
// and creation: those operations fail with this error instead of degrading.
var ErrCapabilityUnavailable = errors.New("input injection unavailable")

// Injector is the OS capability to synthesize keyboard input into the
// focused window. A gesture already handed to the OS cannot be retracted;
// cancellation only stops further gestures.
type Injector interface {
	// TypeText types a literal string with the given inter-key delay.
	TypeText(text string, interval time.Duration) error

	// PressKey presses a named key (e.g. "Return", "BackSpace") the given
	// number of times.
	PressKey(key string, presses int, interval time.Duration) error

	// Hotkey presses a key combination, e.g. ("ctrl", "Tab").
	Hotkey(keys ...string) error
}

// Pointer is the OS capability to read and move the mouse cursor.
type Pointer interface {
	CursorPos() (x, y int, err error)
	MoveTo(x, y int) error
}

// Package activity implements the periodic user-presence activities: a small
// mouse jiggle and typing into the tagged editor session.
package activity

import (
	"context"
	"time"
)

// Activity kinds as stored in the run history.
const (
	KindMouse  = "mouse"
	KindEditor = "editor"
)

// Report describes one completed activity run for logging and history.
type Report struct {
	Kind        string
	Outcome     string
	WindowID    string
	WindowTitle string
	Detail      string
	Duration    time.Duration
}

// Activity is one simulated user action. Run is invoked once per scheduler
// tick and must honor ctx cancellation between injected gestures.
type Activity interface {
	Name() string
	Run(ctx context.Context) (*Report, error)
}

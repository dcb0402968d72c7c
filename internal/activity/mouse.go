package activity

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/input"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
)

// Jiggle moves the cursor by a small random offset each run. The offset is
// never (0, 0): an activity that provably did nothing defeats the point.
type Jiggle struct {
	ptr       input.Pointer
	maxOffset int
	randInt   func(n int) int
	log       *slog.Logger
}

// NewJiggle builds the mouse activity. maxOffset is the largest per-axis
// displacement in pixels.
func NewJiggle(ptr input.Pointer, maxOffset int) *Jiggle {
	if maxOffset <= 0 {
		maxOffset = 5
	}
	return &Jiggle{
		ptr:       ptr,
		maxOffset: maxOffset,
		randInt:   rand.Intn,
		log:       logging.ForComponent(logging.CompActivity),
	}
}

func (j *Jiggle) Name() string { return KindMouse }

func (j *Jiggle) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	x, y, err := j.ptr.CursorPos()
	if err != nil {
		return nil, fmt.Errorf("reading cursor position: %w", err)
	}

	dx := j.randInt(2*j.maxOffset+1) - j.maxOffset
	dy := j.randInt(2*j.maxOffset+1) - j.maxOffset
	if dx == 0 && dy == 0 {
		dx = 1
	}

	if err := j.ptr.MoveTo(x+dx, y+dy); err != nil {
		return nil, fmt.Errorf("moving cursor: %w", err)
	}

	j.log.Debug("mouse_jiggle", slog.Int("dx", dx), slog.Int("dy", dy))
	return &Report{
		Kind:     KindMouse,
		Outcome:  "ok",
		Detail:   fmt.Sprintf("moved (%+d, %+d)", dx, dy),
		Duration: time.Since(start),
	}, nil
}

package activity

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/input"
)

// symbolPool is the default character set for random typing: digits, letters
// and punctuation, nothing that triggers editor shortcuts on its own.
const symbolPool = "0123456789" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!#$%&()*+,-./:;<=>?@[]^_{|}~"

// Typer sends random printable characters to the focused window, pacing each
// key through a rate limiter so the burst looks like typing rather than a
// paste.
type Typer struct {
	inj     input.Injector
	limiter *rate.Limiter
	pool    string
	randInt func(n int) int
}

// NewTyper builds a typer with the given inter-key delay.
func NewTyper(inj input.Injector, keyInterval time.Duration) *Typer {
	if keyInterval <= 0 {
		keyInterval = 10 * time.Millisecond
	}
	return &Typer{
		inj:     inj,
		limiter: rate.NewLimiter(rate.Every(keyInterval), 1),
		pool:    symbolPool,
		randInt: rand.Intn,
	}
}

// TypeRandom types count random symbols and returns the string actually sent.
// On error the returned string holds whatever made it out before the failure.
func (t *Typer) TypeRandom(ctx context.Context, count int) (string, error) {
	if count <= 0 {
		return "", nil
	}
	typed := make([]byte, 0, count)
	for i := 0; i < count; i++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return string(typed), err
		}
		ch := t.pool[t.randInt(len(t.pool))]
		if err := t.inj.TypeText(string(ch), 0); err != nil {
			return string(typed), err
		}
		typed = append(typed, ch)
	}
	return string(typed), nil
}

// Erase sends count backspaces at the same pace, undoing a previous burst.
func (t *Typer) Erase(ctx context.Context, count int) error {
	if count <= 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := t.inj.PressKey("BackSpace", 1, 0); err != nil {
			return err
		}
	}
	return nil
}

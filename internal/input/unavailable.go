package input

import "time"

type unavailableInjector struct{}

func (unavailableInjector) TypeText(string, time.Duration) error { return ErrCapabilityUnavailable }

func (unavailableInjector) PressKey(string, int, time.Duration) error {
	return ErrCapabilityUnavailable
}

func (unavailableInjector) Hotkey(...string) error { return ErrCapabilityUnavailable }

type unavailablePointer struct{}

func (unavailablePointer) CursorPos() (int, int, error) { return 0, 0, ErrCapabilityUnavailable }

func (unavailablePointer) MoveTo(int, int) error { return ErrCapabilityUnavailable }

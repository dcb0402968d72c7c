//go:build !linux && !darwin

package input

// NewInjector returns the unavailable stub on unsupported platforms.
func NewInjector() Injector {
	return unavailableInjector{}
}

// NewPointer returns the unavailable stub on unsupported platforms.
func NewPointer() Pointer {
	return unavailablePointer{}
}

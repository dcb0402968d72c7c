//go:build !linux && !darwin

package winctl

// NewIntrospector returns the unavailable stub on platforms without a
// supported windowing backend. The simulator still launches and types
// blind (degraded mode).
func NewIntrospector() Introspector {
	return unavailableIntrospector{}
}

package winctl

// unavailableIntrospector is the degraded-mode backend: every operation
// reports ErrCapabilityUnavailable.
type unavailableIntrospector struct{}

func (unavailableIntrospector) List() ([]Window, error) { return nil, ErrCapabilityUnavailable }

func (unavailableIntrospector) Title(string) (string, error) { return "", ErrCapabilityUnavailable }

func (unavailableIntrospector) Raise(string) error { return ErrCapabilityUnavailable }

func (unavailableIntrospector) RequestClose(string) error { return ErrCapabilityUnavailable }

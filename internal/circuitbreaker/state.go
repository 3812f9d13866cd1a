package circuitbreaker

type State int

const (
	// Requests pass through
	StateClosed State = iota

	// Requests fail fast with ErrCircuitOpen
	StateOpen

	// One probe is let through to test recovery
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

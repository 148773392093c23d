package serialport

// ConnectionState is the lifecycle phase of a Port.
//
// Transitions are CLOSED -> OPENING -> OPEN -> CLOSING -> CLOSED. An open
// failure falls back from OPENING to CLOSED, a close failure from CLOSING
// back to OPEN, and a device loss drops OPEN straight to CLOSED.
type ConnectionState int

const (
	StateClosed ConnectionState = iota
	StateOpening
	StateOpen
	StateClosing
)

// String returns the lowercase state name.
func (s ConnectionState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

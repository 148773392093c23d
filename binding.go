package serialport

// Signals describes the output control line states applied by Set. Fields
// left false deassert the matching line, so callers that only want to flip
// one line should start from the current desired state of all three.
type Signals struct {
	RTS   bool
	DTR   bool
	Break bool
}

// DefaultSignals returns the customary idle line states: RTS and DTR
// asserted, no break condition.
func DefaultSignals() Signals {
	return Signals{RTS: true, DTR: true}
}

// LineState reports the input modem lines as last read from the device.
type LineState struct {
	CTS bool
	DSR bool
	DCD bool
	RI  bool
}

// Notification is one element of a handle's notification stream: either a
// chunk of incoming bytes or a disconnect report. At most one field is set.
type Notification struct {
	Data       []byte
	Disconnect error
}

// Binding performs device I/O on behalf of a Port. The port layer owns all
// state machine and dispatch concerns; a binding only has to turn each call
// into the matching device operation.
//
// Open returns a handle that stays valid until Close. Handles are
// non-negative and zero is a legal value. Notifications returns the
// handle's stream of incoming data and disconnect reports; the binding
// closes the stream channel when the handle is closed. All methods must
// be safe for concurrent use, and a Close that races a blocked operation
// on the same handle must not crash the process.
type Binding interface {
	Open(devicePath string, settings Settings) (Handle, error)
	Write(h Handle, p []byte) (int, error)
	Close(h Handle) error
	Flush(h Handle) error
	Drain(h Handle) error
	Set(h Handle, signals Signals) error
	Get(h Handle) (LineState, error)
	Update(h Handle, settings Settings) error
	Notifications(h Handle) (<-chan Notification, error)
}

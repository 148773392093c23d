package serialport

import "fmt"

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// String returns the lowercase parity name.
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	case ParityMark:
		return "mark"
	case ParitySpace:
		return "space"
	default:
		return "unknown"
	}
}

// ParseParity converts a parity name into its Parity value.
func ParseParity(name string) (Parity, error) {
	switch name {
	case "none", "":
		return ParityNone, nil
	case "odd":
		return ParityOdd, nil
	case "even":
		return ParityEven, nil
	case "mark":
		return ParityMark, nil
	case "space":
		return ParitySpace, nil
	default:
		return ParityNone, &ValidationError{Field: "parity", Message: fmt.Sprintf("unknown mode %q", name)}
	}
}

// FlowControlFlag names one software or hardware flow control behavior.
// A Settings record carries any combination of flags.
type FlowControlFlag string

const (
	FlowXOn    FlowControlFlag = "xon"
	FlowXOff   FlowControlFlag = "xoff"
	FlowXAny   FlowControlFlag = "xany"
	FlowRTSCTS FlowControlFlag = "rtscts"
)

// ParseFlowControl converts flag names into FlowControlFlag values.
func ParseFlowControl(names []string) ([]FlowControlFlag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	flags := make([]FlowControlFlag, 0, len(names))
	for _, name := range names {
		f := FlowControlFlag(name)
		switch f {
		case FlowXOn, FlowXOff, FlowXAny, FlowRTSCTS:
			flags = append(flags, f)
		default:
			return nil, &ValidationError{Field: "flowControl", Message: fmt.Sprintf("unknown flag %q", name)}
		}
	}
	return flags, nil
}

// Settings holds the line parameters applied to a device at open and kept
// current by Update.
type Settings struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	FlowControl []FlowControlFlag
}

// DefaultSettings returns the stock 9600 baud 8N1 configuration with no
// flow control.
func DefaultSettings() Settings {
	return Settings{
		BaudRate: 9600,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
	}
}

// clone returns a copy of s that shares no flow control storage with it.
func (s Settings) clone() Settings {
	out := s
	if s.FlowControl != nil {
		out.FlowControl = append([]FlowControlFlag(nil), s.FlowControl...)
	}
	return out
}

// options collects construction knobs before New validates them.
type options struct {
	settings          Settings
	binding           Binding
	autoOpen          bool
	openCallback      Callback
	dataConsumer      func([]byte)
	disconnectHandler func(error)
}

func defaultOptions() options {
	return options{
		settings: DefaultSettings(),
		autoOpen: true,
	}
}

// Option is a functional option applied by New. Settings changed through
// options are validated once, after all options have run.
type Option func(*options)

// WithBaudRate sets the line speed in bits per second.
func WithBaudRate(rate int) Option {
	return func(o *options) {
		o.settings.BaudRate = rate
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8).
func WithDataBits(bits int) Option {
	return func(o *options) {
		o.settings.DataBits = bits
	}
}

// WithStopBits sets the number of stop bits (1 or 2).
func WithStopBits(bits int) Option {
	return func(o *options) {
		o.settings.StopBits = bits
	}
}

// WithParity sets the parity mode.
func WithParity(parity Parity) Option {
	return func(o *options) {
		o.settings.Parity = parity
	}
}

// WithFlowControl sets the flow control flags, replacing any previous set.
func WithFlowControl(flags ...FlowControlFlag) Option {
	return func(o *options) {
		o.settings.FlowControl = flags
	}
}

// WithSettings replaces the whole settings record at once.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s.clone()
	}
}

// WithBinding selects the binding that performs device I/O. The default is
// the termios binding.
func WithBinding(b Binding) Option {
	return func(o *options) {
		o.binding = b
	}
}

// WithoutAutoOpen suppresses the open that New normally issues, leaving the
// port CLOSED until Open is called.
func WithoutAutoOpen() Option {
	return func(o *options) {
		o.autoOpen = false
	}
}

// WithOpenCallback sets the completion callback for the open issued by New.
// It has no effect together with WithoutAutoOpen.
func WithOpenCallback(cb Callback) Option {
	return func(o *options) {
		o.openCallback = cb
	}
}

// WithDataConsumer routes incoming bytes to fn instead of the data event.
// The chunk passed to fn is owned by the consumer.
func WithDataConsumer(fn func([]byte)) Option {
	return func(o *options) {
		o.dataConsumer = fn
	}
}

// WithDisconnectHandler registers fn to be called once when the device
// vanishes while the port is open. The disconnect event fires as well.
func WithDisconnectHandler(fn func(error)) Option {
	return func(o *options) {
		o.disconnectHandler = fn
	}
}

package serialport

import "fmt"

// Validate checks a settings record against the supported line parameter
// values. It is pure: no device or binding is touched, and s is not
// modified. The first offending field is reported as a *ValidationError.
//
// Baud rates are not checked here. The set of reachable rates depends on
// the binding and the hardware, so each binding rejects unsupported rates
// at open time instead.
func Validate(s Settings) error {
	switch s.DataBits {
	case 5, 6, 7, 8:
	default:
		return &ValidationError{
			Field:   "dataBits",
			Message: fmt.Sprintf("must be 5, 6, 7 or 8, got %d", s.DataBits),
		}
	}

	switch s.StopBits {
	case 1, 2:
	default:
		return &ValidationError{
			Field:   "stopBits",
			Message: fmt.Sprintf("must be 1 or 2, got %d", s.StopBits),
		}
	}

	switch s.Parity {
	case ParityNone, ParityOdd, ParityEven, ParityMark, ParitySpace:
	default:
		return &ValidationError{
			Field:   "parity",
			Message: fmt.Sprintf("unknown mode %d", int(s.Parity)),
		}
	}

	for _, f := range s.FlowControl {
		switch f {
		case FlowXOn, FlowXOff, FlowXAny, FlowRTSCTS:
		default:
			return &ValidationError{
				Field:   "flowControl",
				Message: fmt.Sprintf("unknown flag %q", string(f)),
			}
		}
	}

	return nil
}

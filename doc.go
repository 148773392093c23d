// Package serialport provides callback-driven serial port access with an
// explicit connection state machine and pluggable device bindings.
//
// Every port operation is a non-blocking call whose outcome arrives through
// a completion callback, delivered in the order the operations were issued.
// A port moves between the states CLOSED, OPENING, OPEN and CLOSING; it
// holds its device handle exactly while OPEN or CLOSING, so a half-open
// port cannot exist.
//
// # Basic Usage
//
// Create a port and let it open itself with the default 9600 8N1 settings:
//
//	port, err := serialport.New("/dev/ttyUSB0",
//	    serialport.WithBaudRate(115200),
//	    serialport.WithOpenCallback(func(err error) {
//	        if err != nil {
//	            log.Fatal().Err(err).Msg("open failed")
//	        }
//	    }),
//	)
//	if err != nil {
//	    log.Fatal().Err(err).Msg("bad settings")
//	}
//
//	port.OnData(func(chunk []byte) {
//	    fmt.Printf("received %d bytes\n", len(chunk))
//	})
//
//	port.Write([]byte("Hello"), func(n int, err error) {
//	    if err != nil {
//	        fmt.Println("write failed:", err)
//	    }
//	})
//
// Settings passed to New are validated synchronously; a port is only ever
// created with legal line parameters. Everything after that is
// asynchronous.
//
// # Events
//
// Alongside per-call callbacks a port publishes open, data, close, error
// and disconnect events. Subscribing returns the unsubscribe function:
//
//	unsubscribe := port.OnDisconnect(func(err error) {
//	    fmt.Println("device lost:", err)
//	})
//	defer unsubscribe()
//
// An open or close failure with no callback goes to the error event; with
// no error listener either it lands on the process-wide fallback channel,
// serialport.ProcessEvents. Write and control operation errors go to their
// own callback only.
//
// # Bindings
//
// Device I/O is performed by a Binding. The default is the Linux termios
// binding; WithBinding selects another:
//
//	port, err := serialport.New("/dev/ttyACM0",
//	    serialport.WithBinding(serialport.NewPortableBinding()),
//	)
//
// NewPortableBinding works on any platform supported by go.bug.st/serial.
// NewMockBinding is an in-memory binding for tests:
//
//	mock := serialport.NewMockBinding("/dev/ttyUSB0")
//	port, err := serialport.New("/dev/ttyUSB0",
//	    serialport.WithBinding(mock),
//	    serialport.WithoutAutoOpen(),
//	)
//	mock.PushData("/dev/ttyUSB0", []byte{0x01})
//
// # Modem Lines
//
// Set drives the output lines, Get reads the input lines:
//
//	port.Set(serialport.Signals{RTS: true, DTR: true}, nil)
//	port.Get(func(state serialport.LineState, err error) {
//	    fmt.Printf("CTS=%v DSR=%v DCD=%v RI=%v\n",
//	        state.CTS, state.DSR, state.DCD, state.RI)
//	})
//
// # Port Discovery
//
// List available serial ports and read USB device metadata:
//
//	ports, err := serialport.ListPorts()
//	for _, portPath := range ports {
//	    info, _ := serialport.GetPortInfo(portPath)
//	    fmt.Printf("%s: %s (VID=%s PID=%s Serial=%s)\n",
//	        info.Path, info.Description, info.VendorID, info.ProductID, info.SerialNumber)
//	}
//
// # USB Device Management (Linux)
//
// Reset hung USB devices programmatically:
//
//	err := serialport.ResetUSBDevice("/dev/ttyUSB0")
//	err = serialport.ResetUSBDeviceBySerial("FT123456")
//
// Requires the usbreset utility from usbutils and root/sudo permissions.
//
// # Error Handling
//
// Predefined errors cover the state machine guards:
//
//	var (
//	    ErrPortNotOpen          // operation needs an open port
//	    ErrPortOpen             // open called on an open port
//	    ErrPortClosing          // open called while closing
//	    ErrInvalidBaudRate      // rate not reachable by the binding
//	    ErrUSBInfoNotAvailable  // USB metadata unavailable
//	    ErrUSBResetNotAvailable // usbreset utility not found
//	)
//
// Settings problems are reported as *ValidationError and an unexpected
// device loss as *DisconnectError. Use errors.Is and errors.As:
//
//	port.Write(data, func(n int, err error) {
//	    if errors.Is(err, serialport.ErrPortNotOpen) {
//	        // Reopen and retry
//	    }
//	})
//
// # Concurrency
//
// All Port methods are safe for concurrent use. Completion callbacks and
// event handlers run on the port's internal goroutines and must not block;
// hand work off to your own goroutine if it is slow.
//
// # Platform Support
//
// The termios binding, USB metadata extraction and device reset are
// Linux-only. The portable binding covers other platforms at the cost of
// flow control support.
//
// # Default Configuration
//
//   - BaudRate: 9600
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - FlowControl: none
//   - AutoOpen: enabled
//
// For more details and advanced usage examples, see the README at:
// https://github.com/seeacloud/node-serialport
package serialport

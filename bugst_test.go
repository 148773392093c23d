package serialport

import (
	"errors"
	"testing"

	"go.bug.st/serial"
)

func TestPortableMode(t *testing.T) {
	tests := []struct {
		name       string
		settings   Settings
		wantParity serial.Parity
		wantStop   serial.StopBits
		wantErr    bool
	}{
		{
			name:       "defaults",
			settings:   DefaultSettings(),
			wantParity: serial.NoParity,
			wantStop:   serial.OneStopBit,
		},
		{
			name:       "odd parity two stop bits",
			settings:   Settings{BaudRate: 115200, DataBits: 7, StopBits: 2, Parity: ParityOdd},
			wantParity: serial.OddParity,
			wantStop:   serial.TwoStopBits,
		},
		{
			name:       "even parity",
			settings:   Settings{BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: ParityEven},
			wantParity: serial.EvenParity,
			wantStop:   serial.OneStopBit,
		},
		{
			name:       "mark parity",
			settings:   Settings{BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: ParityMark},
			wantParity: serial.MarkParity,
			wantStop:   serial.OneStopBit,
		},
		{
			name:       "space parity",
			settings:   Settings{BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: ParitySpace},
			wantParity: serial.SpaceParity,
			wantStop:   serial.OneStopBit,
		},
		{
			name: "flow control refused",
			settings: Settings{
				BaudRate: 9600, DataBits: 8, StopBits: 1,
				FlowControl: []FlowControlFlag{FlowRTSCTS},
			},
			wantErr: true,
		},
		{
			name:     "bad stop bits",
			settings: Settings{BaudRate: 9600, DataBits: 8, StopBits: 3},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := portableMode(tt.settings)
			if (err != nil) != tt.wantErr {
				t.Fatalf("portableMode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if mode.BaudRate != tt.settings.BaudRate {
				t.Errorf("Mode.BaudRate = %d, expected %d", mode.BaudRate, tt.settings.BaudRate)
			}
			if mode.DataBits != tt.settings.DataBits {
				t.Errorf("Mode.DataBits = %d, expected %d", mode.DataBits, tt.settings.DataBits)
			}
			if mode.Parity != tt.wantParity {
				t.Errorf("Mode.Parity = %v, expected %v", mode.Parity, tt.wantParity)
			}
			if mode.StopBits != tt.wantStop {
				t.Errorf("Mode.StopBits = %v, expected %v", mode.StopBits, tt.wantStop)
			}
		})
	}
}

func TestPortableUnknownHandle(t *testing.T) {
	b := NewPortableBinding()

	if _, err := b.Write(3, []byte("x")); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Write = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Close(3); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Close = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Flush(3); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Flush = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Drain(3); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Drain = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Set(3, DefaultSignals()); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Set = %v, expected ErrUnknownHandle", err)
	}
	if _, err := b.Get(3); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Get = %v, expected ErrUnknownHandle", err)
	}
	if err := b.Update(3, DefaultSettings()); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Update = %v, expected ErrUnknownHandle", err)
	}
	if _, err := b.Notifications(3); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Notifications = %v, expected ErrUnknownHandle", err)
	}
}

func TestPortableOpenRejectsFlowControl(t *testing.T) {
	b := NewPortableBinding()

	s := DefaultSettings()
	s.FlowControl = []FlowControlFlag{FlowXOn}
	if _, err := b.Open("/dev/ttyUSB0", s); err == nil {
		t.Error("Expected error opening with flow control flags")
	}
}

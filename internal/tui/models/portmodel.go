package models

import (
	"sync"
	"time"

	serialport "github.com/seeacloud/node-serialport"
	"github.com/seeacloud/node-serialport/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
	InputModeVisual
)

func (m InputMode) String() string {
	switch m {
	case InputModeNormal:
		return "NORMAL"
	case InputModeInsert:
		return "INSERT"
	case InputModeVisual:
		return "VISUAL"
	default:
		return "NORMAL"
	}
}

// ConnectionStatusMsg reports the outcome of an open or a later disconnect.
type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// WriteResultMsg reports the completion of an asynchronous write. SentAt
// identifies the pending message it belongs to.
type WriteResultMsg struct {
	SentAt time.Time
	Err    error
}

// PortModel carries the state every serial TUI shares: the port, the
// connection status, the raw traffic backlog and the input mode.
type PortModel struct {
	port     *serialport.Port
	portPath string

	connected bool
	rawData   []components.DataReceivedMsg
	err       error
	ready     bool

	// Input mode (vim-like)
	inputMode InputMode

	mu sync.RWMutex
}

func NewPortModel(portPath string) *PortModel {
	return &PortModel{
		portPath:  portPath,
		rawData:   make([]components.DataReceivedMsg, 0),
		inputMode: InputModeNormal, // Start in normal mode
	}
}

func (m *PortModel) GetPort() *serialport.Port {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.port
}

func (m *PortModel) SetPort(port *serialport.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.port = port
}

func (m *PortModel) GetPortPath() string {
	return m.portPath
}

func (m *PortModel) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *PortModel) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

func (m *PortModel) GetError() error {
	return m.err
}

func (m *PortModel) SetError(err error) {
	m.err = err
}

func (m *PortModel) IsReady() bool {
	return m.ready
}

func (m *PortModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *PortModel) GetRawData() []components.DataReceivedMsg {
	return m.rawData
}

func (m *PortModel) AddRawData(msg components.DataReceivedMsg) {
	m.rawData = append(m.rawData, msg)
}

// MarkWriteResult rewrites the status of the newest pending TX message so
// the display can move it from PENDING to WRITTEN or ERROR.
func (m *PortModel) MarkWriteResult(sentAt time.Time, status string) {
	for i := len(m.rawData) - 1; i >= 0; i-- {
		msg := &m.rawData[i]
		if msg.IsTX && msg.Status == components.TxStatusPending && msg.Timestamp.Equal(sentAt) {
			msg.Status = status
			return
		}
	}
}

func (m *PortModel) ClearData() {
	m.rawData = make([]components.DataReceivedMsg, 0)
}

func (m *PortModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *PortModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *PortModel) IsInInsertMode() bool {
	return m.GetInputMode() == InputModeInsert
}

func (m *PortModel) IsInVisualMode() bool {
	return m.GetInputMode() == InputModeVisual
}

// Cleanup closes the port and waits briefly for the close to finish so the
// device is released before the process exits.
func (m *PortModel) Cleanup() {
	m.mu.Lock()
	port := m.port
	m.port = nil
	m.mu.Unlock()

	if port == nil {
		return
	}

	done := make(chan struct{})
	port.Close(func(error) { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

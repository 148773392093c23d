/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	serialport "github.com/seeacloud/node-serialport"
	"github.com/seeacloud/node-serialport/internal/tui/components"
	"github.com/seeacloud/node-serialport/internal/tui/keys"
	"github.com/seeacloud/node-serialport/internal/tui/models"
	"github.com/seeacloud/node-serialport/internal/tui/styles"
	"github.com/spf13/cobra"
)

const (
	// writeTimeout bounds how long a send may stay pending before the
	// display marks it as failed.
	writeTimeout = 5 * time.Second

	// lineSampleInterval is the modem line polling rate for --monitor-lines.
	lineSampleInterval = 250 * time.Millisecond
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect <port>",
	Short: "Connect to a serial port with bidirectional communication",
	Long: `Connect to a serial port with a bidirectional terminal interface.

This command opens the specified serial port and provides an interactive
terminal with real-time bidirectional communication. Features include:
- Real-time data streaming with timestamps
- Input field for sending data (ASCII or hex)
- Per-message write status (pending, written, failed)
- Vim-like modes: normal, insert for sending, visual for scrollback
- Optional modem line monitoring in the status bar
- Configurable line parameters

Example usage:
  serialport connect /dev/ttyUSB0
  serialport connect /dev/ttyUSB0 --baud 9600
  serialport connect /dev/ttyUSB0 --flow-control rtscts --monitor-lines`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		monitorLines, _ := cmd.Flags().GetBool("monitor-lines")

		if err := runConnectTUI(cmd, portPath, monitorLines); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	addLineFlags(connectCmd)
	connectCmd.Flags().Bool("monitor-lines", false, "Poll the CTS/DCD modem lines and show them in the status bar")
}

// connectModel represents the Bubble Tea model for the connect command.
// The terminal shows live traffic; the table is an alternate view of the
// same backlog used in visual mode for navigation.
type connectModel struct {
	*models.PortModel
	terminal  *components.Terminal
	table     *components.TerminalTable
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.ConnectKeys
}

func runConnectTUI(cmd *cobra.Command, portPath string, monitorLines bool) error {
	opts, err := lineOptions(cmd)
	if err != nil {
		return err
	}
	binding, err := selectBinding()
	if err != nil {
		return err
	}

	// Create initial model with minimal dimensions - let WindowSizeMsg set proper size
	m := connectModel{
		PortModel: models.NewPortModel(portPath),
		terminal:  components.NewTerminal(0, 0),
		table:     components.NewTerminalTable(0, 0),
		statusBar: components.NewStatusBar("Serial Connect", portPath),
		input:     components.NewInput(),
		help:      help.New(),
		keys:      keys.NewConnectKeys(),
	}
	m.statusBar.SetConnecting()

	// Start the TUI with alt screen and input handling
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// The port is constructed without auto-open so its settings can go
	// into the status bar while the open is still in flight. Incoming data
	// and disconnects are forwarded into the program as messages.
	opts = append(opts,
		serialport.WithBinding(binding),
		serialport.WithoutAutoOpen(),
		serialport.WithDataConsumer(func(data []byte) {
			p.Send(components.DataReceivedMsg{Timestamp: time.Now(), Data: data})
		}),
		serialport.WithDisconnectHandler(func(err error) {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
		}),
	)
	port, err := serialport.New(portPath, opts...)
	if err != nil {
		return err
	}
	m.SetPort(port)
	m.statusBar.SetConnectionInfo(&components.ConnectionInfo{
		Settings:     port.Settings(),
		MonitorLines: monitorLines,
	})

	// Open in the background; the outcome arrives as a ConnectionStatusMsg
	go func() {
		opened := make(chan error, 1)
		port.Open(func(err error) { opened <- err })
		if err := <-opened; err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}
		p.Send(models.ConnectionStatusMsg{Connected: true})

		if monitorLines {
			pollLines(p, port)
		}
	}()

	_, err = p.Run()

	// Ensure cleanup
	m.Cleanup()
	return err
}

// pollLines samples the input modem lines until the port closes.
func pollLines(p *tea.Program, port *serialport.Port) {
	ticker := time.NewTicker(lineSampleInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !port.IsOpen() {
			return
		}
		port.Get(func(state serialport.LineState, err error) {
			if err != nil {
				return
			}
			p.Send(components.LineStatusMsg{State: state, Timestamp: time.Now()})
		})
	}
}

func (m *connectModel) Init() tea.Cmd {
	return nil
}

// parseHexInput converts hex strings to bytes. Supports both:
// - Space-separated: "48 65 6C 6C 6F"
// - Continuous: "48656C6C6F"
func parseHexInput(hexStr string) ([]byte, error) {
	// Remove any spaces and convert to uppercase for consistency
	cleanHex := strings.ReplaceAll(strings.TrimSpace(hexStr), " ", "")
	if len(cleanHex) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	// Check if it's valid hex characters
	for _, char := range cleanHex {
		if !((char >= '0' && char <= '9') || (char >= 'A' && char <= 'F') || (char >= 'a' && char <= 'f')) {
			return nil, fmt.Errorf("invalid hex character '%c'", char)
		}
	}

	// Must be even number of hex digits to form complete bytes
	if len(cleanHex)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(cleanHex))
	}

	// Parse pairs of hex digits into bytes
	bytes := make([]byte, 0, len(cleanHex)/2)
	for i := 0; i < len(cleanHex); i += 2 {
		hexByte := cleanHex[i : i+2]
		b, err := strconv.ParseUint(hexByte, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		bytes = append(bytes, byte(b))
	}
	return bytes, nil
}

// sendInput queues the current input field contents for transmission and
// returns a command that reports the write outcome.
func (m *connectModel) sendInput() tea.Cmd {
	port := m.GetPort()
	inputStr := m.input.Value()
	if inputStr == "" || port == nil {
		return nil
	}

	var dataToSend []byte
	var displayData []byte

	switch m.input.GetSendingMode() {
	case components.SendingModeASCII:
		dataToSend = []byte(inputStr + "\n")
		displayData = []byte(inputStr)
	case components.SendingModeHex:
		parsed, err := parseHexInput(inputStr)
		if err != nil {
			// Show the problem in the terminal but don't send anything
			m.terminal.AddMessage(components.DataReceivedMsg{
				Timestamp: time.Now(),
				Data:      []byte(fmt.Sprintf("Invalid hex input: %v", err)),
			})
			return nil
		}
		dataToSend = parsed
		displayData = parsed
	}

	// Show the message as PENDING right away; the write completion flips
	// it to WRITTEN or ERROR.
	sentAt := time.Now()
	txData := components.DataReceivedMsg{
		Timestamp: sentAt,
		Data:      displayData,
		IsTX:      true,
		Status:    components.TxStatusPending,
	}
	m.AddRawData(txData)
	m.terminal.AddMessage(txData)
	if m.IsInVisualMode() {
		m.table.AddMessage(txData)
	}

	result := make(chan error, 1)
	port.Write(dataToSend, func(n int, err error) { result <- err })

	m.input.AddToHistory(inputStr)
	m.input.SetValue("")

	return func() tea.Msg {
		select {
		case err := <-result:
			return models.WriteResultMsg{SentAt: sentAt, Err: err}
		case <-time.After(writeTimeout):
			return models.WriteResultMsg{SentAt: sentAt, Err: fmt.Errorf("write timed out after %v", writeTimeout)}
		}
	}
}

func (m *connectModel) refreshDisplays() {
	m.terminal.RefreshDisplayWithRawData(m.GetRawData())
	if m.IsInVisualMode() {
		m.table.RefreshDisplayWithRawData(m.GetRawData())
	}
}

func (m *connectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Input area height (includes border)
		inputHeight := 3
		// Status bar is single line
		statusBarHeight := 1
		verticalMarginHeight := inputHeight + statusBarHeight

		m.terminal.SetSize(msg.Width, msg.Height-verticalMarginHeight)
		m.table.SetSize(msg.Width, msg.Height-verticalMarginHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else if msg.Connected {
			m.statusBar.SetConnected()
		} else {
			m.statusBar.SetDisconnected(nil)
		}

	case components.LineStatusMsg:
		m.statusBar.UpdateLineState(msg.State)

	case models.WriteResultMsg:
		status := components.TxStatusWritten
		if msg.Err != nil {
			status = components.TxStatusError
		}
		m.MarkWriteResult(msg.SentAt, status)
		m.refreshDisplays()

	case components.DataReceivedMsg:
		// Safely handle the data message
		defer func() {
			if r := recover(); r != nil {
				// If there's a panic in data handling, don't crash the whole UI
				// Just continue running
			}
		}()

		// Only process data if we're ready (WindowSizeMsg has been received)
		if m.IsReady() {
			m.AddRawData(msg)
			m.terminal.AddMessage(msg)
			if m.IsInVisualMode() {
				m.table.AddMessage(msg)
			}
		}

	case tea.KeyMsg:
		switch {
		case m.IsInInsertMode():
			// Insert mode - handle input and escape
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				if cmd := m.sendInput(); cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, tea.Batch(cmds...)
			}

		case m.IsInVisualMode():
			// Visual mode - navigate the backlog table
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.VisualMode):
				m.SetInputMode(models.InputModeNormal)
				m.table.SetViewMode(components.ViewModeFollow)
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()
				m.table.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.table.ToggleHex()

			case key.Matches(msg, m.keys.ToggleASCII):
				m.table.ToggleASCII()

			default:
				// The table handles cursor movement (j/k, g/G, page keys)
				_, cmd := m.table.Update(msg)
				cmds = append(cmds, cmd)
			}

		default:
			// Normal mode - handle navigation and mode switching
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.VisualMode):
				m.SetInputMode(models.InputModeVisual)
				m.table.RefreshDisplayWithRawData(m.GetRawData())
				m.table.SetViewMode(components.ViewModeVisual)
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()
				m.table.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.terminal.ToggleHex()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleASCII):
				m.terminal.ToggleASCII()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleTimestamps):
				m.terminal.ToggleTimestamps()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleIndicators):
				m.terminal.ToggleIndicators()
				m.terminal.RefreshDisplayWithRawData(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
			}
		}
	}

	// Update components (only update input in insert mode)
	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Update terminal viewport for window resize messages
	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *connectModel) View() string {
	// Always show the UI, even if not fully ready
	// If not ready, we'll show what we can with defaults

	// Main content: the live terminal, or the backlog table in visual mode
	var content string
	switch {
	case !m.IsReady():
		content = "Initializing..."
	case m.IsInVisualMode():
		content = m.table.View()
	default:
		content = m.terminal.View()
	}

	// Input area
	inputMode := m.GetInputMode().String()
	isInsertMode := m.IsInInsertMode()
	input := m.input.ViewWithMode(inputMode, isInsertMode)

	// Comprehensive status bar with all info
	sendingMode := m.input.GetSendingMode().String()
	timestamp := time.Now().Format("15:04:05")

	// Set the status bar width to match terminal
	terminalWidth := 80
	if m.IsReady() {
		terminalWidth = m.terminal.GetViewport().Width
	}
	m.statusBar.SetWidth(terminalWidth)

	statusBar := m.statusBar.ComprehensiveStatusBar(inputMode, sendingMode, m.IsConnected(), timestamp)

	// Layout without header, with comprehensive status bar at bottom
	contentWithBorder := styles.ContentBorderStyle.Render(content)

	// Show help if requested
	if m.help.ShowAll {
		helpStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Margin(1, 0)
		helpView := helpStyle.Render(m.help.View(m.keys))

		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpView,
			input,
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		input,
		statusBar,
	)
}

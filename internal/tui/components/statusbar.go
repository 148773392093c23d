package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	serialport "github.com/seeacloud/node-serialport"
	"github.com/seeacloud/node-serialport/internal/tui/colors"
	"github.com/seeacloud/node-serialport/internal/tui/styles"
)

// LineStatusMsg reports a fresh modem line reading to the TUI.
type LineStatusMsg struct {
	State     serialport.LineState
	Timestamp time.Time
}

// ConnectionInfo is the line configuration shown in the status bar, plus
// the latest modem line reading when line monitoring is on.
type ConnectionInfo struct {
	Settings     serialport.Settings
	MonitorLines bool
	Lines        serialport.LineState
	HaveLines    bool
}

type StatusBar struct {
	title          string
	portPath       string
	status         string
	err            error
	width          int
	connectionInfo *ConnectionInfo
}

func NewStatusBar(title, portPath string) *StatusBar {
	return &StatusBar{
		title:    title,
		portPath: portPath,
		status:   "Initializing...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

// UpdateLineState records a modem line reading for display.
func (sb *StatusBar) UpdateLineState(state serialport.LineState) {
	if sb.connectionInfo != nil {
		sb.connectionInfo.Lines = state
		sb.connectionInfo.HaveLines = true
	}
}

func (sb *StatusBar) SetConnecting() {
	sb.status = "Connecting..."
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = "Connected - listening for data..."
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Connection failed: %v", err)
		sb.err = err
	} else {
		sb.status = "Disconnected"
		sb.err = nil
	}
}

func flowControlToString(flags []serialport.FlowControlFlag) string {
	if len(flags) == 0 {
		return "None"
	}
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = strings.ToUpper(string(f))
	}
	return strings.Join(names, "+")
}

func parityToString(p serialport.Parity) string {
	switch p {
	case serialport.ParityNone:
		return "N"
	case serialport.ParityEven:
		return "E"
	case serialport.ParityOdd:
		return "O"
	case serialport.ParityMark:
		return "M"
	case serialport.ParitySpace:
		return "S"
	default:
		return "N"
	}
}

func lineIndicator(name string, asserted bool) string {
	if asserted {
		return lipgloss.NewStyle().Foreground(colors.LineHigh).Render(name + ":✓")
	}
	return lipgloss.NewStyle().Foreground(colors.LineLow).Render(name + ":✗")
}

func (sb *StatusBar) ViewAsHeader(connected bool) string {
	title := styles.TitleStyle.Render(sb.portPath)

	var connectionInfo string
	if sb.connectionInfo != nil {
		s := sb.connectionInfo.Settings
		connectionInfo = fmt.Sprintf(" | %d baud, %d%s%d, flow: %s",
			s.BaudRate,
			s.DataBits,
			parityToString(s.Parity),
			s.StopBits,
			flowControlToString(s.FlowControl))
	}

	connInfoStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Faint(true)
	connInfo := connInfoStyle.Render(connectionInfo)

	return lipgloss.JoinHorizontal(lipgloss.Left, title, connInfo)
}

// ComprehensiveStatusBar renders the full-width bottom bar: mode indicator,
// port path, connection indicator, sending mode hint, line configuration
// and a timestamp.
func (sb *StatusBar) ComprehensiveStatusBar(inputMode, sendingMode string, connected bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Section 1: Mode indicator (like NORMAL in nvim)
	var modeBg lipgloss.Color
	switch inputMode {
	case "INSERT":
		modeBg = colors.Green
	case "VISUAL":
		modeBg = colors.Mauve
	default:
		modeBg = colors.Blue
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBg).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	// Section 2: Port path
	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	// Section 3: Single character connection indicator
	var connIndicator string
	var connStyle lipgloss.Style

	if sb.err != nil {
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "✗"
	} else if connected {
		connStyle = lipgloss.NewStyle().Foreground(colors.Green)
		connIndicator = "●"
	} else if sb.status == "Connecting..." {
		connStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
		connIndicator = "○"
	} else {
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "○"
	}

	connectionIndicator := connStyle.Render(connIndicator)

	// Section 4: Line configuration and modem lines
	var connInfo string
	if sb.connectionInfo != nil {
		s := sb.connectionInfo.Settings
		lineInfo := ""
		if sb.connectionInfo.MonitorLines && sb.connectionInfo.HaveLines {
			lines := sb.connectionInfo.Lines
			lineInfo = " " + lineIndicator("CTS", lines.CTS) + " " + lineIndicator("DCD", lines.DCD)
		}
		connInfo = fmt.Sprintf("⚡ %d baud %d%s%d %s%s",
			s.BaudRate,
			s.DataBits,
			parityToString(s.Parity),
			s.StopBits,
			flowControlToString(s.FlowControl),
			lineInfo)
	} else {
		connInfo = "⚡ serial"
	}
	connectionDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	// Section 5: Timestamp
	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	// Sending mode indicator with Tab hint (only shown in INSERT mode)
	var sendingModeInfo string
	if inputMode == "INSERT" {
		sendingModeInfo = lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode))
	}

	var leftSide string
	if sendingModeInfo != "" {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, mode, port, connectionIndicator, sendingModeInfo, divider)
	} else {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, mode, port, connectionIndicator, divider)
	}

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	leftWidth := lipgloss.Width(leftSide)
	rightWidth := lipgloss.Width(rightSide)
	spacerWidth := terminalWidth - leftWidth - rightWidth
	if spacerWidth < 1 {
		spacerWidth = 1
	}

	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	content := lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide)
	return statusBarStyle.Render(content)
}

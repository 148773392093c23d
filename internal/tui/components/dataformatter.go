package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/seeacloud/node-serialport/internal/tui/colors"
)

// Write lifecycle markers carried on outgoing messages.
const (
	TxStatusPending = "PENDING"
	TxStatusWritten = "WRITTEN"
	TxStatusError   = "ERROR"
)

type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
	Status    string // For TX messages: PENDING, WRITTEN or ERROR, empty for RX
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
	ShowIndicators bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:        showHex,
			ShowASCII:      showASCII,
			ShowTimestamps: true,
			ShowIndicators: true,
		},
	}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

// SetFormatOptions hides or shows the timestamp and direction columns.
func (df *DataFormatter) SetFormatOptions(hideTimestamps, hideIndicators bool) {
	df.mode.ShowTimestamps = !hideTimestamps
	df.mode.ShowIndicators = !hideIndicators
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	var parts []string

	if df.mode.ShowTimestamps {
		timestamp := msg.Timestamp.Format("15:04:05.000")
		parts = append(parts, lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Render(fmt.Sprintf("[%s]", timestamp)))
	}

	if df.mode.ShowIndicators {
		parts = append(parts, df.indicator(msg)+":")
	}

	var fields []string

	if df.mode.ShowHex {
		hexStr := fmt.Sprintf("% X", msg.Data)
		fields = append(fields, fmt.Sprintf("HEX: %s", hexStr))
	}

	if df.mode.ShowASCII {
		asciiStr := printableASCII(msg.Data)
		fields = append(fields, fmt.Sprintf("ASCII: %s", asciiStr))
	}

	// If both are disabled, show raw bytes count
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		fields = append(fields, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}

	parts = append(parts, strings.Join(fields, "  "))
	return strings.Join(parts, " ")
}

// indicator renders the styled TX/RX marker with arrows and write status.
func (df *DataFormatter) indicator(msg DataReceivedMsg) string {
	if !msg.IsTX {
		return lipgloss.NewStyle().
			Foreground(colors.RxData).
			Bold(true).
			Render("↙ RX")
	}

	var txColor lipgloss.Color
	var statusText string
	switch msg.Status {
	case TxStatusPending:
		txColor = colors.TxPending
		statusText = "TX ○"
	case TxStatusWritten:
		txColor = colors.TxWritten
		statusText = "TX ✓"
	case TxStatusError:
		txColor = colors.TxError
		statusText = "TX ✗"
	default:
		txColor = colors.Peach
		statusText = "TX"
	}

	return lipgloss.NewStyle().
		Foreground(txColor).
		Bold(true).
		Render("↗ " + statusText)
}

// printableASCII renders data with non-printable bytes replaced by dots so
// terminal control sequences never leak into the display.
func printableASCII(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.ShowTimestamps = !df.mode.ShowTimestamps
}

func (df *DataFormatter) ToggleIndicators() {
	df.mode.ShowIndicators = !df.mode.ShowIndicators
}

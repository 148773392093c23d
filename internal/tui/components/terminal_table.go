package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/seeacloud/node-serialport/internal/tui/colors"
)

// ViewMode selects between following the newest traffic and navigating the
// backlog.
type ViewMode int

const (
	ViewModeFollow ViewMode = iota
	ViewModeVisual
)

// TerminalTable is a row-per-message view of serial traffic. In follow mode
// it sticks to the newest row; visual mode focuses the table for cursor
// navigation through the backlog.
type TerminalTable struct {
	table     table.Model
	formatter *DataFormatter
	viewMode  ViewMode
	rawData   []DataReceivedMsg
}

func NewTerminalTable(width, height int) *TerminalTable {
	// Ensure minimum dimensions for proper table initialization
	if width < 80 {
		width = 80
	}
	if height < 5 {
		height = 5
	}

	// Initial columns - will be updated by updateColumnsForDisplayMode
	columns := []table.Column{
		{Title: "Time", Width: 14},
		{Title: "↕", Width: 3},
		{Title: "Hex", Width: 30},
		{Title: "ASCII", Width: 20},
		{Title: "Bytes", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false), // Start unfocused in follow mode
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)

	t.SetStyles(s)

	tt := &TerminalTable{
		table:     t,
		formatter: NewDataFormatter(true, true), // Default: show both hex and ASCII
		viewMode:  ViewModeFollow,               // Start in follow mode
		rawData:   make([]DataReceivedMsg, 0),
	}

	tt.updateColumnsForDisplayMode(width)

	return tt
}

func (tt *TerminalTable) SetSize(width, height int) {
	// Update columns first, then table dimensions
	tt.updateColumnsForDisplayMode(width)
	tt.table.SetHeight(height)
	tt.table.SetWidth(width)

	tt.table.UpdateViewport()
}

func (tt *TerminalTable) updateColumnsForDisplayMode(width int) {
	displayMode := tt.formatter.GetDisplayMode()

	if width < 80 {
		width = 80
	}

	// Fixed column widths
	timeWidth := 14 // Fits the "15:04:05.000" format
	dirWidth := 3   // Just enough for the arrow
	bytesWidth := 6 // Enough for "Bytes" header and reasonable counts

	// Calculate remaining width for data columns, accounting for borders
	// and separators (roughly 10 chars)
	reservedWidth := timeWidth + dirWidth + bytesWidth + 10
	remainingWidth := width - reservedWidth
	if remainingWidth < 20 {
		remainingWidth = 20
	}

	var columns []table.Column

	switch {
	case displayMode.ShowHex && displayMode.ShowASCII:
		// Give more space to hex since it's typically longer
		hexWidth := (remainingWidth * 7) / 10   // 70%
		asciiWidth := (remainingWidth * 3) / 10 // 30%

		if hexWidth < 20 {
			hexWidth = 20
		}
		if asciiWidth < 10 {
			asciiWidth = 10
		}

		columns = []table.Column{
			{Title: "Time", Width: timeWidth},
			{Title: "↕", Width: dirWidth},
			{Title: "Hex", Width: hexWidth},
			{Title: "ASCII", Width: asciiWidth},
			{Title: "Bytes", Width: bytesWidth},
		}

	case displayMode.ShowHex:
		hexWidth := remainingWidth
		if hexWidth < 30 {
			hexWidth = 30
		}

		columns = []table.Column{
			{Title: "Time", Width: timeWidth},
			{Title: "↕", Width: dirWidth},
			{Title: "Hex", Width: hexWidth},
			{Title: "Bytes", Width: bytesWidth},
		}

	case displayMode.ShowASCII:
		asciiWidth := remainingWidth
		if asciiWidth < 20 {
			asciiWidth = 20
		}

		columns = []table.Column{
			{Title: "Time", Width: timeWidth},
			{Title: "↕", Width: dirWidth},
			{Title: "ASCII", Width: asciiWidth},
			{Title: "Bytes", Width: bytesWidth},
		}

	default:
		dataWidth := remainingWidth
		if dataWidth < 25 {
			dataWidth = 25
		}

		columns = []table.Column{
			{Title: "Time", Width: timeWidth},
			{Title: "↕", Width: dirWidth},
			{Title: "Data", Width: dataWidth},
			{Title: "Bytes", Width: bytesWidth},
		}
	}

	tt.table.SetColumns(columns)
	tt.table.UpdateViewport()
}

func (tt *TerminalTable) AddMessage(msg DataReceivedMsg) {
	tt.rawData = append(tt.rawData, msg)
	tt.refreshTable()

	// In follow mode, scroll to bottom
	if tt.viewMode == ViewModeFollow {
		tt.table.GotoBottom()
	}
}

func (tt *TerminalTable) refreshTable() {
	rows := make([]table.Row, len(tt.rawData))
	for i, msg := range tt.rawData {
		rows[i] = tt.formatMessageAsRow(msg)
	}

	tt.table.SetRows(rows)
	tt.table.UpdateViewport()
}

func (tt *TerminalTable) formatMessageAsRow(msg DataReceivedMsg) table.Row {
	timestamp := msg.Timestamp.Format("15:04:05.000")

	var direction string
	if msg.IsTX {
		direction = "↗"
	} else {
		direction = "↙"
	}

	bytesStr := fmt.Sprintf("%d", len(msg.Data))

	displayMode := tt.formatter.GetDisplayMode()

	switch {
	case displayMode.ShowHex && displayMode.ShowASCII:
		hexStr := fmt.Sprintf("% X", msg.Data)
		return table.Row{timestamp, direction, hexStr, printableASCII(msg.Data), bytesStr}

	case displayMode.ShowHex:
		hexStr := fmt.Sprintf("% X", msg.Data)
		return table.Row{timestamp, direction, hexStr, bytesStr}

	case displayMode.ShowASCII:
		return table.Row{timestamp, direction, printableASCII(msg.Data), bytesStr}

	default:
		dataStr := fmt.Sprintf("%d bytes", len(msg.Data))
		return table.Row{timestamp, direction, dataStr, bytesStr}
	}
}

func (tt *TerminalTable) Clear() {
	tt.rawData = make([]DataReceivedMsg, 0)
	tt.table.SetRows([]table.Row{})
}

func (tt *TerminalTable) ToggleHex() {
	tt.formatter.ToggleHex()
	tt.updateColumnsForDisplayMode(tt.table.Width())
	tt.refreshTable()
}

func (tt *TerminalTable) ToggleASCII() {
	tt.formatter.ToggleASCII()
	tt.updateColumnsForDisplayMode(tt.table.Width())
	tt.refreshTable()
}

func (tt *TerminalTable) GetDisplayMode() DisplayMode {
	return tt.formatter.GetDisplayMode()
}

func (tt *TerminalTable) GetViewMode() ViewMode {
	return tt.viewMode
}

func (tt *TerminalTable) SetViewMode(mode ViewMode) {
	tt.viewMode = mode
	if mode == ViewModeFollow {
		if len(tt.rawData) > 0 {
			tt.table.SetCursor(len(tt.rawData) - 1)
		}
		tt.table.GotoBottom()
		tt.table.Blur() // Unfocus in follow mode
	} else {
		tt.table.Focus() // Focus in visual mode for navigation
	}
	tt.table.UpdateViewport()
}

func (tt *TerminalTable) RefreshDisplayWithRawData(rawData []DataReceivedMsg) {
	tt.rawData = rawData
	tt.refreshTable()
	if tt.viewMode == ViewModeFollow {
		tt.table.GotoBottom()
	}
}

func (tt *TerminalTable) Update(msg tea.Msg) (table.Model, tea.Cmd) {
	// Only allow table navigation in visual mode
	if tt.viewMode == ViewModeVisual {
		var cmd tea.Cmd
		tt.table, cmd = tt.table.Update(msg)
		return tt.table, cmd
	}
	return tt.table, nil
}

func (tt *TerminalTable) View() string {
	return tt.table.View()
}

func (tt *TerminalTable) GetViewModeString() string {
	switch tt.viewMode {
	case ViewModeFollow:
		return "FOLLOW"
	case ViewModeVisual:
		return "VISUAL"
	default:
		return "FOLLOW"
	}
}

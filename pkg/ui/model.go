package ui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"fwdctl/pkg/config"
	"fwdctl/pkg/logging"
	"fwdctl/pkg/supervisor"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshInterval = 2 * time.Second

// Model represents the state of the UI
type Model struct {
	sup *supervisor.Supervisor
	cfg config.Config

	width  int
	height int

	rows []forwardRow

	// Central error message
	errorMsg string
	// Status/info message (non-error feedback)
	statusMsg string

	forwardsTable table.Model
}

// NewModel creates the TUI model over an already-built supervisor.
func NewModel(sup *supervisor.Supervisor, cfg config.Config) *Model {
	m := &Model{sup: sup, cfg: cfg}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(ColorSelectedFg)).
		Background(lipgloss.Color(ColorSelectedBg)).
		Bold(false)

	t := table.New(
		table.WithColumns(m.calculateColumnWidths()),
		table.WithFocused(true),
		table.WithHeight(MinTableHeight),
	)
	t.SetStyles(styles)
	m.forwardsTable = t
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// refreshCmd reconciles rules and registry state off the update loop.
func (m *Model) refreshCmd() tea.Cmd {
	sup := m.sup
	return func() tea.Msg {
		ruleSet, err := sup.Rules()
		if err != nil {
			return refreshMsg{err: err}
		}
		report, err := sup.Status(context.Background())
		if err != nil {
			return refreshMsg{err: err}
		}

		byPort := make(map[int]supervisor.PortStatus, len(report.Ports))
		for _, st := range report.Ports {
			byPort[st.Port] = st
		}

		var rows []forwardRow
		for port, rule := range ruleSet {
			row := forwardRow{Port: port, Rule: rule}
			if st, ok := byPort[port]; ok {
				row.Status = st
				row.Active = st.Active
				delete(byPort, port)
			}
			rows = append(rows, row)
		}
		// Forwards still running for rules no longer in the file.
		for port, st := range byPort {
			rows = append(rows, forwardRow{Port: port, Rule: st.Rule, Status: st, Active: st.Active, Stale: true})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Port < rows[j].Port })
		return refreshMsg{rows: rows}
	}
}

// calculateColumnWidths returns column widths based on terminal width
func (m *Model) calculateColumnWidths() []table.Column {
	minWidths := map[string]int{
		ColLocal:       6,
		ColDestination: 15,
		ColProto:       5,
		ColStatus:      8,
		ColPID:         7,
	}

	availableWidth := m.width - 10
	availableWidth = max(availableWidth, 50)

	totalMinWidth := 0
	for _, w := range minWidths {
		totalMinWidth += w
	}
	// Any extra room goes to the destination column.
	extra := max(availableWidth-totalMinWidth, 0)
	minWidths[ColDestination] += extra * 60 / 100

	return []table.Column{
		{Title: ColLocal, Width: minWidths[ColLocal]},
		{Title: ColDestination, Width: minWidths[ColDestination]},
		{Title: ColProto, Width: minWidths[ColProto]},
		{Title: ColStatus, Width: minWidths[ColStatus]},
		{Title: ColPID, Width: minWidths[ColPID]},
	}
}

// rebuildTable re-renders the table rows from the current forward rows.
func (m *Model) rebuildTable() {
	tableRows := make([]table.Row, 0, len(m.rows))
	for _, row := range m.rows {
		status := StatusInactive
		pid := ""
		if row.Active {
			status = StatusActive
			pid = strconv.Itoa(row.Status.PID)
		}
		if row.Stale {
			status = fmt.Sprintf("%s (%s)", status, StatusStale)
		}
		tableRows = append(tableRows, table.Row{
			strconv.Itoa(row.Port),
			row.Rule.Destination(),
			string(row.Rule.Proto),
			status,
			pid,
		})
	}
	cursor := m.forwardsTable.Cursor()
	m.forwardsTable.SetColumns(m.calculateColumnWidths())
	m.forwardsTable.SetRows(tableRows)
	if cursor >= len(tableRows) {
		cursor = len(tableRows) - 1
	}
	if cursor >= 0 {
		m.forwardsTable.SetCursor(cursor)
	}
}

// selectedRow returns the forward under the cursor.
func (m *Model) selectedRow() (forwardRow, bool) {
	idx := m.forwardsTable.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return forwardRow{}, false
	}
	return m.rows[idx], true
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	tableHeight := max(height-ViewOffset, MinTableHeight)
	m.forwardsTable.SetHeight(tableHeight)
	m.rebuildTable()
	logging.Debug("TUI resized to %dx%d", width, height)
}

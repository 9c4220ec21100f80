package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())

	case refreshMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.rows = msg.rows
		m.rebuildTable()
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("%s: %v", msg.what, msg.err)
		} else {
			m.errorMsg = ""
			m.statusMsg = msg.what
		}
		return m, m.refreshCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.forwardsTable, cmd = m.forwardsTable.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case " ":
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, m.toggleCmd(row)

	case "r":
		m.statusMsg = "Restarting all forwards..."
		sup := m.sup
		return m, func() tea.Msg {
			err := sup.Restart(context.Background())
			return opDoneMsg{what: "restart", err: err}
		}

	case "R":
		m.statusMsg = "Reloading rule file..."
		return m, m.refreshCmd()
	}

	var cmd tea.Cmd
	m.forwardsTable, cmd = m.forwardsTable.Update(msg)
	return m, cmd
}

// toggleCmd starts or stops the forward under the cursor off the update
// loop.
func (m *Model) toggleCmd(row forwardRow) tea.Cmd {
	sup := m.sup
	if row.Active {
		return func() tea.Msg {
			err := sup.StopPort(row.Port)
			return opDoneMsg{what: fmt.Sprintf("stopped port %d", row.Port), err: err}
		}
	}
	if row.Stale {
		// No rule to start it from anymore.
		return func() tea.Msg {
			return opDoneMsg{what: fmt.Sprintf("port %d", row.Port),
				err: fmt.Errorf("rule no longer in file, reload first")}
		}
	}
	rule := row.Rule
	return func() tea.Msg {
		err := sup.StartPort(context.Background(), rule)
		return opDoneMsg{what: fmt.Sprintf("started port %d", row.Port), err: err}
	}
}

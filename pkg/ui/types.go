package ui

import (
	"fwdctl/pkg/rules"
	"fwdctl/pkg/supervisor"
)

// forwardRow is one table row: a rule, its reconciled status, or both. A
// registry entry whose rule left the file still shows up, flagged stale.
type forwardRow struct {
	Port   int
	Rule   rules.Rule
	Status supervisor.PortStatus
	Active bool
	Stale  bool
}

// refreshMsg carries a completed status/rules refresh into the model.
type refreshMsg struct {
	rows []forwardRow
	err  error
}

// opDoneMsg signals a finished start/stop/restart operation.
type opDoneMsg struct {
	what string
	err  error
}

// tickMsg drives the periodic liveness refresh.
type tickMsg struct{}

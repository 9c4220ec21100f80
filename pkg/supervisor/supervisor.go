package supervisor

import (
	"context"
	"errors"
	"time"

	"fwdctl/pkg/config"
	"fwdctl/pkg/engine"
	"fwdctl/pkg/logging"
	"fwdctl/pkg/registry"
	"fwdctl/pkg/reporting"
	"fwdctl/pkg/rules"
)

const (
	// StopGracePeriod is how long a terminated process gets to exit before
	// it is force-killed.
	StopGracePeriod = 500 * time.Millisecond

	// stopPollInterval paces the liveness polls during the grace period.
	stopPollInterval = 50 * time.Millisecond

	// RestartPause separates the stop and start halves of a restart.
	RestartPause = 200 * time.Millisecond
)

// Supervisor orchestrates lifecycle sweeps over the rule set. It is
// stateless between invocations; everything durable lives in the registry.
type Supervisor struct {
	cfg      config.Config
	registry registry.Registry
	engine   engine.Engine
	reporter reporting.Reporter
}

func New(cfg config.Config, reg registry.Registry, eng engine.Engine, rep reporting.Reporter) *Supervisor {
	return &Supervisor{cfg: cfg, registry: reg, engine: eng, reporter: rep}
}

// Start sweeps the rule set and launches a forwarding process for every
// rule without a live registry entry. Individual rule failures are reported
// and skipped; only an unreadable rule file aborts the sweep. Cancellation
// mid-sweep transitions into a full stop sweep so no forward outlives the
// supervisor's own termination handling.
func (s *Supervisor) Start(ctx context.Context) error {
	ruleSet, err := rules.Load(s.cfg.RuleFile, s.reporter)
	if err != nil {
		return err
	}

	s.reporter.Report(reporting.LevelInfo, reporting.KeyStartSweep, len(ruleSet))
	for _, port := range ruleSet.Ports() {
		if ctx.Err() != nil {
			return s.abortSweep(ctx)
		}
		// Per-rule errors are already reported; the sweep carries on.
		_ = s.startOne(ctx, ruleSet[port])
		if ctx.Err() != nil {
			return s.abortSweep(ctx)
		}
	}
	return nil
}

// Rules loads the current rule set (TUI, status headers).
func (s *Supervisor) Rules() (rules.RuleSet, error) {
	return rules.Load(s.cfg.RuleFile, s.reporter)
}

// StartPort launches the forward for a single rule.
func (s *Supervisor) StartPort(ctx context.Context, rule rules.Rule) error {
	return s.startOne(ctx, rule)
}

// StopPort stops the forward for a single port. ErrNotRegistered when the
// registry has no entry for it.
func (s *Supervisor) StopPort(port int) error {
	entry, found, err := s.registry.Lookup(port)
	if err != nil {
		return err
	}
	if !found {
		return registry.ErrNotRegistered
	}
	s.stopOne(entry)
	return nil
}

// abortSweep runs the stop path after a cancelled start sweep.
func (s *Supervisor) abortSweep(ctx context.Context) error {
	s.reporter.Report(reporting.LevelWarn, reporting.KeyInterrupted)
	if err := s.Stop(context.Background()); err != nil {
		logging.Error("Stop sweep after cancellation failed: %v", err)
	}
	return ctx.Err()
}

// startOne launches the forward for one rule unless it is already running.
// All failure modes are reported before being returned; sweeps drop the
// error so one bad rule cannot stop the others.
func (s *Supervisor) startOne(ctx context.Context, rule rules.Rule) error {
	entry, found, err := s.registry.Lookup(rule.LocalPort)
	if err != nil {
		logging.Error("Registry lookup for port %d failed: %v", rule.LocalPort, err)
		return err
	}
	if found {
		if s.engine.Alive(entry.PID) {
			s.reporter.Report(reporting.LevelInfo, reporting.KeyAlreadyRunning, rule.LocalPort, entry.PID)
			return nil
		}
		// Stale entry from a process that died without cleanup.
		s.reporter.Report(reporting.LevelDebug, reporting.KeyAlreadyDead, rule.LocalPort, entry.PID)
		if err := s.registry.Remove(rule.LocalPort); err != nil {
			logging.Error("Failed to drop stale entry for port %d: %v", rule.LocalPort, err)
			return err
		}
	}

	pid, err := s.engine.Launch(ctx, rule)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrPortInUse):
			s.reporter.Report(reporting.LevelWarn, reporting.KeyPortInUse, rule.LocalPort, string(rule.Proto))
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			// The surrounding sweep notices and runs the stop path.
		default:
			s.reporter.Report(reporting.LevelError, reporting.KeyLaunchFailed, rule.LocalPort, err)
		}
		// No dangling record for a process that never came up.
		if rmErr := s.registry.Remove(rule.LocalPort); rmErr != nil {
			logging.Error("Rollback of registry entry for port %d failed: %v", rule.LocalPort, rmErr)
		}
		return err
	}

	err = s.registry.Record(registry.Entry{
		Port:      rule.LocalPort,
		PID:       pid,
		StartedAt: time.Now(),
		Rule:      rule,
	})
	if err != nil {
		// Unrecorded process: better to kill it than to leak an
		// unsupervised forward.
		logging.Error("Failed to record port %d (pid %d), killing process: %v", rule.LocalPort, pid, err)
		_ = s.engine.Kill(pid)
		s.reporter.Report(reporting.LevelError, reporting.KeyLaunchFailed, rule.LocalPort, err)
		return err
	}

	s.reporter.Report(reporting.LevelInfo, reporting.KeyStarted,
		rule.LocalPort, rule.Destination(), string(rule.Proto), pid)
	return nil
}

// Stop terminates every registered forward, live or stale, and removes its
// entry regardless of how the termination went. Processes without a
// registry entry are never touched.
func (s *Supervisor) Stop(ctx context.Context) error {
	entries, err := s.registry.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		s.reporter.Report(reporting.LevelInfo, reporting.KeyNoForwards)
		return nil
	}

	s.reporter.Report(reporting.LevelInfo, reporting.KeyStopSweep, len(entries))
	for _, entry := range entries {
		s.stopOne(entry)
	}
	return nil
}

func (s *Supervisor) stopOne(entry registry.Entry) {
	defer func() {
		if err := s.registry.Remove(entry.Port); err != nil {
			logging.Error("Failed to remove registry entry for port %d: %v", entry.Port, err)
		}
	}()

	err := s.engine.Terminate(entry.PID)
	if errors.Is(err, engine.ErrProcessDead) {
		s.reporter.Report(reporting.LevelInfo, reporting.KeyAlreadyDead, entry.Port, entry.PID)
		return
	}
	if err != nil {
		logging.Error("Failed to signal pid %d for port %d: %v", entry.PID, entry.Port, err)
	}

	if s.waitForExit(entry.PID) {
		s.reporter.Report(reporting.LevelInfo, reporting.KeyStopped, entry.Port, entry.PID)
		return
	}

	_ = s.engine.Kill(entry.PID)
	s.reporter.Report(reporting.LevelWarn, reporting.KeyForceKilled, entry.Port, entry.PID)
}

// waitForExit polls liveness for up to StopGracePeriod. True when the
// process exited within the grace period.
func (s *Supervisor) waitForExit(pid int) bool {
	deadline := time.Now().Add(StopGracePeriod)
	for time.Now().Before(deadline) {
		if !s.engine.Alive(pid) {
			return true
		}
		time.Sleep(stopPollInterval)
	}
	return !s.engine.Alive(pid)
}

// Restart is stop, a short pause, then start. The brief forwarding outage
// buys a guaranteed-clean reload.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.reporter.Report(reporting.LevelInfo, reporting.KeyRestarting)
	if err := s.Stop(ctx); err != nil {
		return err
	}
	time.Sleep(RestartPause)
	return s.Start(ctx)
}

// PortStatus is the reconciled state of one registry entry.
type PortStatus struct {
	Port   int
	PID    int
	Active bool
	Rule   rules.Rule
}

// StatusReport aggregates one status sweep.
type StatusReport struct {
	Ports    []PortStatus
	Active   int
	Inactive int
}

// Status reconciles the registry against process liveness. Entries whose
// process is gone are surfaced as inactive and cleaned up lazily.
func (s *Supervisor) Status(ctx context.Context) (StatusReport, error) {
	entries, err := s.registry.List()
	if err != nil {
		return StatusReport{}, err
	}

	var report StatusReport
	for _, entry := range entries {
		status := PortStatus{Port: entry.Port, PID: entry.PID, Rule: entry.Rule}
		if s.engine.Alive(entry.PID) {
			status.Active = true
			report.Active++
			s.reporter.Report(reporting.LevelInfo, reporting.KeyStatusActive, entry.Port, entry.PID)
		} else {
			report.Inactive++
			s.reporter.Report(reporting.LevelInfo, reporting.KeyStatusInactive, entry.Port)
			if err := s.registry.Remove(entry.Port); err != nil {
				logging.Error("Failed to clean dead entry for port %d: %v", entry.Port, err)
			}
		}
		report.Ports = append(report.Ports, status)
	}

	s.reporter.Report(reporting.LevelInfo, reporting.KeyStatusSummary, report.Active, report.Inactive)
	return report, nil
}

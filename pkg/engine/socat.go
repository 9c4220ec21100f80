package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"fwdctl/pkg/logging"
	"fwdctl/pkg/rules"

	"github.com/google/shlex"
)

// LaunchGracePeriod is how long a freshly started engine process must stay
// alive before the launch counts as successful. An engine that exits
// immediately (bad destination syntax, lost port race) is reported as a
// failure, not a silent success.
const LaunchGracePeriod = 300 * time.Millisecond

// SocatEngine shells out to socat in listen-and-relay mode: one process per
// rule, binding the local port and forking one relay per accepted
// connection (tcp) or datagram flow (udp).
type SocatEngine struct {
	// Bin is the engine binary, resolved via PATH.
	Bin string

	// ExtraOptions is split shell-style and inserted before the address
	// arguments of every invocation.
	ExtraOptions string

	// PortCheck enables the bind pre-check before invoking the engine.
	PortCheck bool

	// LogFile receives the engine's combined output; empty discards it.
	// Engine output is never attached to the supervisor's own streams.
	LogFile string

	// GracePeriod overrides LaunchGracePeriod when non-zero (tests).
	GracePeriod time.Duration
}

// NewSocatEngine builds an engine from configuration values.
func NewSocatEngine(bin, extraOptions, logFile string, portCheck bool) *SocatEngine {
	if bin == "" {
		bin = "socat"
	}
	return &SocatEngine{
		Bin:          bin,
		ExtraOptions: extraOptions,
		PortCheck:    portCheck,
		LogFile:      logFile,
	}
}

// addressArgs renders the listen and connect addresses for rule. Listen and
// relay mode always use the same protocol.
func addressArgs(rule rules.Rule) (listen, connect string) {
	proto := strings.ToUpper(string(rule.Proto))
	listen = fmt.Sprintf("%s4-LISTEN:%d,fork,reuseaddr", proto, rule.LocalPort)
	connect = fmt.Sprintf("%s4:%s:%d", proto, rule.Host, rule.DestPort)
	return listen, connect
}

// buildArgs assembles the full argv (minus the binary itself).
func (e *SocatEngine) buildArgs(rule rules.Rule) ([]string, error) {
	var args []string
	if e.ExtraOptions != "" {
		extra, err := shlex.Split(e.ExtraOptions)
		if err != nil {
			return nil, fmt.Errorf("bad engine options %q: %w", e.ExtraOptions, err)
		}
		args = append(args, extra...)
	}
	listen, connect := addressArgs(rule)
	return append(args, listen, connect), nil
}

func (e *SocatEngine) Launch(ctx context.Context, rule rules.Rule) (int, error) {
	if e.PortCheck && !portAvailable(rule.LocalPort, rule.Proto) {
		return 0, ErrPortInUse
	}

	args, err := e.buildArgs(rule)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	logging.Debug("Launching engine: %s %s", e.Bin, strings.Join(args, " "))

	cmd := exec.Command(e.Bin, args...)
	cmd.Stdin = nil
	if e.LogFile != "" {
		sink, err := os.OpenFile(e.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return 0, fmt.Errorf("%w: cannot open engine log %s: %v", ErrLaunchFailed, e.LogFile, err)
		}
		defer sink.Close()
		cmd.Stdout = sink
		cmd.Stderr = sink
	}
	// Own session: the relay must outlive the supervisor invocation.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	pid := cmd.Process.Pid

	// Reap in the background for long-lived callers like the TUI. For
	// one-shot commands the child is reparented to init on exit.
	go func() { _ = cmd.Wait() }()

	grace := e.GracePeriod
	if grace == 0 {
		grace = LaunchGracePeriod
	}
	select {
	case <-ctx.Done():
		// Cancelled mid-launch: don't leave the process behind.
		_ = syscall.Kill(pid, syscall.SIGTERM)
		return 0, ctx.Err()
	case <-time.After(grace):
	}

	if !e.Alive(pid) {
		logging.Error("Engine process for port %d (pid %d) exited within the grace period", rule.LocalPort, pid)
		return 0, fmt.Errorf("%w: process %d exited immediately", ErrLaunchFailed, pid)
	}

	logging.Debug("Engine process for port %d started, pid %d appears stable", rule.LocalPort, pid)
	return pid, nil
}

// Alive probes pid with signal 0. EPERM still means the process exists.
func (e *SocatEngine) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}

func (e *SocatEngine) Terminate(pid int) error {
	return e.signal(pid, syscall.SIGTERM)
}

func (e *SocatEngine) Kill(pid int) error {
	return e.signal(pid, syscall.SIGKILL)
}

func (e *SocatEngine) signal(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return ErrProcessDead
	}
	err := syscall.Kill(pid, sig)
	if err == syscall.ESRCH {
		return ErrProcessDead
	}
	return err
}

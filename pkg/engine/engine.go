package engine

import (
	"context"
	"errors"

	"fwdctl/pkg/rules"
)

// Sentinel error for a local port that already has a listener
var ErrPortInUse = errors.New("local port already in use")

// Sentinel error for an engine process that exited during the launch grace period
var ErrLaunchFailed = errors.New("forwarding engine failed to start")

// Sentinel error for signalling a process that is already gone
var ErrProcessDead = errors.New("process already dead")

// Engine launches and signals forwarding processes. The launcher side of
// the supervisor; the actual byte relay is the external engine's job.
type Engine interface {
	// Launch starts one forwarding process for rule and returns its pid.
	// The process must already have survived the launch grace period when
	// Launch returns nil.
	Launch(ctx context.Context, rule rules.Rule) (int, error)

	// Alive probes whether pid still runs.
	Alive(pid int) bool

	// Terminate asks pid to exit gracefully. ErrProcessDead when it is
	// already gone.
	Terminate(pid int) error

	// Kill force-terminates pid. ErrProcessDead when it is already gone.
	Kill(pid int) error
}

package registry

import (
	"errors"
	"time"

	"fwdctl/pkg/rules"
)

// Sentinel error for a port with no registry entry
var ErrNotRegistered = errors.New("no supervised process registered for port")

// Entry records one supervised forwarding process. The rule snapshot is the
// rule the process was started for, which may differ from the currently
// loaded rule set after an edit without reload.
type Entry struct {
	Port      int
	PID       int
	StartedAt time.Time
	Rule      rules.Rule
}

// Registry is the durable record of which local ports currently have a
// supervised forwarding process. Only the lifecycle controller mutates it.
// Implementations must tolerate stale entries: a recorded process may have
// died without the entry being removed, and callers reconcile via a
// liveness probe.
type Registry interface {
	Record(e Entry) error
	Lookup(port int) (Entry, bool, error)
	Remove(port int) error
	List() ([]Entry, error)
	Close() error
}

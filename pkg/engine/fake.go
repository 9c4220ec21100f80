package engine

import (
	"context"
	"sync"

	"fwdctl/pkg/rules"
)

// Fake is an Engine that simulates launches without spawning processes.
// Shared by the supervisor and command tests.
type Fake struct {
	mutex sync.Mutex

	// FailPorts maps a local port to the error Launch returns for it.
	FailPorts map[int]error

	// nextPID is incremented per successful launch.
	nextPID int

	// alive tracks pids considered running.
	alive map[int]bool

	// IgnoreTerminate simulates a process that survives SIGTERM and only
	// dies on Kill.
	IgnoreTerminate bool

	// Launched records the rules launched, in order.
	Launched []rules.Rule
}

func NewFake() *Fake {
	return &Fake{
		FailPorts: make(map[int]error),
		nextPID:   1000,
		alive:     make(map[int]bool),
	}
}

func (f *Fake) Launch(ctx context.Context, rule rules.Rule) (int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err, ok := f.FailPorts[rule.LocalPort]; ok {
		return 0, err
	}

	f.nextPID++
	f.alive[f.nextPID] = true
	f.Launched = append(f.Launched, rule)
	return f.nextPID, nil
}

func (f *Fake) Alive(pid int) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.alive[pid]
}

func (f *Fake) Terminate(pid int) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.alive[pid] {
		return ErrProcessDead
	}
	if !f.IgnoreTerminate {
		delete(f.alive, pid)
	}
	return nil
}

func (f *Fake) Kill(pid int) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.alive[pid] {
		return ErrProcessDead
	}
	delete(f.alive, pid)
	return nil
}

// MarkDead simulates a supervised process dying behind the registry's back.
func (f *Fake) MarkDead(pid int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	delete(f.alive, pid)
}

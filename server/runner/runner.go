// Package runner tracks parts of the server that can only be run once.
package runner

import (
	"fmt"
	"sync"
)

type (
	// Runner tracks the lifecycle of a named part of the server.  It is safe for concurrent use.
	Runner struct {
		name  string
		mu    sync.Mutex
		state State
	}

	// State is a phase in the lifecycle of a Runner.
	State int
)

const (
	// Idle is the state of a runner that has not been started.
	Idle State = iota
	// Running is the state of a runner between when it is started and stopped.
	Running
	// Stopped is the final state of a runner.
	Stopped
)

// New creates an idle runner for the named part of the server.
func New(name string) *Runner {
	r := Runner{
		name: name,
	}
	return &r
}

// Start moves an idle runner to Running.  An error is returned if the runner has already been started.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Idle {
		return fmt.Errorf("%v is %v, it can only be run once", r.name, r.state)
	}
	r.state = Running
	return nil
}

// Stop marks the runner as stopped, even if it was never started.  Stopping a stopped runner does nothing.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Stopped
}

// State is the current phase of the runner.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// String returns the display value for the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "?"
}

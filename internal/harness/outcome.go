// Package harness runs one target process per scripted scenario, bounded by
// a wall-clock governor, and reduces whatever happens to a single Outcome.
package harness

import "time"

// State represents the lifecycle state of one process session.
type State string

const (
	// StateStarting indicates the target process has not been launched yet.
	StateStarting State = "starting"
	// StateRunning indicates a live target process consuming scripted input.
	StateRunning State = "running"
	// StateCompleted indicates the target exited on its own, whatever its exit code.
	StateCompleted State = "completed"
	// StateTimedOut indicates the governor killed the target at the ceiling.
	StateTimedOut State = "timed_out"
	// StateFailed indicates the session broke before or during the run.
	StateFailed State = "failed"
)

// Terminal reports whether the state ends a session.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateTimedOut || s == StateFailed
}

// Outcome is the immutable record of one session: exactly one is produced
// per scenario, and none is ever retried or merged.
type Outcome struct {
	Scenario string
	State    State
	Stdout   string
	Stderr   string
	ExitCode int
	Elapsed  time.Duration
	Err      error
}

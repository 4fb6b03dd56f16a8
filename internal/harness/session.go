package harness

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pixelprobe/pxp/internal/scenario"
)

// DefaultTimeout is the wall-clock ceiling for one session.
const DefaultTimeout = 60 * time.Second

// Session owns one live instance of the target program. It writes scripted
// input, drains both output streams, and races completion against the
// governor. One Session may run many scenarios, but never concurrently.
type Session struct {
	target  string
	args    []string
	timeout time.Duration
	logger  *log.Logger
	now     func() time.Time
}

// NewSession builds a session factory for the given target invocation.
func NewSession(target string, args []string, timeout time.Duration, logger *log.Logger) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		target:  target,
		args:    append([]string(nil), args...),
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes one scenario to a terminal state. Per-session failures are
// folded into the returned Outcome; Run itself never panics or propagates.
//
// The scripted input is written and both output streams are drained by
// concurrent goroutines synchronized on a single completion signal. None of
// the three may block the others: the target interleaves prompts with
// reads, so serializing them deadlocks on a full pipe buffer.
func (s *Session) Run(ctx context.Context, sc scenario.Scenario) Outcome {
	outcome := Outcome{Scenario: sc.Name, State: StateStarting, ExitCode: -1}
	started := s.now()

	if err := sc.Validate(); err != nil {
		return s.fail(outcome, started, err)
	}

	cmd := exec.Command(s.target, s.args...)
	// Own process group, so a timeout kill reaps the target and anything it
	// spawned; a surviving grandchild would hold the pipes open forever.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return s.fail(outcome, started, &LaunchError{Target: s.target, Err: err})
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return s.fail(outcome, started, &LaunchError{Target: s.target, Err: err})
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return s.fail(outcome, started, &LaunchError{Target: s.target, Err: err})
	}

	if err := cmd.Start(); err != nil {
		return s.fail(outcome, started, &LaunchError{Target: s.target, Err: err})
	}
	outcome.State = StateRunning
	s.logger.With("scenario", sc.Name, "pid", cmd.Process.Pid).Debug("session started")

	var (
		stdoutBuf, stderrBuf bytes.Buffer
		stdinErr             error
		stdoutErr            error
		stderrErr            error
		wg                   sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if _, err := io.WriteString(stdin, sc.Stdin()); err != nil && !ignorableWriteError(err) {
			stdinErr = err
		}
		// Close signals end-of-input so a target reading to EOF cannot hang.
		_ = stdin.Close()
	}()
	go func() {
		defer wg.Done()
		_, stdoutErr = io.Copy(&stdoutBuf, stdout)
	}()
	go func() {
		defer wg.Done()
		_, stderrErr = io.Copy(&stderrBuf, stderr)
	}()

	done := make(chan error, 1)
	go func() {
		wg.Wait()
		done <- cmd.Wait()
	}()

	kill := func() { killGroup(cmd) }
	gov := NewGovernor(s.timeout, kill)
	defer gov.Stop()

	var waitErr error
	cancelled := false
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		gov.Stop()
		kill()
		waitErr = <-done
		cancelled = true
	}
	gov.Stop()

	outcome.Elapsed = s.now().Sub(started)
	outcome.Stdout = stdoutBuf.String()
	outcome.Stderr = stderrBuf.String()
	if cmd.ProcessState != nil {
		outcome.ExitCode = cmd.ProcessState.ExitCode()
	}

	outcome.State, outcome.Err = s.classify(ctx, gov, waitErr, cancelled, stdinErr, stdoutErr, stderrErr)
	s.logger.With(
		"scenario", sc.Name,
		"state", outcome.State,
		"exit_code", outcome.ExitCode,
		"elapsed", outcome.Elapsed,
	).Info("session finished")
	return outcome
}

// classify reduces the race results to one terminal state. Timeout wins over
// everything else; ctx cancellation and stream failures are both Failed; a
// nonzero exit from the target is still Completed, the harness records the
// exit code as metadata only.
func (s *Session) classify(
	ctx context.Context,
	gov *Governor,
	waitErr error,
	cancelled bool,
	stdinErr, stdoutErr, stderrErr error,
) (State, error) {
	select {
	case <-gov.Expired():
		return StateTimedOut, nil
	default:
	}
	if cancelled {
		return StateFailed, ctx.Err()
	}
	if stdinErr != nil {
		return StateFailed, &IOError{Stream: "stdin", Err: stdinErr}
	}
	if stdoutErr != nil {
		return StateFailed, &IOError{Stream: "stdout", Err: stdoutErr}
	}
	if stderrErr != nil {
		return StateFailed, &IOError{Stream: "stderr", Err: stderrErr}
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return StateCompleted, nil
		}
		return StateFailed, &IOError{Stream: "wait", Err: waitErr}
	}
	return StateCompleted, nil
}

func (s *Session) fail(outcome Outcome, started time.Time, err error) Outcome {
	outcome.State = StateFailed
	outcome.Err = err
	outcome.Elapsed = s.now().Sub(started)
	s.logger.With("scenario", outcome.Scenario, "error", err).Error("session failed to run")
	return outcome
}

// killGroup hard-kills the target's process group, falling back to the
// process itself when the group signal fails. Killing an already-exited
// process is a no-op.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

// ignorableWriteError filters stdin write failures caused by the target
// exiting before consuming the whole script, which is legitimate behavior
// for a menu program that quits early.
func ignorableWriteError(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}

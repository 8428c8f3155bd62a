// Package executor spawns one operating-system process per validated
// hook invocation, feeds it the serialized event on stdin and enforces
// the timeout with staged signal escalation (SIGTERM, then SIGKILL
// after a grace period).
package executor

import (
	"bytes"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/yanmxa/hookrun/internal/log"
	"go.uber.org/zap"
)

// DefaultGrace is how long a process gets between the graceful
// termination signal and the forceful kill.
const DefaultGrace = 5 * time.Second

// Spec describes one process to run. All paths are absolute and already
// validated by the sandbox; the payload goes to stdin, never to argv.
type Spec struct {
	ScriptPath string
	WorkDir    string
	Env        []string
	Stdin      []byte
	Timeout    time.Duration
}

// Result is the raw outcome of one process run.
type Result struct {
	// PID is 0 when the process never started.
	PID int

	// ExitCode is -1 when no exit code is available (spawn failure, or
	// the process died from a signal).
	ExitCode int

	// TimedOut is set when the timeout fired and the process was
	// terminated by the executor.
	TimedOut bool

	StdoutLines int
	StderrLines int
	Duration    time.Duration

	// Err is set for spawn-level failures (missing interpreter,
	// permission denied). The process produced no exit code.
	Err error
}

// Executor runs hook processes. The zero value is not usable; use New.
type Executor struct {
	// Grace is the SIGTERM-to-SIGKILL window. Exposed so tests can
	// shorten the escalation without waiting out the default.
	Grace time.Duration
}

func New() *Executor {
	return &Executor{Grace: DefaultGrace}
}

// Run spawns the process described by spec and blocks until it reaches
// a terminal state. There is no external cancellation mid-run; the
// per-invocation timeout is the only kill mechanism.
func (e *Executor) Run(spec Spec) Result {
	start := time.Now()

	cmd := exec.Command(spec.ScriptPath)
	cmd.Dir = spec.WorkDir
	cmd.Env = spec.Env
	cmd.Stdin = bytes.NewReader(spec.Stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Own process group, so signals reach the script's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return Result{
			ExitCode: -1,
			Duration: time.Since(start),
			Err:      fmt.Errorf("spawn %s: %w", spec.ScriptPath, err),
		}
	}
	pid := cmd.Process.Pid

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(spec.Timeout)
	defer timer.Stop()

	var waitErr error
	timedOut := false

	select {
	case waitErr = <-done:
	case <-timer.C:
		timedOut = true
		log.Logger().Warn("hook timed out, sending SIGTERM",
			zap.String("script", spec.ScriptPath),
			zap.Int("pid", pid),
			zap.Duration("timeout", spec.Timeout))
		killGroup(pid, syscall.SIGTERM)

		grace := time.NewTimer(e.Grace)
		select {
		case waitErr = <-done:
			grace.Stop()
		case <-grace.C:
			log.Logger().Warn("hook ignored SIGTERM, sending SIGKILL",
				zap.String("script", spec.ScriptPath),
				zap.Int("pid", pid))
			killGroup(pid, syscall.SIGKILL)
			waitErr = <-done
		}
	}

	return Result{
		PID:         pid,
		ExitCode:    exitCode(waitErr),
		TimedOut:    timedOut,
		StdoutLines: countLines(stdout.Bytes()),
		StderrLines: countLines(stderr.Bytes()),
		Duration:    time.Since(start),
	}
}

// killGroup signals the whole process group, ignoring already-exited
// processes.
func killGroup(pid int, sig syscall.Signal) {
	if err := syscall.Kill(-pid, sig); err != nil && err != syscall.ESRCH {
		log.Logger().Warn("signal delivery failed",
			zap.Int("pid", pid),
			zap.String("signal", sig.String()),
			zap.Error(err))
	}
}

// exitCode extracts the exit code from a Wait error. Returns -1 when no
// code is available (e.g. the process was killed by a signal).
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// countLines counts output lines; a trailing unterminated line counts.
// Output is counted rather than retained to keep audit records small.
func countLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte{'\n'})
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}

package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanmxa/hookrun/internal/audit"
	"github.com/yanmxa/hookrun/internal/config"
	"github.com/yanmxa/hookrun/internal/event"
	"github.com/yanmxa/hookrun/internal/executor"
	"github.com/yanmxa/hookrun/internal/log"
	"github.com/yanmxa/hookrun/internal/sandbox"
)

// ErrHookFailed is returned when a stop-mode hook fails and the
// dispatch cycle aborts.
var ErrHookFailed = errors.New("hook failed")

// Runner abstracts the process executor so tests can prove no process
// is spawned on sandbox rejections.
type Runner interface {
	Run(spec executor.Spec) executor.Result
}

// Dispatcher runs the matched hooks of a dispatch cycle sequentially:
// validate, execute, audit, then apply the fail-open/fail-stop policy.
type Dispatcher struct {
	projectRoot string
	hooksRoot   string
	audit       *audit.Logger
	runner      Runner
}

// NewDispatcher creates a dispatcher. projectRoot bounds working
// directories, hooksRoot bounds script paths.
func NewDispatcher(projectRoot, hooksRoot string, auditLog *audit.Logger) *Dispatcher {
	return &Dispatcher{
		projectRoot: projectRoot,
		hooksRoot:   hooksRoot,
		audit:       auditLog,
		runner:      executor.New(),
	}
}

// Dispatch runs every configured hook matching the event, one at a
// time, and returns one HookResult per hook that reached a terminal
// state. On a fatal outcome (security error, or any failure of a
// stop-mode hook) the partial results are returned alongside the error
// so the caller can inspect what ran before the abort.
//
// The context is honored between hooks only; an in-flight hook is
// bounded solely by its own timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event, hooks []config.Hook) ([]HookResult, error) {
	matched := Match(hooks, ev)
	results := make([]HookResult, 0, len(matched))
	if len(matched) == 0 {
		return results, nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return results, fmt.Errorf("serialize event %s: %w", ev.ID, err)
	}

	for _, h := range matched {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		handle, err := d.audit.Started(ev.ID, h.Name)
		if err != nil {
			return results, fmt.Errorf("audit hook %q: %w", h.Name, err)
		}

		inv, verr := sandbox.Validate(h, d.projectRoot, d.hooksRoot)
		if verr != nil {
			// Security errors are non-negotiable: record, stop the
			// whole run, ignore fail_mode.
			res := HookResult{
				HookName:     h.Name,
				Status:       StatusSecurityError,
				ErrorMessage: verr.Error(),
			}
			results = append(results, res)
			d.terminal(handle, res, 0)
			return results, verr
		}

		for _, w := range inv.Warnings {
			log.Logger().Warn("sandbox warning",
				zap.String("event_id", ev.ID),
				zap.String("hook", h.Name),
				zap.String("warning", w))
		}

		out := d.runner.Run(executor.Spec{
			ScriptPath: inv.ScriptPath,
			WorkDir:    inv.WorkDir,
			Env:        inv.Env,
			Stdin:      payload,
			Timeout:    h.Timeout(),
		})

		res := resultFrom(h.Name, out)
		results = append(results, res)
		d.terminal(handle, res, out.PID)

		if res.Status == StatusSuccess {
			continue
		}
		if h.FailMode == config.FailModeStop {
			return results, fmt.Errorf("hook %q: %s: %w", h.Name, res.Status, ErrHookFailed)
		}
		log.Logger().Warn("hook failed, continuing",
			zap.String("event_id", ev.ID),
			zap.String("hook", h.Name),
			zap.String("status", string(res.Status)),
			zap.String("error", res.ErrorMessage))
	}

	return results, nil
}

// DryRun reports which hooks would run for the event without invoking
// the validator or the executor.
func (d *Dispatcher) DryRun(ev event.Event, hooks []config.Hook) []config.Hook {
	return Match(hooks, ev)
}

// terminal writes the end-of-invocation audit record. Audit append
// failures are logged, not surfaced: the invocation already has its
// result and the operator can see the failure in the debug log.
func (d *Dispatcher) terminal(handle audit.Handle, res HookResult, pid int) {
	err := d.audit.Terminal(handle, audit.TerminalInfo{
		Status:          string(res.Status),
		ExitCode:        res.ExitCode,
		DurationMs:      res.DurationMs,
		PID:             pid,
		StdoutLineCount: res.StdoutLineCount,
		StderrLineCount: res.StderrLineCount,
		Error:           res.ErrorMessage,
	})
	if err != nil {
		log.Logger().Warn("audit append failed",
			zap.String("hook", res.HookName),
			zap.Error(err))
	}
}

// resultFrom maps a raw executor outcome to a HookResult.
func resultFrom(hookName string, out executor.Result) HookResult {
	res := HookResult{
		HookName:        hookName,
		DurationMs:      out.Duration.Milliseconds(),
		StdoutLineCount: out.StdoutLines,
		StderrLineCount: out.StderrLines,
	}
	if out.ExitCode >= 0 {
		code := out.ExitCode
		res.ExitCode = &code
	}

	switch {
	case out.Err != nil:
		res.Status = StatusFailed
		res.ErrorMessage = out.Err.Error()
	case out.TimedOut:
		res.Status = StatusTimeout
		res.ErrorMessage = "terminated after exceeding timeout"
	case out.ExitCode == 0:
		res.Status = StatusSuccess
	default:
		res.Status = StatusFailed
		res.ErrorMessage = fmt.Sprintf("exited with code %d", out.ExitCode)
	}
	return res
}

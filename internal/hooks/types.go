// Package hooks implements the hook execution engine: matching
// configured hooks against lifecycle events and running them
// sequentially under the sandbox, timeout and audit contracts.
package hooks

// Status is the terminal outcome of one hook invocation.
type Status string

const (
	// StatusSuccess means the process exited 0.
	StatusSuccess Status = "success"
	// StatusFailed means the process exited non-zero or failed to spawn.
	StatusFailed Status = "failed"
	// StatusTimeout means the process was terminated after exceeding
	// its timeout.
	StatusTimeout Status = "timeout"
	// StatusSecurityError means the sandbox rejected the hook before
	// any process was spawned.
	StatusSecurityError Status = "security_error"
)

// HookResult is produced once per (event, hook) pair and is immutable
// once constructed.
type HookResult struct {
	HookName        string `json:"hook_name"`
	Status          Status `json:"status"`
	ExitCode        *int   `json:"exit_code,omitempty"`
	DurationMs      int64  `json:"duration_ms"`
	StdoutLineCount int    `json:"stdout_line_count"`
	StderrLineCount int    `json:"stderr_line_count"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

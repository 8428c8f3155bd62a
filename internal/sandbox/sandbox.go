// Package sandbox validates a hook's script path, working directory and
// environment against the cooperative sandbox policy. Validation is pure
// apart from a file-existence check and runs to completion before any
// process is spawned.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yanmxa/hookrun/internal/config"
)

// SecurityError reports a sandbox violation. It is always fatal to the
// dispatch cycle regardless of the hook's fail_mode.
type SecurityError struct {
	Hook   string
	Reason string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("security violation in hook %q: %s", e.Hook, e.Reason)
}

// Invocation is a validated, ready-to-execute description of one hook run.
type Invocation struct {
	// ScriptPath is the absolute path of the script, inside the hooks root.
	ScriptPath string

	// WorkDir is the absolute working directory, inside the project root.
	WorkDir string

	// Env is the sanitized environment in KEY=value form.
	Env []string

	// Warnings lists environment variables that were skipped, with reasons.
	Warnings []string
}

// metachars are the shell metacharacters that disqualify an
// environment value. Skipped values are a warning, not an error.
const metachars = ";|&$`<>()\n"

// envNameOK reports whether name is a plain POSIX-style variable name.
func envNameOK(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Validate checks the hook against the sandbox policy and, on success,
// returns the invocation the executor should run. Checks are ordered so
// the cheapest lexical rejections come first.
func Validate(h config.Hook, projectRoot, hooksRoot string) (*Invocation, error) {
	scriptPath, err := resolveInside(h.Name, h.Script, hooksRoot, "script path")
	if err != nil {
		return nil, err
	}

	info, statErr := os.Stat(scriptPath)
	if statErr != nil || info.IsDir() {
		return nil, &SecurityError{Hook: h.Name, Reason: fmt.Sprintf("script %q does not exist under hooks root", h.Script)}
	}

	workDir := projectRoot
	if h.WorkingDirectory != "" {
		workDir, err = resolveInside(h.Name, h.WorkingDirectory, projectRoot, "working directory")
		if err != nil {
			return nil, err
		}
	}

	env, warnings := SanitizeEnv(h.Environment)

	return &Invocation{
		ScriptPath: scriptPath,
		WorkDir:    workDir,
		Env:        env,
		Warnings:   warnings,
	}, nil
}

// resolveInside joins rel onto root and rejects traversal, absolute
// paths and lexical escapes of root.
func resolveInside(hook, rel, root, what string) (string, error) {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == ".." {
			return "", &SecurityError{Hook: hook, Reason: what + " contains a parent directory traversal segment"}
		}
	}
	if filepath.IsAbs(rel) {
		return "", &SecurityError{Hook: hook, Reason: what + " must be relative"}
	}

	resolved := filepath.Clean(filepath.Join(root, rel))
	inside, err := filepath.Rel(root, resolved)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", &SecurityError{Hook: hook, Reason: what + " escapes its allowed root"}
	}
	return resolved, nil
}

// baseEnv are the host variables every hook inherits.
var baseEnv = []string{"PATH", "HOME", "USER", "LOGNAME"}

// SanitizeEnv builds the child environment: the minimal fixed base plus
// each declared variable whose value is free of shell metacharacters.
// Skipped variables are reported as warnings.
func SanitizeEnv(declared map[string]string) (env []string, warnings []string) {
	for _, name := range baseEnv {
		if v, ok := os.LookupEnv(name); ok {
			env = append(env, name+"="+v)
		}
	}

	// Deterministic order for the declared variables.
	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := declared[name]
		if !envNameOK(name) {
			warnings = append(warnings, fmt.Sprintf("skipped environment variable %q: invalid name", name))
			continue
		}
		if strings.ContainsAny(value, metachars) {
			warnings = append(warnings, fmt.Sprintf("skipped environment variable %q: value contains shell metacharacters", name))
			continue
		}
		env = append(env, name+"="+value)
	}
	return env, warnings
}

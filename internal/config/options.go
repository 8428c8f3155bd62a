package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Options holds runtime settings for the engine, resolved from the
// environment. CLI flags may override individual fields afterwards.
type Options struct {
	// ProjectRoot is the sandbox boundary for working directories.
	ProjectRoot string `env:"HOOKRUN_PROJECT_ROOT"`

	// HooksRoot is the directory hook scripts must live under.
	// Defaults to <ProjectRoot>/.hookrun/hooks.
	HooksRoot string `env:"HOOKRUN_HOOKS_ROOT"`

	// AuditDir is where audit.log and its rotations are written.
	// Defaults to <ProjectRoot>/.hookrun.
	AuditDir string `env:"HOOKRUN_AUDIT_DIR"`
}

// OptionsFromEnv parses Options from the environment and fills in the
// defaults for any unset field.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, err
	}

	if opts.ProjectRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Options{}, err
		}
		opts.ProjectRoot = cwd
	}
	if opts.HooksRoot == "" {
		opts.HooksRoot = filepath.Join(opts.ProjectRoot, ".hookrun", "hooks")
	}
	if opts.AuditDir == "" {
		opts.AuditDir = filepath.Join(opts.ProjectRoot, ".hookrun")
	}
	return opts, nil
}

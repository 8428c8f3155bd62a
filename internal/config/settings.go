// Package config provides the hook configuration model for hookrun.
// Hook sets are loaded from YAML files at two levels with the following
// priority (lowest to highest):
//  1. ~/.hookrun/hooks.yaml (user level)
//  2. .hookrun/hooks.yaml (project level)
//
// Runtime options (roots, audit directory) come from environment
// variables, see options.go.
package config

import (
	"fmt"
	"time"
)

// FailMode decides whether a failing hook halts the remaining hooks of
// a dispatch cycle.
type FailMode string

const (
	// FailModeContinue records the failure and proceeds to the next hook.
	FailModeContinue FailMode = "continue"
	// FailModeStop aborts the dispatch cycle on the first failure.
	FailModeStop FailMode = "stop"
)

// Timeout bounds applied at load time.
const (
	DefaultTimeoutSeconds = 30
	MinTimeoutSeconds     = 1
	MaxTimeoutSeconds     = 600
)

// Settings represents a decoded hook configuration set.
type Settings struct {
	// Hooks in declaration order. Declaration order is the execution
	// order, so it is part of the configuration contract.
	Hooks []Hook `yaml:"hooks"`
}

// Hook defines a single configured hook.
type Hook struct {
	// Name uniquely identifies the hook within a configuration set.
	Name string `yaml:"name"`

	// Script is the path of the executable, relative to the hooks root.
	Script string `yaml:"script"`

	// TimeoutSeconds bounds the script's runtime. Defaults to 30,
	// clamped to [1, 600] at load time.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// FailMode is "continue" (default) or "stop".
	FailMode FailMode `yaml:"fail_mode"`

	// WorkingDirectory is optional and relative to the project root.
	WorkingDirectory string `yaml:"working_directory"`

	// Environment lists additional variables for the script. Values
	// containing shell metacharacters are dropped by the sandbox.
	Environment map[string]string `yaml:"environment"`

	// Filter selects which events trigger this hook.
	Filter Filter `yaml:"filter"`
}

// Filter is a predicate over the event type and payload fields.
type Filter struct {
	// Events is a regex matched against the event type, anchored at
	// both ends. Empty or "*" matches every event type.
	Events string `yaml:"events"`

	// Fields maps payload field names to glob patterns. All declared
	// fields must be present and match.
	Fields map[string]string `yaml:"fields"`
}

// Timeout returns the hook's timeout as a duration.
func (h Hook) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// NewSettings creates an empty Settings instance.
func NewSettings() *Settings {
	return &Settings{}
}

// Normalize applies defaults and clamps, then validates the set.
// It must be called once after decoding, before the hooks are handed
// to the engine.
func (s *Settings) Normalize() error {
	seen := make(map[string]bool, len(s.Hooks))
	for i := range s.Hooks {
		h := &s.Hooks[i]

		if h.Name == "" {
			return fmt.Errorf("hook %d: name is required", i)
		}
		if seen[h.Name] {
			return fmt.Errorf("hook %q: duplicate name", h.Name)
		}
		seen[h.Name] = true

		if h.Script == "" {
			return fmt.Errorf("hook %q: script is required", h.Name)
		}

		switch h.TimeoutSeconds {
		case 0:
			h.TimeoutSeconds = DefaultTimeoutSeconds
		default:
			if h.TimeoutSeconds < MinTimeoutSeconds {
				h.TimeoutSeconds = MinTimeoutSeconds
			}
			if h.TimeoutSeconds > MaxTimeoutSeconds {
				h.TimeoutSeconds = MaxTimeoutSeconds
			}
		}

		switch h.FailMode {
		case "":
			h.FailMode = FailModeContinue
		case FailModeContinue, FailModeStop:
		default:
			return fmt.Errorf("hook %q: invalid fail_mode %q", h.Name, h.FailMode)
		}
	}
	return nil
}

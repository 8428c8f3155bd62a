package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and merging hook sets from multiple sources.
type Loader struct {
	// userDir is the user-level config directory (e.g., ~/.hookrun)
	userDir string

	// projectDir is the project-level config directory (e.g., <root>/.hookrun)
	projectDir string
}

// NewLoader creates a loader for the given project root. It defaults to:
//   - userDir: ~/.hookrun
//   - projectDir: <projectRoot>/.hookrun
func NewLoader(projectRoot string) *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		userDir:    filepath.Join(homeDir, ".hookrun"),
		projectDir: filepath.Join(projectRoot, ".hookrun"),
	}
}

// NewLoaderWithOptions creates a loader with custom directories.
func NewLoaderWithOptions(userDir, projectDir string) *Loader {
	return &Loader{userDir: userDir, projectDir: projectDir}
}

// Load loads and merges hook sets from all sources.
// Priority (lowest to highest):
//  1. <userDir>/hooks.yaml
//  2. <projectDir>/hooks.yaml
//
// A project-level hook replaces a user-level hook of the same name in
// place, preserving its position; new hooks are appended. Missing files
// are skipped. The merged set is normalized before being returned.
func (l *Loader) Load() (*Settings, error) {
	settings := NewSettings()

	sources := []string{
		filepath.Join(l.userDir, "hooks.yaml"),
		filepath.Join(l.projectDir, "hooks.yaml"),
	}

	for _, path := range sources {
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if loaded != nil {
			mergeHooks(settings, loaded)
		}
	}

	if err := settings.Normalize(); err != nil {
		return nil, err
	}
	return settings, nil
}

// loadFile reads one hooks file. Returns (nil, nil) if it doesn't exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	s := NewSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// mergeHooks merges src into dst, overriding by name.
func mergeHooks(dst, src *Settings) {
	index := make(map[string]int, len(dst.Hooks))
	for i, h := range dst.Hooks {
		index[h.Name] = i
	}
	for _, h := range src.Hooks {
		if i, ok := index[h.Name]; ok {
			dst.Hooks[i] = h
			continue
		}
		index[h.Name] = len(dst.Hooks)
		dst.Hooks = append(dst.Hooks, h)
	}
}

// Package home manages the raybanai home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the raybanai home directory.
	DefaultDirName = ".raybanai"

	// DataDirName is the subdirectory for the history log and snapshots.
	DataDirName = "data"

	// SnapshotsDirName is the subdirectory for per-request analysis snapshots.
	SnapshotsDirName = "analyses"

	// ConfigFileName is the default server config file name.
	ConfigFileName = "config.yaml"

	// SettingsFileName is the runtime settings file name.
	SettingsFileName = "config.json"

	// HistoryFileName is the ordered history log file name.
	HistoryFileName = "vision_log.json"

	// PromptsFileName is the local prompt mapping file name.
	PromptsFileName = "prompts.json"
)

// Dir represents the raybanai home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.raybanai).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DataPath returns the path to the data directory.
func (d *Dir) DataPath() string {
	return filepath.Join(d.path, DataDirName)
}

// SnapshotsPath returns the directory holding per-request snapshot files.
func (d *Dir) SnapshotsPath() string {
	return filepath.Join(d.DataPath(), SnapshotsDirName)
}

// ConfigPath returns the path to the server config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// SettingsPath returns the path to the runtime settings file.
func (d *Dir) SettingsPath() string {
	return filepath.Join(d.path, SettingsFileName)
}

// HistoryPath returns the path to the history log file.
func (d *Dir) HistoryPath() string {
	return filepath.Join(d.DataPath(), HistoryFileName)
}

// PromptsPath returns the path to the local prompt mapping file.
func (d *Dir) PromptsPath() string {
	return filepath.Join(d.path, PromptsFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.SnapshotsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

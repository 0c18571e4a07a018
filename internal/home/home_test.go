package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultsToUserHome(t *testing.T) {
	userHome, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no user home directory")
	}

	d, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Path() != filepath.Join(userHome, DefaultDirName) {
		t.Fatalf("Path() = %q", d.Path())
	}
}

func TestPaths(t *testing.T) {
	root := t.TempDir()
	d, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		got  string
		want string
	}{
		{d.Path(), root},
		{d.DataPath(), filepath.Join(root, "data")},
		{d.SnapshotsPath(), filepath.Join(root, "data", "analyses")},
		{d.ConfigPath(), filepath.Join(root, "config.yaml")},
		{d.SettingsPath(), filepath.Join(root, "config.json")},
		{d.HistoryPath(), filepath.Join(root, "data", "vision_log.json")},
		{d.PromptsPath(), filepath.Join(root, "prompts.json")},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestEnsureExists(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "nested", "home"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if d.Exists() {
		t.Fatal("directory should not exist yet")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	if !d.Exists() {
		t.Fatal("directory should exist")
	}

	info, err := os.Stat(d.SnapshotsPath())
	if err != nil || !info.IsDir() {
		t.Fatalf("snapshots dir not created: %v", err)
	}

	// Idempotent
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("second EnsureExists: %v", err)
	}
}

func TestConfigExists(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if d.ConfigExists() {
		t.Fatal("config should not exist yet")
	}
	if err := os.WriteFile(d.ConfigPath(), []byte("vision: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !d.ConfigExists() {
		t.Fatal("config should exist")
	}
}

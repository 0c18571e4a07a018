package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultCategory is the category used when a request omits one and the
// settings file carries no override.
const DefaultCategory = "NutritionAnalysis"

// Settings are the runtime toggles persisted to config.json.
// The JSON keys are kept from the original HTTP API, so stored files and
// existing clients keep working: the "mongo" names mean the external
// document store regardless of which store backs it.
type Settings struct {
	DocumentStoreEnabled bool   `json:"mongoEnabled"`
	UseRemotePrompts     bool   `json:"useMongoPrompt"`
	DefaultCategory      string `json:"defaultCategory"`
}

// DefaultSettings returns the settings used before any write.
func DefaultSettings() Settings {
	return Settings{
		DocumentStoreEnabled: false,
		UseRemotePrompts:     false,
		DefaultCategory:      DefaultCategory,
	}
}

// settingsSchema guards hand-edited settings files. Unknown keys and wrong
// types fail loudly instead of silently toggling persistence behavior.
const settingsSchema = `{
	"type": "object",
	"properties": {
		"mongoEnabled":    {"type": "boolean"},
		"useMongoPrompt":  {"type": "boolean"},
		"defaultCategory": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`

var compiledSettingsSchema = jsonschema.MustCompileString("settings.json", settingsSchema)

// SettingsStore persists runtime settings to a JSON file.
//
// Get reads the file on every call: a write takes effect on the next
// request-scoped read, never mid-request.
type SettingsStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSettingsStore creates a settings store backed by the given file path.
func NewSettingsStore(path string, logger *slog.Logger) *SettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *SettingsStore) Path() string {
	return s.path
}

// Get returns the current settings. A missing file yields the defaults; a
// corrupt file is reported and the defaults are used so a request can still
// be served.
func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read settings file, using defaults", "path", s.path, "error", err)
		}
		return DefaultSettings()
	}

	settings, err := parseSettings(data)
	if err != nil {
		s.logger.Warn("invalid settings file, using defaults", "path", s.path, "error", err)
		return DefaultSettings()
	}
	return settings
}

// Update merges the given settings into the file. The write is atomic at the
// file level (temp file + rename).
func (s *SettingsStore) Update(settings Settings) error {
	if strings.TrimSpace(settings.DefaultCategory) == "" {
		settings.DefaultCategory = DefaultCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	s.logger.Info("settings updated",
		"document_store_enabled", settings.DocumentStoreEnabled,
		"use_remote_prompts", settings.UseRemotePrompts,
		"default_category", settings.DefaultCategory)
	return nil
}

// parseSettings validates raw JSON against the settings schema and decodes it.
func parseSettings(data []byte) (Settings, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("settings file is not valid JSON: %w", err)
	}
	if err := compiledSettingsSchema.Validate(doc); err != nil {
		return Settings{}, fmt.Errorf("settings file does not match schema: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if strings.TrimSpace(settings.DefaultCategory) == "" {
		settings.DefaultCategory = DefaultCategory
	}
	return settings, nil
}

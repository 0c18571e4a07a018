package prompts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// LocalStore is the file-backed prompt mapping. It seeds the built-in
// defaults on first access, so a lookup always has something to return.
type LocalStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewLocalStore creates a local prompt store backed by the given file.
func NewLocalStore(path string, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *LocalStore) Path() string {
	return s.path
}

// Get returns the prompt text for a category. An absent category is not an
// error: the built-in nutrition default is returned instead.
func (s *LocalStore) Get(category string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read()
	if err != nil {
		return "", err
	}

	if text, ok := mapping[category]; ok && text != "" {
		return text, nil
	}
	s.logger.Debug("category not in local mapping, using default", "category", category)
	return DefaultText(), nil
}

// All returns the full local mapping.
func (s *LocalStore) All() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Set inserts or overwrites one category and persists the mapping.
func (s *LocalStore) Set(category, text string) error {
	if category == "" {
		return fmt.Errorf("category cannot be empty")
	}
	if text == "" {
		return fmt.Errorf("prompt text cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read()
	if err != nil {
		return err
	}

	mapping[category] = text
	if err := s.write(mapping); err != nil {
		return err
	}

	s.logger.Info("local prompt updated", "category", category)
	return nil
}

// read loads the mapping, creating the default file if it doesn't exist.
// Callers must hold s.mu.
func (s *LocalStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("seeding default prompts file", "path", s.path)
		defaults := DefaultPrompts()
		if err := s.write(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return mapping, nil
}

// write persists the mapping. Callers must hold s.mu.
func (s *LocalStore) write(mapping map[string]string) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prompts file: %w", err)
	}
	return nil
}

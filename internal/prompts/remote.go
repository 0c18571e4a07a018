package prompts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/raybanai/raybanai/internal/docstore"
)

// ErrRemoteMiss is returned when the remote store has no prompt for a
// category. Callers fall back to the local store.
var ErrRemoteMiss = errors.New("no remote prompt for category")

// RemoteStore reads prompt documents from the external document store.
// Documents are `{category, prompt}`; this adapter never writes.
type RemoteStore struct {
	client     *docstore.Client
	collection string
	logger     *slog.Logger
}

// NewRemoteStore creates a read-only remote prompt adapter.
func NewRemoteStore(client *docstore.Client, collection string, logger *slog.Logger) *RemoteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteStore{client: client, collection: collection, logger: logger}
}

// Get returns the remote prompt for a category, ErrRemoteMiss when the
// category has no document or the document carries empty text.
func (s *RemoteStore) Get(ctx context.Context, category string) (string, error) {
	doc, err := s.client.FindOne(ctx, s.collection, docstore.Document{"category": category})
	if errors.Is(err, docstore.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrRemoteMiss, category)
	}
	if err != nil {
		return "", fmt.Errorf("remote prompt lookup failed: %w", err)
	}

	text, _ := doc["prompt"].(string)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrRemoteMiss, category)
	}
	return text, nil
}

// All returns the full remote mapping. Documents without both fields are
// skipped.
func (s *RemoteStore) All(ctx context.Context) (map[string]string, error) {
	docs, err := s.client.Find(ctx, s.collection, nil)
	if err != nil {
		return nil, fmt.Errorf("remote prompt listing failed: %w", err)
	}

	mapping := make(map[string]string, len(docs))
	for _, doc := range docs {
		category, _ := doc["category"].(string)
		text, _ := doc["prompt"].(string)
		if category != "" && text != "" {
			mapping[category] = text
		}
	}

	s.logger.Debug("retrieved remote prompts", "count", len(mapping))
	return mapping, nil
}

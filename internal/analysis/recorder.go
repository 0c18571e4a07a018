package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raybanai/raybanai/internal/docstore"
	"github.com/raybanai/raybanai/internal/history"
)

const maxImageFetchBytes = 20 << 20

// Recorder fans a completed analysis out to the persistence sinks: the
// append-only history log, a per-analysis snapshot file, and optionally the
// document store. Sink failures are logged and never propagated; the caller
// has already received its response.
type Recorder struct {
	log          *history.Log
	snapshotsDir string
	store        *docstore.Client
	collection   string
	httpClient   *http.Client
	logger       *slog.Logger
}

// RecorderConfig configures a Recorder. Store may be nil when no document
// store is wired; the store sink is then skipped regardless of settings.
type RecorderConfig struct {
	Log          *history.Log
	SnapshotsDir string
	Store        *docstore.Client
	Collection   string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

func NewRecorder(cfg RecorderConfig) *Recorder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Recorder{
		log:          cfg.Log,
		snapshotsDir: cfg.SnapshotsDir,
		store:        cfg.Store,
		collection:   cfg.Collection,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// Record persists one analysis to every sink. The history append runs before
// the document store insert so the returned store id can be merged back onto
// the log entry; the snapshot write is independent and runs concurrently.
func (r *Recorder) Record(ctx context.Context, storeEnabled bool, img resolvedImage, prompt, output string, ts time.Time) {
	entry := history.Entry{
		Timestamp: ts,
		ImageURL:  img.Key,
		Prompt:    prompt,
		Response:  output,
	}

	var g errgroup.Group

	g.Go(func() error {
		appendErr := r.log.Append(entry)
		if appendErr != nil {
			r.logger.Error("failed to append history entry", "error", appendErr)
		}
		if storeEnabled && r.store != nil {
			// The store sink runs even when the log sink failed; only the
			// external-id merge needs a log entry to merge into.
			r.saveToStore(ctx, entry, img, appendErr == nil)
		}
		return nil
	})

	g.Go(func() error {
		if _, err := history.WriteSnapshot(r.snapshotsDir, entry); err != nil {
			r.logger.Error("failed to write analysis snapshot", "error", err)
		}
		return nil
	})

	_ = g.Wait()
}

// saveToStore inserts the analysis document and, when the history append
// succeeded, merges the returned id back onto the matching entry.
func (r *Recorder) saveToStore(ctx context.Context, entry history.Entry, img resolvedImage, linkable bool) {
	image, err := r.fetchImage(ctx, img)
	if err != nil {
		r.logger.Error("failed to fetch image for document store", "error", err)
		return
	}

	id, err := r.store.Insert(ctx, r.collection, docstore.Document{
		"timestamp": entry.Timestamp.Format(time.RFC3339Nano),
		"prompt":    entry.Prompt,
		"response":  entry.Response,
		"image":     image,
	})
	if err != nil {
		r.logger.Error("failed to save analysis to document store", "error", err)
		return
	}

	if !linkable {
		return
	}
	if err := r.log.SetExternalID(entry.Timestamp, id); err != nil {
		r.logger.Warn("failed to link document store id to history entry", "id", id, "error", err)
	}
}

// fetchImage returns the image bytes as base64 for storage. Data URLs are
// decoded from the payload already in hand, local paths are read from disk,
// and remote URLs are fetched over HTTP.
func (r *Recorder) fetchImage(ctx context.Context, img resolvedImage) (string, error) {
	if img.LocalPath != "" {
		data, err := os.ReadFile(img.LocalPath)
		if err != nil {
			return "", fmt.Errorf("error reading image file: %w", err)
		}
		return base64.StdEncoding.EncodeToString(data), nil
	}

	if strings.HasPrefix(img.Ref, "data:") {
		_, payload, found := strings.Cut(img.Ref, ",")
		if !found {
			return "", fmt.Errorf("malformed data URL")
		}
		return payload, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.Ref, nil)
	if err != nil {
		return "", fmt.Errorf("error creating image request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("error fetching image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageFetchBytes))
	if err != nil {
		return "", fmt.Errorf("error reading image response: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

package analysis

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raybanai/raybanai/internal/config"
	"github.com/raybanai/raybanai/internal/dedup"
	"github.com/raybanai/raybanai/internal/docstore"
	"github.com/raybanai/raybanai/internal/history"
	"github.com/raybanai/raybanai/internal/prompts"
	"github.com/raybanai/raybanai/internal/vision"
)

// newVisionServer returns a mock chat completions endpoint replying with the
// given text. Received prompts are collected into got.
func newVisionServer(t *testing.T, reply string, got *[]string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Messages []struct {
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if got != nil && len(body.Messages) > 0 {
			mu.Lock()
			for _, part := range body.Messages[0].Content {
				if part.Type == "text" {
					*got = append(*got, part.Text)
				}
			}
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

type serviceFixture struct {
	svc     *Service
	log     *history.Log
	dir     string
	prompts []string
}

func newServiceFixture(t *testing.T, reply string, store *docstore.Client) *serviceFixture {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	f := &serviceFixture{dir: dir}
	visionSrv := newVisionServer(t, reply, &f.prompts)

	f.log = history.NewLog(history.Config{Path: filepath.Join(dir, "vision_log.json"), Logger: logger})
	f.log.Start(t.Context())
	t.Cleanup(f.log.Stop)

	settings := config.NewSettingsStore(filepath.Join(dir, "config.json"), logger)
	local := prompts.NewLocalStore(filepath.Join(dir, "prompts.json"), logger)

	recorder := NewRecorder(RecorderConfig{
		Log:          f.log,
		SnapshotsDir: filepath.Join(dir, "analyses"),
		Store:        store,
		Collection:   "VisionAnalysis",
		Logger:       logger,
	})

	f.svc = NewService(ServiceConfig{
		Settings: settings,
		Gate:     dedup.NewGate(dedup.Config{Logger: logger}),
		Resolver: prompts.NewResolver(local, nil, logger),
		Vision:   vision.NewClient(vision.Config{APIKey: "test-key", BaseURL: visionSrv.URL, MaxRetries: 1}),
		Recorder: recorder,
		Logger:   logger,
	})
	return f
}

func TestAnalyzeReturnsResponseAndPersists(t *testing.T) {
	f := newServiceFixture(t, "roughly 450 calories", nil)

	out, err := f.svc.Analyze(t.Context(), Request{ImageURL: "https://example.com/meal.jpg"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out != "roughly 450 calories" {
		t.Fatalf("unexpected response %q", out)
	}

	f.svc.Drain()

	entries, err := f.log.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ImageURL != "https://example.com/meal.jpg" || e.Response != "roughly 450 calories" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.ExternalID != nil {
		t.Fatalf("expected nil external id, got %v", *e.ExternalID)
	}
	if e.Prompt != prompts.DefaultPrompts()[prompts.CategoryNutrition] {
		t.Fatalf("expected default nutrition prompt, got %q", e.Prompt)
	}

	snaps, err := filepath.Glob(filepath.Join(f.dir, "analyses", "analysis_*.json"))
	if err != nil || len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %v (%v)", snaps, err)
	}
}

func TestAnalyzeCategorySelectsPrompt(t *testing.T) {
	f := newServiceFixture(t, "a cat on a sofa", nil)

	if _, err := f.svc.Analyze(t.Context(), Request{ImageURL: "https://example.com/cat.jpg", Category: prompts.CategoryGeneral}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(f.prompts) != 1 || f.prompts[0] != prompts.DefaultPrompts()[prompts.CategoryGeneral] {
		t.Fatalf("expected general prompt sent upstream, got %v", f.prompts)
	}
}

func TestAnalyzeNoImage(t *testing.T) {
	f := newServiceFixture(t, "unused", nil)

	if _, err := f.svc.Analyze(t.Context(), Request{}); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if _, err := f.svc.Analyze(t.Context(), Request{Type: SourceURL}); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage for empty url source, got %v", err)
	}
}

func TestAnalyzeInvalidSourceType(t *testing.T) {
	f := newServiceFixture(t, "unused", nil)

	_, err := f.svc.Analyze(t.Context(), Request{Type: "carrier-pigeon", ImageURL: "x"})
	if !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}
}

func TestAnalyzeRejectsDuplicate(t *testing.T) {
	f := newServiceFixture(t, "ok", nil)

	if _, err := f.svc.Analyze(t.Context(), Request{ImageURL: "https://example.com/same.jpg"}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := f.svc.Analyze(t.Context(), Request{ImageURL: "https://example.com/same.jpg"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := f.svc.Analyze(t.Context(), Request{ImageURL: "https://example.com/other.jpg"}); err != nil {
		t.Fatalf("distinct image rejected: %v", err)
	}
	f.svc.Drain()
}

func TestAnalyzeLocalFileInlined(t *testing.T) {
	f := newServiceFixture(t, "a receipt", nil)

	path := filepath.Join(t.TempDir(), "receipt.jpg")
	raw := []byte{0xff, 0xd8, 0xff, 0xe0}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Analyze(t.Context(), Request{Type: SourceLocal, ImagePath: path}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	f.svc.Drain()

	entries, err := f.log.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries[0].ImageURL != path {
		t.Fatalf("history should record the caller path, got %q", entries[0].ImageURL)
	}
}

func TestAnalyzeMissingLocalFile(t *testing.T) {
	f := newServiceFixture(t, "unused", nil)

	_, err := f.svc.Analyze(t.Context(), Request{Type: SourceLocal, ImagePath: filepath.Join(t.TempDir(), "nope.jpg")})
	if err == nil || !strings.Contains(err.Error(), "error reading image file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestResolveImageBase64Prefix(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("img"))

	img, err := resolveImage(Request{Type: SourceBase64, Base64Image: raw})
	if err != nil {
		t.Fatal(err)
	}
	if img.Ref != "data:image/jpeg;base64,"+raw {
		t.Fatalf("expected data URL prefix, got %q", img.Ref)
	}

	withPrefix := "data:image/png;base64," + raw
	img, err = resolveImage(Request{Type: SourceBase64, Base64Image: withPrefix})
	if err != nil {
		t.Fatal(err)
	}
	if img.Ref != withPrefix {
		t.Fatalf("existing data URL must pass through, got %q", img.Ref)
	}
}

func TestResolveImageBareURLBody(t *testing.T) {
	img, err := resolveImage(Request{URL: "https://example.com/a.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	if img.Key != "https://example.com/a.jpg" || img.Ref != img.Key {
		t.Fatalf("unexpected resolution %+v", img)
	}
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newServiceFixture(t, "unused", nil)
	f.svc.UpdateVision(vision.NewClient(vision.Config{APIKey: "test-key", BaseURL: srv.URL, MaxRetries: 1}))

	if _, err := f.svc.Analyze(t.Context(), Request{ImageURL: "https://example.com/x.jpg"}); err == nil {
		t.Fatal("expected upstream error")
	}

	entries, err := f.log.List()
	if !errors.Is(err, history.ErrNoHistory) {
		t.Fatalf("failed analyses must not be persisted, got %v entries (err %v)", entries, err)
	}
}

func TestAnalyzeMissingCredential(t *testing.T) {
	f := newServiceFixture(t, "unused", nil)
	f.svc.UpdateVision(vision.NewClient(vision.Config{}))

	if _, err := f.svc.Analyze(t.Context(), Request{ImageURL: "https://example.com/x.jpg"}); !errors.Is(err, vision.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := f.log.List(); !errors.Is(err, history.ErrNoHistory) {
		t.Fatal("no history entry may be written without a credential")
	}
}

func TestAnalyzeStoreEnabledLinksExternalID(t *testing.T) {
	var mu sync.Mutex
	var inserted []map[string]any
	storeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/documents") {
			var doc map[string]any
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				t.Errorf("decoding document: %v", err)
			}
			mu.Lock()
			inserted = append(inserted, doc)
			mu.Unlock()
			json.NewEncoder(w).Encode(map[string]string{"id": "doc-123"})
			return
		}
		http.NotFound(w, r)
	}))
	defer storeSrv.Close()

	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer imgSrv.Close()

	f := newServiceFixture(t, "stored analysis", docstore.NewClient(storeSrv.URL, 5*time.Second))
	if err := f.svc.settings.Update(config.Settings{
		DocumentStoreEnabled: true,
		DefaultCategory:      config.DefaultCategory,
	}); err != nil {
		t.Fatalf("Update settings: %v", err)
	}

	if _, err := f.svc.Analyze(t.Context(), Request{ImageURL: imgSrv.URL + "/meal.jpg"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	f.svc.Drain()

	mu.Lock()
	defer mu.Unlock()
	if len(inserted) != 1 {
		t.Fatalf("expected 1 inserted document, got %d", len(inserted))
	}
	doc := inserted[0]
	if doc["response"] != "stored analysis" {
		t.Fatalf("unexpected stored response %v", doc["response"])
	}
	if doc["image"] != base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")) {
		t.Fatalf("unexpected stored image payload %v", doc["image"])
	}

	entries, err := f.log.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries[0].ExternalID == nil || *entries[0].ExternalID != "doc-123" {
		t.Fatalf("expected external id doc-123, got %v", entries[0].ExternalID)
	}
}

func TestRecordStoreSinkRunsWhenLogAppendFails(t *testing.T) {
	var inserts atomic.Int32
	storeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/documents") {
			inserts.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"id": "doc-1"})
			return
		}
		http.NotFound(w, r)
	}))
	defer storeSrv.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// A log whose parent directory does not exist: every append fails.
	badLog := history.NewLog(history.Config{
		Path:   filepath.Join(t.TempDir(), "missing", "vision_log.json"),
		Logger: logger,
	})
	badLog.Start(t.Context())
	t.Cleanup(badLog.Stop)

	rec := NewRecorder(RecorderConfig{
		Log:          badLog,
		SnapshotsDir: t.TempDir(),
		Store:        docstore.NewClient(storeSrv.URL, 5*time.Second),
		Collection:   "VisionAnalysis",
		Logger:       logger,
	})

	raw := base64.StdEncoding.EncodeToString([]byte("img"))
	img := resolvedImage{Key: raw, Ref: "data:image/jpeg;base64," + raw}
	rec.Record(t.Context(), true, img, "describe", "a sandwich", time.Now().UTC())

	if got := inserts.Load(); got != 1 {
		t.Fatalf("store insert must run despite the failed log append, got %d inserts", got)
	}
	if _, err := badLog.List(); !errors.Is(err, history.ErrNoHistory) {
		t.Fatalf("log write should have failed, got %v", err)
	}
}

func TestAnalyzeStoreFailureDoesNotAffectResponse(t *testing.T) {
	storeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"down"}`, http.StatusBadRequest)
	}))
	defer storeSrv.Close()

	f := newServiceFixture(t, "still works", docstore.NewClient(storeSrv.URL, 5*time.Second))
	if err := f.svc.settings.Update(config.Settings{
		DocumentStoreEnabled: true,
		DefaultCategory:      config.DefaultCategory,
	}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "img.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := f.svc.Analyze(t.Context(), Request{Type: SourceLocal, ImagePath: path})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out != "still works" {
		t.Fatalf("unexpected response %q", out)
	}
	f.svc.Drain()

	entries, err := f.log.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries[0].ExternalID != nil {
		t.Fatalf("store failure must leave external id unset, got %v", *entries[0].ExternalID)
	}
}

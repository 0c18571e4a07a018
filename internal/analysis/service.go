package analysis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raybanai/raybanai/internal/config"
	"github.com/raybanai/raybanai/internal/dedup"
	"github.com/raybanai/raybanai/internal/prompts"
	"github.com/raybanai/raybanai/internal/vision"
)

// persistTimeout bounds the background persistence fan-out for one analysis.
const persistTimeout = 60 * time.Second

// Service runs the analysis pipeline: resolve the image reference, pass the
// dedup gate, resolve the prompt, call the vision API, and hand the result to
// the recorder. Persistence runs in the background; the caller gets the
// analysis text as soon as the upstream call returns.
type Service struct {
	settings *config.SettingsStore
	gate     *dedup.Gate
	resolver *prompts.Resolver
	vision   *vision.Client
	recorder *Recorder
	logger   *slog.Logger
	now      func() time.Time

	visionMu sync.RWMutex
	wg       sync.WaitGroup
}

// ServiceConfig carries Service dependencies. Now defaults to time.Now.
type ServiceConfig struct {
	Settings *config.SettingsStore
	Gate     *dedup.Gate
	Resolver *prompts.Resolver
	Vision   *vision.Client
	Recorder *Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		settings: cfg.Settings,
		gate:     cfg.Gate,
		resolver: cfg.Resolver,
		vision:   cfg.Vision,
		recorder: cfg.Recorder,
		logger:   logger,
		now:      now,
	}
}

// Analyze runs one request through the pipeline and returns the analysis
// text. ErrNoImage and ErrDuplicate identify caller faults; other errors are
// upstream or configuration failures.
func (s *Service) Analyze(ctx context.Context, req Request) (string, error) {
	logger := s.logger.With("request_id", uuid.NewString())

	img, err := resolveImage(req)
	if err != nil {
		return "", err
	}

	if s.gate.ShouldReject(img.Key) {
		logger.Info("duplicate request rejected", "image", img.Key)
		return "", ErrDuplicate
	}

	settings := s.settings.Get()
	prompt := s.resolver.Resolve(ctx, settings, req.Category)

	logger.Info("analyzing image",
		"category", req.Category,
		"source", req.Type,
		"store_enabled", settings.DocumentStoreEnabled)

	s.visionMu.RLock()
	client := s.vision
	s.visionMu.RUnlock()

	output, err := client.Analyze(ctx, prompt, img.Ref)
	if err != nil {
		logger.Error("vision analysis failed", "error", err)
		return "", err
	}

	ts := s.now().UTC()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		rctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		s.recorder.Record(rctx, settings.DocumentStoreEnabled, img, prompt, output, ts)
	}()

	return output, nil
}

// UpdateVision swaps the vision client. Used when the configuration file
// changes while the server is running; in-flight requests keep the client
// they started with.
func (s *Service) UpdateVision(client *vision.Client) {
	s.visionMu.Lock()
	s.vision = client
	s.visionMu.Unlock()
}

// Drain blocks until all in-flight persistence work has finished. Called
// during shutdown after the HTTP server stops accepting requests.
func (s *Service) Drain() {
	s.wg.Wait()
}

// Package dedup rejects repeat analysis requests inside a trailing window.
package dedup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultWindow is the trailing duration during which a repeat request
	// for the same key is rejected.
	DefaultWindow = 3 * time.Second

	// DefaultSweepInterval is the cadence of the stale-entry sweep.
	DefaultSweepInterval = 30 * time.Second
)

// Gate is an in-memory accept/refresh gate keyed by image reference.
// Keys are opaque strings: the same image bytes behind two different
// references count as two distinct keys.
type Gate struct {
	window time.Duration
	sweep  time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Config configures a Gate.
type Config struct {
	Window        time.Duration
	SweepInterval time.Duration
	Logger        *slog.Logger

	// Now overrides the clock (tests).
	Now func() time.Time
}

// NewGate creates a deduplication gate.
func NewGate(cfg Config) *Gate {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Gate{
		window: cfg.Window,
		sweep:  cfg.SweepInterval,
		logger: cfg.Logger,
		now:    cfg.Now,
		seen:   make(map[string]time.Time),
	}
}

// ShouldReject reports whether the key was accepted within the window.
// A non-rejected call records the key's timestamp as a side effect, so the
// check and the record are a single atomic step.
func (g *Gate) ShouldReject(key string) bool {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if prior, ok := g.seen[key]; ok && now.Sub(prior) < g.window {
		return true
	}
	g.seen[key] = now
	return false
}

// Window returns the configured dedup window.
func (g *Gate) Window() time.Duration {
	return g.window
}

// Len returns the number of tracked keys.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// Start launches the background sweep. The sweep stops when ctx is
// cancelled or Stop is called.
func (g *Gate) Start(ctx context.Context) {
	ctx, g.cancel = context.WithCancel(ctx)
	g.done = make(chan struct{})

	go func() {
		defer close(g.done)
		ticker := time.NewTicker(g.sweep)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.Sweep()
			}
		}
	}()
}

// Stop cancels the background sweep and waits for it to exit.
func (g *Gate) Stop() {
	g.stopOnce.Do(func() {
		if g.cancel != nil {
			g.cancel()
			<-g.done
		}
	})
}

// Sweep removes entries older than the window. A single "now" is taken at
// sweep start and every entry is judged against it, so an entry accepted
// while the sweep runs is never removed.
func (g *Gate) Sweep() {
	now := g.now()

	g.mu.Lock()
	removed := 0
	for key, ts := range g.seen {
		if now.Sub(ts) >= g.window {
			delete(g.seen, key)
			removed++
		}
	}
	remaining := len(g.seen)
	g.mu.Unlock()

	if removed > 0 {
		g.logger.Debug("swept stale dedup entries", "removed", removed, "remaining", remaining)
	}
}

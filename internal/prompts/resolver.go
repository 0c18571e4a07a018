package prompts

import (
	"context"
	"log/slog"

	"github.com/raybanai/raybanai/internal/config"
)

// source is one candidate in the resolution chain. Returning an error means
// "try the next source"; the final source never errors.
type source struct {
	name   string
	lookup func(ctx context.Context, category string) (string, error)
}

// Resolver picks prompt text for a category from an ordered chain of
// sources. The chain is remote (when enabled) then local then built-in
// default, so Resolve always produces usable text.
type Resolver struct {
	local  *LocalStore
	remote *RemoteStore
	logger *slog.Logger
}

// NewResolver creates a prompt resolver. remote may be nil when the
// deployment has no document store configured.
func NewResolver(local *LocalStore, remote *RemoteStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{local: local, remote: remote, logger: logger}
}

// sources builds the resolution chain for one request's settings snapshot.
func (r *Resolver) sources(settings config.Settings) []source {
	var chain []source

	if r.remote != nil && settings.UseRemotePrompts && settings.DocumentStoreEnabled {
		chain = append(chain, source{name: "remote", lookup: r.remote.Get})
	}

	chain = append(chain, source{
		name: "local",
		lookup: func(_ context.Context, category string) (string, error) {
			return r.local.Get(category)
		},
	})

	// Terminal source: cannot fail.
	chain = append(chain, source{
		name: "default",
		lookup: func(context.Context, string) (string, error) {
			return DefaultText(), nil
		},
	})

	return chain
}

// Resolve returns the prompt text for a category. It never fails: each
// source in the chain is tried for the SAME category until one produces
// text, and the built-in default terminates the chain.
func (r *Resolver) Resolve(ctx context.Context, settings config.Settings, category string) string {
	if category == "" {
		category = settings.DefaultCategory
	}
	if category == "" {
		category = config.DefaultCategory
	}

	for _, src := range r.sources(settings) {
		text, err := src.lookup(ctx, category)
		if err != nil {
			r.logger.Warn("prompt source failed, trying next",
				"source", src.name, "category", category, "error", err)
			continue
		}
		r.logger.Debug("prompt resolved", "source", src.name, "category", category)
		return text
	}

	// Unreachable: the default source always succeeds.
	return DefaultText()
}

// All returns the full category mapping from the active store, falling back
// to the local mapping on any remote failure.
func (r *Resolver) All(ctx context.Context, settings config.Settings) map[string]string {
	if r.remote != nil && settings.UseRemotePrompts && settings.DocumentStoreEnabled {
		mapping, err := r.remote.All(ctx)
		if err == nil {
			return mapping
		}
		r.logger.Warn("remote prompt listing failed, falling back to local", "error", err)
	}

	mapping, err := r.local.All()
	if err != nil {
		r.logger.Warn("local prompt listing failed, returning defaults", "error", err)
		return DefaultPrompts()
	}
	return mapping
}

// SetLocal inserts or overwrites one local category. There is no remote
// write path.
func (r *Resolver) SetLocal(category, text string) error {
	return r.local.Set(category, text)
}

// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/raybanai/raybanai/internal/analysis"
	"github.com/raybanai/raybanai/internal/config"
	"github.com/raybanai/raybanai/internal/docstore"
	"github.com/raybanai/raybanai/internal/history"
	"github.com/raybanai/raybanai/internal/home"
	"github.com/raybanai/raybanai/internal/prompts"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Analysis      *analysis.Service
	SettingsStore *config.SettingsStore
	Resolver      *prompts.Resolver
	History       *history.Log
	StoreClient   *docstore.Client
	Logger        *slog.Logger
	Home          *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// AnalysisFrom extracts the analysis service from context.
func AnalysisFrom(ctx context.Context) *analysis.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Analysis
	}
	return nil
}

// SettingsStoreFrom extracts the settings store from context.
func SettingsStoreFrom(ctx context.Context) *config.SettingsStore {
	if s := ServicesFrom(ctx); s != nil {
		return s.SettingsStore
	}
	return nil
}

// ResolverFrom extracts the prompt resolver from context.
func ResolverFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Resolver
	}
	return nil
}

// HistoryFrom extracts the history log from context.
func HistoryFrom(ctx context.Context) *history.Log {
	if s := ServicesFrom(ctx); s != nil {
		return s.History
	}
	return nil
}

// StoreClientFrom extracts the document store client from context.
func StoreClientFrom(ctx context.Context) *docstore.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.StoreClient
	}
	return nil
}

// LoggerFrom extracts the logger from context. Returns slog.Default if not set.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

package endpoints

import (
	"github.com/raybanai/raybanai/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// HistoryCollection is the document store collection holding analyses.
	HistoryCollection string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Analysis
		&AnalyzeEndpoint{},
		&HistoryEndpoint{},

		// Settings
		&GetConfigEndpoint{},
		&UpdateConfigEndpoint{},

		// Prompts
		&ListPromptsEndpoint{},
		&SetPromptEndpoint{},

		// Document store passthroughs
		&StoreTestEndpoint{},
		&StoreHistoryEndpoint{Collection: cfg.HistoryCollection},
		&StoreImageEndpoint{Collection: cfg.HistoryCollection},

		// API docs
		&SwaggerEndpoint{},
	}
}

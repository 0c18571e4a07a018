package config

import "time"

// Config holds raybanai server configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Vision VisionCfg `mapstructure:"vision" yaml:"vision"`
	Store  StoreCfg  `mapstructure:"store" yaml:"store"`
	Dedup  DedupCfg  `mapstructure:"dedup" yaml:"dedup"`
}

// VisionCfg configures the vision model API client.
type VisionCfg struct {
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	Model          string `mapstructure:"model" yaml:"model"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"` // Optional override (tests, proxies)
	MaxTokens      int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// Timeout returns the configured request timeout as a duration.
func (v VisionCfg) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// StoreCfg configures the external document store.
type StoreCfg struct {
	URL               string `mapstructure:"url" yaml:"url"`
	HistoryCollection string `mapstructure:"history_collection" yaml:"history_collection"`
	PromptCollection  string `mapstructure:"prompt_collection" yaml:"prompt_collection"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the configured round-trip timeout as a duration.
func (s StoreCfg) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// DedupCfg configures the request deduplication gate.
type DedupCfg struct {
	WindowMS        int `mapstructure:"window_ms" yaml:"window_ms"`
	SweepIntervalMS int `mapstructure:"sweep_interval_ms" yaml:"sweep_interval_ms"`
}

// Window returns the dedup window as a duration.
func (d DedupCfg) Window() time.Duration {
	return time.Duration(d.WindowMS) * time.Millisecond
}

// SweepInterval returns the sweep cadence as a duration.
func (d DedupCfg) SweepInterval() time.Duration {
	return time.Duration(d.SweepIntervalMS) * time.Millisecond
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Vision: VisionCfg{
			APIKey:         "${OPENAI_API_KEY}",
			Model:          "gpt-4o",
			MaxTokens:      300,
			TimeoutSeconds: 15,
			MaxRetries:     3,
		},
		Store: StoreCfg{
			URL:               "http://localhost:9181",
			HistoryCollection: "VisionAnalysis",
			PromptCollection:  "Prompt",
			TimeoutSeconds:    15,
		},
		Dedup: DedupCfg{
			WindowMS:        3000,
			SweepIntervalMS: 30000,
		},
	}
}

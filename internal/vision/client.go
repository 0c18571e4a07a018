// Package vision calls an OpenAI-compatible vision model to analyze images.
package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultModel is the vision-capable model used when none is configured.
	DefaultModel = "gpt-4o"

	// DefaultMaxTokens bounds the analysis length.
	DefaultMaxTokens = 300

	// ImageDetailAuto lets the API pick the image fidelity tier.
	ImageDetailAuto = "auto"
)

// ErrMissingAPIKey is returned when no credential is configured.
var ErrMissingAPIKey = errors.New("vision API key not configured")

// Config holds configuration for the vision client.
type Config struct {
	APIKey     string
	Model      string
	MaxTokens  int
	MaxRetries int
	Timeout    time.Duration
	BaseURL    string       // Optional (tests, proxies)
	HTTPClient *http.Client // Optional (tests)
}

// Client analyzes images using the official OpenAI SDK.
type Client struct {
	apiKey    string
	model     string
	maxTokens int
	client    openai.Client
}

// NewClient creates a vision client.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    openai.NewClient(opts...),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends one prompt plus one image reference to the model and returns
// the analysis text. imageRef may be a remote URL or a data URL; the API
// accepts both in the same field.
func (c *Client) Analyze(ctx context.Context, prompt, imageRef string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", ErrMissingAPIKey
	}
	if imageRef == "" {
		return "", fmt.Errorf("image reference is required")
	}
	if prompt == "" {
		return "", fmt.Errorf("prompt is required")
	}

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(int64(c.maxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    imageRef,
					Detail: ImageDetailAuto,
				}),
			}),
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", mapAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision API returned no choices")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("vision API returned empty analysis")
	}
	return content, nil
}

// mapAPIError flattens SDK errors into readable messages.
func mapAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("vision API error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("vision API error (status %d)", apiErr.StatusCode)
	}
	return fmt.Errorf("vision API request failed: %w", err)
}

// Package grader talks to remote language-model services that grade text.
package grader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docgrade/internal/config"
)

// Grader sends one system instruction and one user payload to a model and
// returns its reply verbatim.
type Grader interface {
	Grade(ctx context.Context, system, payload string) (string, error)
}

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Client is a configured grader plus the metadata callers report.
type Client struct {
	Grader
	Provider string
	Model    string
	Stats    *LLMStats

	closer func()
}

// Close releases idle connections held by the underlying client.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// New builds the grader selected by cfg.Provider, instrumented with latency
// stats and wrapped with retries when cfg.MaxRetries > 0.
func New(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Client, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderOpenAI
	}

	var (
		g      Grader
		model  string
		closer func()
	)
	switch provider {
	case ProviderOpenAI:
		c := NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout)
		c.MaxTokens = cfg.MaxTokens
		g, model, closer = c, c.Model(), c.Close
	case ProviderAnthropic:
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.Timeout)
		if cfg.BaseURL != "" {
			c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		if cfg.MaxTokens > 0 {
			c.maxTokens = cfg.MaxTokens
		}
		g, model, closer = c, c.Model(), c.Close
	case ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		g, model = c, c.Model()
	default:
		return nil, fmt.Errorf("unknown grader provider: %q", cfg.Provider)
	}

	stats := NewLLMStats(0)
	g = Instrument(g, stats)
	if cfg.MaxRetries > 0 {
		g = WithRetry(g, cfg.MaxRetries, log)
	}
	return &Client{Grader: g, Provider: provider, Model: model, Stats: stats, closer: closer}, nil
}

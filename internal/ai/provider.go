package ai

import (
	"context"
	"fmt"
	"net/http"

	"code-review-assistant/backend/pkg/config"
)

// Request is a single completion call
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Provider performs one completion attempt against a model backend.
// Errors wrapped with Permanent are not retried.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// NewProvider builds the provider selected by AI_PROVIDER
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.AI.Provider {
	case "openai", "http":
		return NewHTTPProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{}), nil
	case "gemini":
		return NewGeminiProvider(ctx, cfg.AI.APIKey, cfg.AI.Model)
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.AI.Provider)
	}
}

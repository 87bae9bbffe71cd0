package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
	ProviderPlaceholder = "placeholder"
)

var SupportedProviders = []string{ProviderGemini, ProviderOpenAI, ProviderPlaceholder}

type Config struct {
	Provider        string
	BaseURL         string
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// New builds the completer selected by cfg.Provider.
func New(ctx context.Context, cfg Config) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini, "":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("gemini API key not set: set VIZCHAT_AI_API_KEY or GEMINI_API_KEY")
		}
		return NewGeminiCompleter(ctx, GeminiConfig{
			APIKey:          cfg.APIKey,
			Model:           cfg.Model,
			BaseURL:         cfg.BaseURL,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Timeout:         cfg.Timeout,
		})
	case ProviderOpenAI:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai API key not set: set VIZCHAT_AI_API_KEY or OPENAI_API_KEY")
		}
		baseURL := cfg.BaseURL
		if strings.TrimSpace(baseURL) == "" {
			baseURL = "https://api.openai.com"
		}
		return NewOpenAICompleter(OpenAIConfig{
			BaseURL:         baseURL,
			APIKey:          cfg.APIKey,
			Model:           cfg.Model,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Timeout:         cfg.Timeout,
		})
	case ProviderPlaceholder:
		return Placeholder{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q, supported: %s", cfg.Provider, strings.Join(SupportedProviders, ", "))
	}
}

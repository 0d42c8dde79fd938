package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ModelConfig selects and configures an LLM provider.
type ModelConfig struct {
	Provider string // gemini (default), openai, ollama
	Model    string
	APIKey   string
	BaseURL  string // openai-compatible endpoint or ollama server
}

// NewModel creates a langchaingo model for cfg.
func NewModel(ctx context.Context, cfg ModelConfig) (llms.Model, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGemini
	}

	switch provider {
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: API key is required")
		}
		opts := []googleai.Option{googleai.WithAPIKey(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(cfg.Model))
		}
		llm, err := googleai.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini init: %w", err)
		}
		return llm, nil

	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: API key is required")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("openai init: %w", err)
		}
		return llm, nil

	case ProviderOllama:
		if cfg.Model == "" {
			return nil, fmt.Errorf("ollama: model is required")
		}
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("ollama init: %w", err)
		}
		return llm, nil
	}

	return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
}

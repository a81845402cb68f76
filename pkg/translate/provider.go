package translate

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names accepted by NewModel
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderMistral   = "mistral"
)

// ProviderConfig selects and configures a chat model
type ProviderConfig struct {
	Provider string
	Model    string
	BaseURL  string // OpenAI compatible endpoint or Ollama server URL
	APIKey   string
}

// NewModel creates the langchaingo model for a provider
func NewModel(cfg ProviderConfig) (llms.Model, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("no model configured for provider %q", cfg.Provider)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return llm, nil
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return llm, nil
	case ProviderAnthropic:
		llm, err := anthropic.New(anthropic.WithModel(cfg.Model), anthropic.WithToken(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		return llm, nil
	case ProviderMistral:
		llm, err := mistral.New(mistral.WithModel(cfg.Model), mistral.WithAPIKey(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Mistral client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", cfg.Provider)
	}
}

package llm

import (
	"context"
	"errors"
	"log"

	"github.com/hfarrukh/solaradvisor/internal/config"
)

// ErrDisabled is returned by the sentinel client when no completion
// provider is configured. Handlers map it to 503.
var ErrDisabled = errors.New("llm: no completion provider configured")

// ErrUnavailable wraps any provider round-trip failure so handlers can
// report an upstream error without exposing provider detail.
var ErrUnavailable = errors.New("llm: completion request failed")

// Client is a blocking round-trip to a completion API. Implementations
// honor the context deadline the caller imposes.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Disabled is the sentinel client used when no provider is configured.
// Direct-field analysis still works; only text analysis is unavailable.
type Disabled struct{}

func (Disabled) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Name() string { return "disabled" }

// FromConfig selects a client by provider name. Unknown or empty providers
// and missing API keys yield the Disabled sentinel.
func FromConfig(cfg config.Config) Client {
	if cfg.LLMAPIKey == "" {
		if cfg.LLMProvider != "" {
			log.Printf("llm: provider %q configured without an API key, disabling", cfg.LLMProvider)
		}
		return Disabled{}
	}
	switch cfg.LLMProvider {
	case "gemini":
		return NewGeminiClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEndpoint, cfg.LLMTimeout)
	case "openai", "groq":
		return NewOpenAIChatClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEndpoint, cfg.LLMTimeout)
	default:
		if cfg.LLMProvider != "" {
			log.Printf("llm: unknown provider %q, disabling", cfg.LLMProvider)
		}
		return Disabled{}
	}
}

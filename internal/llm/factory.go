package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veritas/internal/config"
)

// credentialEnv lists the environment variables consulted for each provider, in order
var credentialEnv = map[string][]string{
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
}

// NewProvider creates a provider based on configuration
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch normalizeProvider(cfg.Provider) {
	case "gemini":
		return NewGeminiProvider(ctx, cfg)

	case "openai":
		return NewOpenAIProvider(cfg)

	case "anthropic":
		return NewAnthropicProvider(cfg)

	case "ollama":
		return NewOllamaProvider(cfg)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: gemini, openai, anthropic, ollama)", cfg.Provider)
	}
}

// ResolveAPIKey returns the configured key, or the first non-empty environment variable for the provider
func ResolveAPIKey(cfg Config) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	for _, name := range credentialEnv[normalizeProvider(cfg.Provider)] {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// RequiresAPIKey reports whether the provider is a hosted service
func RequiresAPIKey(provider string) bool {
	_, ok := credentialEnv[normalizeProvider(provider)]
	return ok
}

// ConfigFromApp converts the application configuration into provider configuration
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    cfg.LLM.Timeout,
		MaxTokens:  cfg.LLM.MaxTokens,
		HTTPProxy:  cfg.Links.HTTPProxy,
		HTTPSProxy: cfg.Links.HTTPSProxy,
	}
}

func normalizeProvider(name string) string {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case "", "google":
		return "gemini"
	case "claude":
		return "anthropic"
	default:
		return p
	}
}

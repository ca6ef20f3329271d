package llm

import (
	"context"
	"time"

	"github.com/ppiankov/veritas/internal/model"
)

// Provider defines the interface for generative AI providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate asks the model for a JSON object conforming to req.Schema
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest contains the input for one structured generation
type GenerateRequest struct {
	// Model is the specific model to use (provider-specific)
	Model string

	// System is the system instruction
	System string

	// Prompt is the user turn text
	Prompt string

	// Attachment is an optional inline file sent before the prompt
	Attachment *model.Attachment

	// Schema describes the JSON object the model must return
	Schema Schema

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the raw model output
type GenerateResponse struct {
	// Text is the JSON document returned by the model
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers. Resolved from the environment when empty.
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, test servers)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns the gemini defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Model:     "gemini-2.5-flash",
		Timeout:  60 * time.Second,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

// outputLimit is the explicitly configured output cap, 0 when unset
func (c Config) outputLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	return max(c.MaxTokens, 0)
}

// maxTokens is for APIs that require a cap
func (c Config) maxTokens(requested int) int {
	if n := c.outputLimit(requested); n > 0 {
		return n
	}
	return 2048
}

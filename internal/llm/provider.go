package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers with no usable text.
// Callers treat it like any other generation failure: fall back
// deterministically, never surface it to the user.
var ErrEmptyResponse = errors.New("llm: empty response")

// Generator is the opaque text-generation collaborator: prompt in, text out,
// possibly failing. Every call site must handle the failure arm with a
// deterministic default; no call site may depend on a specific provider.
type Generator interface {
	// Name returns the provider name
	Name() string

	// Generate produces a completion for the given prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Config holds text-generation provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic. OpenAI-compatible endpoints such as Groq
	// work through BaseURL with the same key field.
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama, Groq)
	BaseURL string

	// Timeout for API requests in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling; kept low so downstream parsing stays stable
	Temperature float32

	// System message prepended where the provider supports one
	System string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     30,
		MaxTokens:   1024,
		Temperature: 0.2,
	}
}

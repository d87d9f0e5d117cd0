// Package llm provides the generation capability: a single blocking request
// to a hosted OpenAI-compatible API or a local Ollama server, chosen once
// from configuration.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/brandlens/brandlens/pkg/retry"
)

// Result is the outcome of one generation call. Token counts are the
// provider's native usage numbers; zero means the provider reported none.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Generator is the opaque generation capability. The pipeline relies only
// on this contract, never on provider internals.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Result, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string // "openai" or "ollama"
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Policy   retry.Policy
}

// New builds the configured Generator. Provider selection happens exactly
// once here; no call site inspects the concrete type.
func New(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case "", "openai":
		return newOpenAIClient(cfg), nil
	case "ollama":
		return newOllamaClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}

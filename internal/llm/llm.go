// Package llm provides the text completion clients used to regenerate the
// daily datasets.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Request is a single-turn completion request.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Response is the text the model returned.
type Response struct {
	Content      string
	FinishReason string
	TokensUsed   TokenUsage
}

// TokenUsage represents token usage statistics.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer sends one prompt and returns the model's reply.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// DefaultProvider is used when Config.Provider is empty.
const DefaultProvider = ProviderGemini

// New creates the Completer for cfg.Provider.
func New(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key for provider %q", cfg.Provider)
	}

	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = DefaultProvider
	}

	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderGemini:
		return NewGeminiClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

package llm

import (
	"context"
	"fmt"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, reqLog RequestLog) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "local":
		base, err = NewLocalProvider(cfg.Local)
	case "perplexity":
		base, err = NewPerplexityProvider(cfg.Perplexity)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, reqLog)
	retried := WithRetry(logged, cfg.Retry)

	return retried, nil
}

// NewProviderFromEnv builds the chat provider from MENTOR_* environment
// variables, falling back to discovery of standard API key variables when
// no provider is configured explicitly.
func NewProviderFromEnv(ctx context.Context, reqLog RequestLog) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		if discovered, ok := DiscoverConfig(); ok {
			cfg = discovered
		} else {
			return nil, err
		}
	}
	return NewProvider(ctx, cfg, reqLog)
}

// NewSearchProvider builds the search-augmented backend. It is always the
// Perplexity provider regardless of the configured chat provider; callers
// select it explicitly when live web context is wanted.
func NewSearchProvider(cfg Config, reqLog RequestLog) (Provider, error) {
	base, err := NewPerplexityProvider(cfg.Perplexity)
	if err != nil {
		return nil, err
	}
	return WithRetry(WithLogging(base, reqLog), cfg.Retry), nil
}

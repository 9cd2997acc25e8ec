package llm

import "fmt"

const defaultPerplexityBaseURL = "https://api.perplexity.ai"

// perplexityModels maps friendly names to Perplexity model IDs.
var perplexityModels = map[string]string{
	"sonar":     "sonar",
	"sonar-pro": "sonar-pro",
}

// PerplexityProvider wraps OpenAIProvider with Perplexity-specific defaults.
// Perplexity exposes an OpenAI-compatible API, so the underlying SDK is
// reused. Callers pick this backend when they want answers grounded in a
// live web search.
type PerplexityProvider struct {
	*OpenAIProvider
}

// NewPerplexityProvider creates a provider targeting the Perplexity API.
func NewPerplexityProvider(cfg PerplexityConfig) (*PerplexityProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("perplexity API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultPerplexityBaseURL
	}

	inner, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   resolveModel(cfg.Model, perplexityModels),
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, err
	}

	return &PerplexityProvider{OpenAIProvider: inner}, nil
}

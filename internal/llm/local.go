package llm

import "fmt"

const defaultLocalBaseURL = "http://localhost:8080/v1"

// LocalProvider wraps OpenAIProvider with defaults for an OpenAI-compatible
// server on this machine (mlx_lm.server, llama.cpp, vLLM). This is the free
// backend that serves assessments and memory consolidation.
type LocalProvider struct {
	*OpenAIProvider
}

// NewLocalProvider creates a provider targeting the local inference server.
func NewLocalProvider(cfg LocalConfig) (*LocalProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultLocalBaseURL
	}

	// Local servers ignore the key but the SDK rejects an empty one.
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "local"
	}

	inner, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  apiKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("local provider: %w", err)
	}

	return &LocalProvider{OpenAIProvider: inner}, nil
}

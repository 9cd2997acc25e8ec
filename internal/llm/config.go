package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all generation gateway configuration.
type Config struct {
	// Provider selects which backend serves chat generation.
	// Values: "local", "perplexity", "openai", "anthropic", "gemini", "mock"
	Provider string

	Local      LocalConfig
	Perplexity PerplexityConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single generation request
	// (including retries). Default: 60s — local models can be slow.
	Timeout time.Duration
}

// LocalConfig targets an OpenAI-compatible server running on this machine
// (mlx_lm.server, llama.cpp, vLLM). No real API key is needed; the SDK
// requires a non-empty one.
type LocalConfig struct {
	BaseURL string // Default: "http://localhost:8080/v1"
	Model   string // Default: "qwen3-8b-4bit"
	APIKey  string // Default: "local"
}

// PerplexityConfig targets the Perplexity API, used when the caller wants
// search-augmented generation. OpenAI-compatible wire format.
type PerplexityConfig struct {
	APIKey  string
	Model   string // Default: "sonar-pro"
	BaseURL string // Default: "https://api.perplexity.ai"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults: the free local
// backend for everything, search only when explicitly selected.
func DefaultConfig() Config {
	return Config{
		Provider: "local",
		Local: LocalConfig{
			BaseURL: "http://localhost:8080/v1",
			Model:   "qwen3-8b-4bit",
			APIKey:  "local",
		},
		Perplexity: PerplexityConfig{
			Model: "sonar-pro",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("MENTOR_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if u := os.Getenv("MENTOR_LOCAL_BASE_URL"); u != "" {
		cfg.Local.BaseURL = u
	}
	if m := os.Getenv("MENTOR_LOCAL_MODEL"); m != "" {
		cfg.Local.Model = m
	}

	if k := os.Getenv("MENTOR_PERPLEXITY_API_KEY"); k != "" {
		cfg.Perplexity.APIKey = k
	}
	if m := os.Getenv("MENTOR_PERPLEXITY_MODEL"); m != "" {
		cfg.Perplexity.Model = m
	}

	if k := os.Getenv("MENTOR_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("MENTOR_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("MENTOR_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("MENTOR_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("MENTOR_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("MENTOR_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("MENTOR_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order and
// returns a Config for the first remote provider whose key is found.
// The local backend needs no key and is not part of discovery.
// Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("PERPLEXITY_API_KEY"); k != "" {
		cfg.Provider = "perplexity"
		cfg.Perplexity.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required settings.
func (c Config) Validate() error {
	switch c.Provider {
	case "local":
		if c.Local.BaseURL == "" {
			return fmt.Errorf("MENTOR_LOCAL_BASE_URL is required for the local provider")
		}
	case "perplexity":
		if c.Perplexity.APIKey == "" {
			return fmt.Errorf("MENTOR_PERPLEXITY_API_KEY is required for the perplexity provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("MENTOR_OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("MENTOR_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("MENTOR_GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// No configuration needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

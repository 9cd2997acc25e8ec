package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`first`)},
		MockResponse{Content: json.RawMessage(`second`)},
	)

	r1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "a"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(r1.Content) != "first" {
		t.Errorf("content = %s", r1.Content)
	}

	r2, _ := mock.Generate(context.Background(), Request{})
	if string(r2.Content) != "second" {
		t.Errorf("content = %s", r2.Content)
	}

	if len(mock.Calls) != 2 {
		t.Errorf("recorded calls = %d, want 2", len(mock.Calls))
	}
	if mock.Calls[0].Messages[0].Content != "a" {
		t.Errorf("first recorded message = %q", mock.Calls[0].Messages[0].Content)
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
}

func TestNewLocalProvider_Defaults(t *testing.T) {
	p, err := NewLocalProvider(LocalConfig{Model: "qwen3-8b-4bit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "qwen3-8b-4bit" {
		t.Errorf("model = %q", p.ModelID())
	}
}

func TestNewPerplexityProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		p, err := NewPerplexityProvider(PerplexityConfig{APIKey: "pplx-test", Model: "sonar-pro"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "sonar-pro" {
			t.Errorf("model = %q, want sonar-pro", p.ModelID())
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		if _, err := NewPerplexityProvider(PerplexityConfig{Model: "sonar"}); err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("custom model pass-through", func(t *testing.T) {
		p, err := NewPerplexityProvider(PerplexityConfig{APIKey: "pplx-test", Model: "sonar-reasoning-pro"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "sonar-reasoning-pro" {
			t.Errorf("model = %q (no friendly-name mapping expected)", p.ModelID())
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"local default ok", func(c *Config) {}, false},
		{"perplexity without key", func(c *Config) { c.Provider = "perplexity" }, true},
		{"perplexity with key", func(c *Config) { c.Provider = "perplexity"; c.Perplexity.APIKey = "k" }, false},
		{"anthropic without key", func(c *Config) { c.Provider = "anthropic" }, true},
		{"mock", func(c *Config) { c.Provider = "mock" }, false},
		{"unknown", func(c *Config) { c.Provider = "quantum" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

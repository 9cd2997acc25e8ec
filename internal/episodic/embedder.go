package episodic

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder turns text into a vector. Implementations must be safe for
// concurrent use.
type Embedder interface {
	// Embed returns the embedding for one text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Available reports whether embeddings can actually be produced.
	// When false, episodic recall degrades to empty results rather
	// than failing the session.
	Available() bool
}

const defaultEmbedModel = "text-embedding-3-small"

// OpenAIEmbedder produces embeddings through any OpenAI-compatible
// endpoint. The underlying client is created lazily on first use so that
// constructing one without configuration is free.
type OpenAIEmbedder struct {
	baseURL string
	apiKey  string
	model   string

	once   sync.Once
	client *openai.Client
}

// NewOpenAIEmbedder creates an embedder against the given endpoint. An
// empty baseURL targets the OpenAI API; an empty model falls back to the
// default embedding model.
func NewOpenAIEmbedder(baseURL, apiKey, model string) *OpenAIEmbedder {
	if model == "" {
		model = defaultEmbedModel
	}
	return &OpenAIEmbedder{baseURL: baseURL, apiKey: apiKey, model: model}
}

// EmbedderFromEnv builds an embedder from MENTOR_EMBED_BASE_URL,
// MENTOR_EMBED_API_KEY and MENTOR_EMBED_MODEL, falling back to
// OPENAI_API_KEY. Returns nil when nothing is configured — episodic
// memory then simply stays empty.
func EmbedderFromEnv() Embedder {
	baseURL := os.Getenv("MENTOR_EMBED_BASE_URL")
	apiKey := os.Getenv("MENTOR_EMBED_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if baseURL == "" && apiKey == "" {
		return nil
	}
	if baseURL != "" && apiKey == "" {
		// Local embedding servers accept any key.
		apiKey = "local"
	}
	return NewOpenAIEmbedder(baseURL, apiKey, os.Getenv("MENTOR_EMBED_MODEL"))
}

func (e *OpenAIEmbedder) Available() bool {
	return e != nil && e.apiKey != ""
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if !e.Available() {
		return nil, fmt.Errorf("embedder not configured")
	}

	e.once.Do(func() {
		cfg := openai.DefaultConfig(e.apiKey)
		if e.baseURL != "" {
			cfg.BaseURL = e.baseURL
		}
		e.client = openai.NewClientWithConfig(cfg)
	})

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response is empty")
	}
	return resp.Data[0].Embedding, nil
}

// cosine returns the cosine similarity of two vectors, 0 when either is
// zero-length or the dimensions differ.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package episodic

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopK_OrderAndTruncation(t *testing.T) {
	now := time.Now()
	results := []Result{
		{Content: "c", Score: 0.3},
		{Content: "a", Score: 0.9},
		{Content: "b", Score: 0.7},
		{Content: "d", Score: 0.1},
	}

	got := topK(results, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Content != "a" || got[1].Content != "b" {
		t.Errorf("order = %q, %q", got[0].Content, got[1].Content)
	}

	// Equal scores rank newest first.
	tied := []Result{
		{Content: "old", Score: 0.5, CreatedAt: now.Add(-time.Hour)},
		{Content: "new", Score: 0.5, CreatedAt: now},
	}
	got = topK(tied, 2)
	if got[0].Content != "new" {
		t.Errorf("tie-break winner = %q, want new", got[0].Content)
	}
}

func TestMemory_NilIsInert(t *testing.T) {
	var m *Memory

	if m.Available() {
		t.Error("nil memory must not be available")
	}
	if err := m.Add(context.Background(), "s1", KindInsight, "text"); err != nil {
		t.Errorf("Add on nil memory: %v", err)
	}
	if n, err := m.Count(context.Background()); err != nil || n != 0 {
		t.Errorf("Count on nil memory = %d, %v", n, err)
	}
}

func TestMemory_UnavailableEmbedderReturnsNothing(t *testing.T) {
	m := New(nil, nil)

	results, err := m.Retrieve(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil without an embedder", results)
	}

	text, err := m.BuildContext(context.Background(), "query", 5)
	if err != nil || text != "" {
		t.Errorf("BuildContext = %q, %v", text, err)
	}
}

func TestEmbedderFromEnv_Unconfigured(t *testing.T) {
	t.Setenv("MENTOR_EMBED_BASE_URL", "")
	t.Setenv("MENTOR_EMBED_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	if e := EmbedderFromEnv(); e != nil {
		t.Errorf("embedder = %v, want nil when unconfigured", e)
	}
}

func TestEmbedderFromEnv_LocalEndpointNeedsNoKey(t *testing.T) {
	t.Setenv("MENTOR_EMBED_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("MENTOR_EMBED_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	e := EmbedderFromEnv()
	if e == nil || !e.Available() {
		t.Fatal("local endpoint should yield an available embedder")
	}
}

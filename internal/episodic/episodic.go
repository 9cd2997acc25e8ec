// Package episodic implements Tier-2 memory: specific conversational
// moments stored per user in SQLite with embedding vectors, recalled by
// similarity to the current conversation. The corpus is small (one user,
// one machine), so retrieval is brute-force cosine ranking over all
// stored episodes — no index structure to maintain or corrupt.
package episodic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/magicmentor/mentor/ent/episode"
	"github.com/magicmentor/mentor/internal/store"
)

// Episode kinds.
const (
	KindUserMessage      = "user_message"
	KindInsight          = "insight"
	KindAssessmentResult = "assessment_result"
	KindSessionSummary   = "session_summary"
	KindCareerGoal       = "career_goal"
)

// Result is one recalled episode with its similarity to the query.
type Result struct {
	Kind      string
	Content   string
	CreatedAt time.Time
	Score     float64
}

// Memory is the episodic index for one user. Nil-safe: a nil *Memory
// behaves as an empty, unavailable index.
type Memory struct {
	st       *store.Store
	embedder Embedder
}

// New creates a Memory over the user's episodic store. embedder may be
// nil, in which case episodes are stored without vectors and retrieval
// returns nothing.
func New(st *store.Store, embedder Embedder) *Memory {
	return &Memory{st: st, embedder: embedder}
}

// Available reports whether similarity retrieval can work.
func (m *Memory) Available() bool {
	return m != nil && m.embedder != nil && m.embedder.Available()
}

// Add stores one episode. Embedding is best-effort: if the embedder is
// missing or fails, the episode is stored without a vector so the text at
// least survives for future re-indexing.
func (m *Memory) Add(ctx context.Context, sessionID, kind, content string) error {
	if m == nil {
		return nil
	}

	var vec []float32
	if m.Available() {
		v, err := m.embedder.Embed(ctx, content)
		if err == nil {
			vec = v
		}
	}

	create := m.st.Client().Episode.Create().
		SetSessionID(sessionID).
		SetKind(kind).
		SetContent(content)
	if len(vec) > 0 {
		create.SetEmbedding(vec)
	}
	if _, err := create.Save(ctx); err != nil {
		return fmt.Errorf("save episode: %w", err)
	}
	return nil
}

// Retrieve returns up to limit episodes most similar to query, best
// first, optionally restricted to the given kinds. Without a usable
// embedder it returns nothing — never an error — so sessions work
// identically with or without episodic recall.
func (m *Memory) Retrieve(ctx context.Context, query string, limit int, kinds ...string) ([]Result, error) {
	if !m.Available() || limit <= 0 {
		return nil, nil
	}

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	q := m.st.Client().Episode.Query().
		Where(episode.EmbeddingNotNil())
	if len(kinds) > 0 {
		q = q.Where(episode.KindIn(kinds...))
	}
	eps, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}

	results := make([]Result, 0, len(eps))
	for _, e := range eps {
		score := cosine(queryVec, e.Embedding)
		if score <= 0 {
			continue
		}
		results = append(results, Result{
			Kind:      e.Kind,
			Content:   e.Content,
			CreatedAt: e.CreatedAt,
			Score:     score,
		})
	}

	return topK(results, limit), nil
}

// Count returns the number of stored episodes.
func (m *Memory) Count(ctx context.Context) (int, error) {
	if m == nil {
		return 0, nil
	}
	n, err := m.st.Client().Episode.Query().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count episodes: %w", err)
	}
	return n, nil
}

// BuildContext renders the episodes most relevant to query as a prompt
// block, or "" when nothing relevant is stored.
func (m *Memory) BuildContext(ctx context.Context, query string, limit int) (string, error) {
	results, err := m.Retrieve(ctx, query, limit)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("=== RELEVANT PAST MOMENTS ===\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- [%s, %s] %s\n", r.CreatedAt.Format("2006-01-02"), r.Kind, r.Content)
	}
	b.WriteString("=== END PAST MOMENTS ===")
	return b.String(), nil
}

// topK sorts by descending score (ties broken newest-first) and truncates.
func topK(results []Result, limit int) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

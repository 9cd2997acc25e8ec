// Package analysis turns accumulated memory into career guidance: a
// prioritized learning roadmap and realistic next roles, derived from
// assessed gaps rather than self-reported skills. When a search-augmented
// provider is available it grounds the ordering in live market context;
// without one the analysis still runs on stored facts alone.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/magicmentor/mentor/internal/assessment"
	"github.com/magicmentor/mentor/internal/llm"
	"github.com/magicmentor/mentor/internal/memory"
)

// Config holds tunables for the analysis calls.
type Config struct {
	MaxTokens       int
	SearchMaxTokens int
	Temperature     float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       1024,
		SearchMaxTokens: 512,
		Temperature:     0.4,
	}
}

// Analyzer produces mentor analyses. search may be nil.
type Analyzer struct {
	provider llm.Provider
	search   llm.Provider
	cfg      Config
}

// New creates an Analyzer. provider handles the structured analysis call;
// search, when non-nil, supplies live job-market context first.
func New(provider, search llm.Provider, cfg Config) *Analyzer {
	return &Analyzer{provider: provider, search: search, cfg: cfg}
}

type analysisOutput struct {
	LearningRoadmap  []string `json:"learning_roadmap"`
	RecommendedRoles []string `json:"recommended_roles"`
	Summary          string   `json:"summary"`
}

// Analyze builds the analysis from the user's memory and persists it as
// the last mentor analysis. Gap entries come straight from assessment
// history — the model orders and advises, it never invents gaps.
func (a *Analyzer) Analyze(ctx context.Context, store *memory.Store) (*memory.Analysis, error) {
	gaps := store.AssessmentGaps()

	marketContext := ""
	if a.search != nil {
		marketContext = a.research(ctx, store, gaps)
	}

	req := llm.Request{
		System: analysisSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildAnalysisMessage(store, marketContext)},
		},
		Schema:      AnalysisSchema,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}

	resp, err := a.provider.Generate(llm.WithPurpose(ctx, "mentor-analysis"), req)
	if err != nil {
		return nil, fmt.Errorf("mentor analysis failed: %w", err)
	}

	var out analysisOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}

	result := &memory.Analysis{
		SkillGaps:        gaps,
		LearningRoadmap:  out.LearningRoadmap,
		RecommendedRoles: out.RecommendedRoles,
	}

	if err := store.SaveMentorAnalysis(*result); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	if out.Summary != "" {
		if err := store.AddMentorNote(out.Summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: record analysis note: %v\n", err)
		}
	}

	return result, nil
}

// research fetches live market context. Best-effort: a failed search just
// means the analysis runs without it.
func (a *Analyzer) research(ctx context.Context, store *memory.Store, gaps []assessment.GapEntry) string {
	req := llm.Request{
		System: searchSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSearchQuery(store.Profile(), gaps)},
		},
		MaxTokens:   a.cfg.SearchMaxTokens,
		Temperature: 0.2,
	}

	resp, err := a.search.Generate(llm.WithPurpose(ctx, "market-research"), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: market research unavailable: %v\n", err)
		return ""
	}
	return string(resp.Content)
}

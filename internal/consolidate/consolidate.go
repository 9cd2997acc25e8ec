// Package consolidate turns finished session transcripts into durable
// memory. A single LLM extraction call pulls out profile facts,
// preferences and a session summary, and the results are merged into the
// user's Tier-1 store under its usual merge rules. Consolidation is
// best-effort: a failed run loses one session's extraction, never
// existing memory.
package consolidate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/magicmentor/mentor/internal/episodic"
	"github.com/magicmentor/mentor/internal/llm"
	"github.com/magicmentor/mentor/internal/marker"
	"github.com/magicmentor/mentor/internal/memory"
)

// Config holds tunables for the extraction call.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns sensible defaults. Extraction is a background
// job, so the timeout is generous.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.2,
		Timeout:     120 * time.Second,
	}
}

// Consolidator runs memory extraction over finished sessions.
type Consolidator struct {
	provider llm.Provider
	episodes *episodic.Memory
	cfg      Config
}

// New creates a Consolidator backed by the given provider. episodes may
// be nil; when present, session summaries and career goals are mirrored
// into Tier-2 memory.
func New(provider llm.Provider, episodes *episodic.Memory, cfg Config) *Consolidator {
	return &Consolidator{provider: provider, episodes: episodes, cfg: cfg}
}

// Extraction is the parsed LLM response.
type Extraction struct {
	Profile struct {
		Name            string `json:"name"`
		Location        string `json:"location"`
		YearsExperience int    `json:"years_experience"`
		CurrentRole     string `json:"current_role"`
		TargetRole      string `json:"target_role"`
	} `json:"profile"`
	CareerGoals     []string `json:"career_goals"`
	Concerns        []string `json:"concerns"`
	PreferredTopics []string `json:"preferred_topics"`
	LearningStyle   string   `json:"learning_style"`
	SessionSummary  string   `json:"session_summary"`
	KeyInsights     []string `json:"key_insights"`
	MentorNote      string   `json:"mentor_note"`
}

// Run extracts facts from the transcript and merges them into the store.
// Synchronous; most callers want RunAsync.
func (c *Consolidator) Run(ctx context.Context, store *memory.Store, transcript []llm.Message, sessionType string) error {
	if len(transcript) == 0 {
		return nil
	}

	ctx = llm.WithPurpose(ctx, "memory-consolidation")
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System: extractionSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildExtractionMessage(store.Profile(), transcript)},
		},
		Schema:      ExtractionSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("memory extraction failed: %w", err)
	}

	ext, err := parseExtraction(resp.Content)
	if err != nil {
		return err
	}

	if err := apply(store, ext, sessionType); err != nil {
		return err
	}

	c.mirror(ctx, ext)
	return nil
}

// mirror copies recall-worthy extractions into Tier-2 memory.
// Best-effort: Tier 1 is already durable by the time this runs.
func (c *Consolidator) mirror(ctx context.Context, ext *Extraction) {
	if c.episodes == nil {
		return
	}
	sessionID := uuid.NewString()

	if ext.SessionSummary != "" {
		if err := c.episodes.Add(ctx, sessionID, episodic.KindSessionSummary, ext.SessionSummary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: mirror session summary: %v\n", err)
		}
	}
	for _, goal := range ext.CareerGoals {
		if err := c.episodes.Add(ctx, sessionID, episodic.KindCareerGoal, goal); err != nil {
			fmt.Fprintf(os.Stderr, "warning: mirror career goal: %v\n", err)
		}
	}
}

// RunAsync fires consolidation in a background goroutine. The session is
// already over when this runs, so nothing waits on the result; failures
// are reported on stderr and the store is left as it was.
func (c *Consolidator) RunAsync(store *memory.Store, transcript []llm.Message, sessionType string) {
	snapshot := append([]llm.Message(nil), transcript...)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "warning: memory consolidation panicked: %v\n", r)
			}
		}()
		if err := c.Run(context.Background(), store, snapshot, sessionType); err != nil {
			fmt.Fprintf(os.Stderr, "warning: memory consolidation failed: %v\n", err)
		}
	}()
}

// parseExtraction decodes the model's JSON, salvaging the object from
// surrounding prose when the provider ignored the response-format
// instructions (local models do this under load).
func parseExtraction(content json.RawMessage) (*Extraction, error) {
	text := marker.StripReasoning(string(content))

	var ext Extraction
	if err := json.Unmarshal([]byte(text), &ext); err == nil {
		return &ext, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("extraction response contains no JSON object")
	}
	salvaged := text[start : end+1]
	ext = Extraction{}
	if err := json.Unmarshal([]byte(salvaged), &ext); err == nil {
		return &ext, nil
	}
	// A failed decode can leave partial fields behind.
	ext = Extraction{}
	if salvageExtraction(salvaged, &ext) {
		return &ext, nil
	}
	return nil, fmt.Errorf("no extraction fields found in response")
}

// salvageExtraction pulls fields out of near-JSON one path at a time.
// gjson tolerates trailing commas and duplicate keys that the strict
// decoder rejects, so a sloppy but recognizable response still yields
// its facts. Reports whether any field was found.
func salvageExtraction(text string, ext *Extraction) bool {
	found := false
	str := func(path string, dst *string) {
		if r := gjson.Get(text, path); r.Exists() {
			*dst = r.String()
			found = true
		}
	}
	list := func(path string, dst *[]string) {
		r := gjson.Get(text, path)
		if !r.IsArray() {
			return
		}
		for _, item := range r.Array() {
			if s := item.String(); s != "" {
				*dst = append(*dst, s)
			}
		}
		found = true
	}

	str("profile.name", &ext.Profile.Name)
	str("profile.location", &ext.Profile.Location)
	str("profile.current_role", &ext.Profile.CurrentRole)
	str("profile.target_role", &ext.Profile.TargetRole)
	if r := gjson.Get(text, "profile.years_experience"); r.Exists() {
		ext.Profile.YearsExperience = int(r.Int())
		found = true
	}
	list("career_goals", &ext.CareerGoals)
	list("concerns", &ext.Concerns)
	list("preferred_topics", &ext.PreferredTopics)
	str("learning_style", &ext.LearningStyle)
	str("session_summary", &ext.SessionSummary)
	list("key_insights", &ext.KeyInsights)
	str("mentor_note", &ext.MentorNote)
	return found
}

// apply merges one extraction into the store. Each mutation carries the
// store's own merge semantics (set-if-present, set union, retention), so
// re-running an extraction is harmless.
func apply(store *memory.Store, ext *Extraction, sessionType string) error {
	profile := memory.Profile{
		Name:            ext.Profile.Name,
		Location:        ext.Profile.Location,
		YearsExperience: ext.Profile.YearsExperience,
		CurrentRole:     ext.Profile.CurrentRole,
		TargetRole:      ext.Profile.TargetRole,
	}
	if profile != (memory.Profile{}) {
		if err := store.UpdateProfile(profile); err != nil {
			return fmt.Errorf("apply profile: %w", err)
		}
	}

	prefs := memory.Preferences{
		LearningStyle:   ext.LearningStyle,
		PreferredTopics: ext.PreferredTopics,
		CareerGoals:     ext.CareerGoals,
		Concerns:        ext.Concerns,
	}
	if prefs.LearningStyle != "" || len(prefs.PreferredTopics) > 0 || len(prefs.CareerGoals) > 0 || len(prefs.Concerns) > 0 {
		if err := store.MergePreferences(prefs); err != nil {
			return fmt.Errorf("apply preferences: %w", err)
		}
	}

	if ext.MentorNote != "" {
		if err := store.AddMentorNote(ext.MentorNote); err != nil {
			return fmt.Errorf("apply mentor note: %w", err)
		}
	}

	if ext.SessionSummary != "" {
		if err := store.AddSessionSummary(sessionType, ext.SessionSummary, ext.KeyInsights); err != nil {
			return fmt.Errorf("apply session summary: %w", err)
		}
	}

	return nil
}

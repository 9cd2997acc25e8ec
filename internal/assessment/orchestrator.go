package assessment

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/magicmentor/mentor/internal/llm"
	"github.com/magicmentor/mentor/internal/marker"
)

// lowConfidenceMarker is the synthetic answer text sent when the caller
// flags a turn as low confidence. The protocol scores such turns 25/100.
const lowConfidenceMarker = "[LOW_CONFIDENCE]"

// lowConfidenceScore is the fixed per-question score for flagged turns,
// enforced here so it holds even when the model forgets the rule.
const lowConfidenceScore = 25

// Config holds orchestrator tuning.
type Config struct {
	OpeningMaxTokens  int
	ContinueMaxTokens int
	Temperature       float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		OpeningMaxTokens:  512,
		ContinueMaxTokens: 768,
		Temperature:       0.3,
	}
}

// Turn is the result envelope for one orchestrator call. Score fields are
// this turn's delta only; the caller accumulates across turns. OverallScore
// appears only on the final turn.
type Turn struct {
	// Message is the model's visible text, reasoning preamble stripped,
	// markers left in place for the caller to elide from display.
	Message string

	// Transcript is the updated conversation including this exchange.
	Transcript []llm.Message

	// QuestionScore is this answer's score, nil when the model emitted none.
	QuestionScore *int

	// OverallScore is the cumulative assessment score, nil until the
	// final turn.
	OverallScore *int

	// SubtopicScores maps subtopic → score as reported this turn. A turn
	// with no parsed score contributes nothing — never a zero default.
	SubtopicScores map[string]int

	// Gaps holds "<subtopic>: <reason>" strings reported this turn.
	Gaps []string

	// Complete is true exactly when the completion marker was observed.
	Complete bool
}

// Orchestrator runs the diagnostic interview protocol against a generation
// provider. It keeps no state between calls.
type Orchestrator struct {
	provider llm.Provider
	cfg      Config
}

// New creates an Orchestrator.
func New(provider llm.Provider, cfg Config) *Orchestrator {
	return &Orchestrator{provider: provider, cfg: cfg}
}

// Start opens an assessment on the given topic. The opening instruction
// forbids completion/scoring markers so the first reply is a plain
// question. memoryContext is the Tier-1 context render, empty for a new
// user.
func (o *Orchestrator) Start(ctx context.Context, topic Topic, memoryContext string) (*Turn, error) {
	ctx = llm.WithPurpose(ctx, "assessment")

	prompt, err := buildOpeningPrompt(topic)
	if err != nil {
		return nil, fmt.Errorf("build opening prompt: %w", err)
	}

	resp, err := o.provider.Generate(ctx, llm.Request{
		System:      buildSystemPrompt(memoryContext),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   o.cfg.OpeningMaxTokens,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("start assessment %q: %w", topic.Label, err)
	}

	message := marker.StripReasoning(string(resp.Content))

	return &Turn{
		Message: message,
		Transcript: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
			{Role: llm.RoleAssistant, Content: message},
		},
	}, nil
}

// Continue submits one user answer and returns the next turn. The
// transcript is the full interview so far, as returned by the previous
// call; lowConfidence replaces a real answer with the protocol's skip
// marker and forces the fixed score.
func (o *Orchestrator) Continue(ctx context.Context, answer string, lowConfidence bool, transcript []llm.Message, topic Topic) (*Turn, error) {
	ctx = llm.WithPurpose(ctx, "assessment")

	content := answer
	if lowConfidence {
		content = lowConfidenceMarker
		if strings.TrimSpace(answer) != "" {
			content = lowConfidenceMarker + " " + answer
		}
	}

	messages := make([]llm.Message, len(transcript), len(transcript)+2)
	copy(messages, transcript)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: content})

	resp, err := o.provider.Generate(ctx, llm.Request{
		System:      assessorSystemPrompt,
		Messages:    messages,
		MaxTokens:   o.cfg.ContinueMaxTokens,
		Temperature: o.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("continue assessment %q: %w", topic.Label, err)
	}

	message := marker.StripReasoning(string(resp.Content))
	messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: message})

	turn := &Turn{
		Message:        message,
		Transcript:     messages,
		SubtopicScores: map[string]int{},
	}

	for _, ev := range marker.Parse(message) {
		switch e := ev.(type) {
		case marker.QuestionScored:
			score := e.Score
			turn.QuestionScore = &score
		case marker.AssessmentScored:
			score := e.Score
			turn.OverallScore = &score
		case marker.SubtopicsReported:
			turn.SubtopicScores = e.Scores
		case marker.GapsReported:
			turn.Gaps = e.Gaps
		case marker.Completed:
			turn.Complete = true
		}
	}

	if lowConfidence {
		score := lowConfidenceScore
		turn.QuestionScore = &score
	}

	if turn.Complete {
		o.checkCoverage(topic, turn.SubtopicScores)
	}

	return turn, nil
}

// checkCoverage logs a protocol violation when the model declares
// completion without scoring every declared subtopic. The backend is not
// under our control, so the session is still allowed to terminate —
// robustness over strictness.
func (o *Orchestrator) checkCoverage(topic Topic, scores map[string]int) {
	var missing []string
	for _, sub := range topic.Subtopics {
		if _, ok := scores[sub]; !ok {
			missing = append(missing, sub)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "warning: assessment %q completed without scores for: %s\n",
			topic.Label, strings.Join(missing, ", "))
	}
}

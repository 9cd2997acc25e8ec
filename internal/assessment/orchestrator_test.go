package assessment

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/magicmentor/mentor/internal/llm"
)

var sqlTopic = Topic{
	Label:     "SQL",
	Subtopics: []string{"JOINs", "CTEs", "Indexes"},
}

func textResponse(text string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(text)}
}

func TestStart_SeedsTranscript(t *testing.T) {
	mock := llm.NewMockProvider(textResponse("Welcome! First question: what is an INNER JOIN?"))
	o := New(mock, DefaultConfig())

	turn, err := o.Start(context.Background(), sqlTopic, "=== USER MEMORY ===\nName: Ana")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if len(turn.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(turn.Transcript))
	}
	if turn.Transcript[0].Role != llm.RoleUser || turn.Transcript[1].Role != llm.RoleAssistant {
		t.Error("transcript roles wrong")
	}
	if turn.Complete {
		t.Error("opening turn must not be complete")
	}

	req := mock.Calls[0]
	if !strings.Contains(req.System, "Name: Ana") {
		t.Error("memory context should be appended to the system prompt")
	}
	if !strings.Contains(req.Messages[0].Content, "JOINs, CTEs, Indexes") {
		t.Error("opening prompt should declare the subtopics")
	}
	if !strings.Contains(req.Messages[0].Content, "Do NOT emit any [ASSESSMENT_*] markers yet") {
		t.Error("opening prompt must forbid early markers")
	}
}

func TestStart_StripsReasoning(t *testing.T) {
	mock := llm.NewMockProvider(textResponse("<think>plan the quiz</think>\nQuestion one."))
	o := New(mock, DefaultConfig())

	turn, err := o.Start(context.Background(), sqlTopic, "")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if turn.Message != "Question one." {
		t.Errorf("message = %q", turn.Message)
	}
	// The stripped text, not the raw response, goes into the transcript.
	if turn.Transcript[1].Content != "Question one." {
		t.Errorf("transcript content = %q", turn.Transcript[1].Content)
	}
}

func TestContinue_ScoredTurn(t *testing.T) {
	mock := llm.NewMockProvider(textResponse("Correct.\n[QUESTION_SCORE: 85/100]\nNext: explain a CTE."))
	o := New(mock, DefaultConfig())

	transcript := []llm.Message{
		{Role: llm.RoleUser, Content: "opening"},
		{Role: llm.RoleAssistant, Content: "q1"},
	}

	turn, err := o.Continue(context.Background(), "an inner join matches rows", false, transcript, sqlTopic)
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}

	if turn.QuestionScore == nil || *turn.QuestionScore != 85 {
		t.Errorf("question score = %v, want 85", turn.QuestionScore)
	}
	if turn.OverallScore != nil {
		t.Error("overall score must not appear mid-interview")
	}
	if turn.Complete {
		t.Error("turn must not be complete")
	}
	if len(turn.Transcript) != 4 {
		t.Errorf("transcript length = %d, want 4", len(turn.Transcript))
	}
	if len(turn.SubtopicScores) != 0 {
		t.Errorf("subtopic scores = %v, want none mid-interview", turn.SubtopicScores)
	}
}

func TestContinue_NoScoreOmitted(t *testing.T) {
	mock := llm.NewMockProvider(textResponse("Interesting. Tell me more about indexes."))
	o := New(mock, DefaultConfig())

	turn, err := o.Continue(context.Background(), "answer", false, nil, sqlTopic)
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	// No parsed score stays absent — never defaulted to zero.
	if turn.QuestionScore != nil {
		t.Errorf("question score = %v, want nil", turn.QuestionScore)
	}
}

func TestContinue_LowConfidenceForcesScore(t *testing.T) {
	// Model ignores the rule and scores 90; the orchestrator still forces 25.
	mock := llm.NewMockProvider(textResponse("Noted.\n[QUESTION_SCORE: 90/100]\nNext question."))
	o := New(mock, DefaultConfig())

	turn, err := o.Continue(context.Background(), "I think maybe...", true, nil, sqlTopic)
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}

	if turn.QuestionScore == nil || *turn.QuestionScore != 25 {
		t.Errorf("question score = %v, want forced 25", turn.QuestionScore)
	}

	sent := mock.Calls[0].Messages[len(mock.Calls[0].Messages)-1].Content
	if !strings.HasPrefix(sent, "[LOW_CONFIDENCE]") {
		t.Errorf("sent answer = %q, want low-confidence marker prefix", sent)
	}
	if !strings.Contains(sent, "I think maybe...") {
		t.Error("flagged answer text should still reach the model")
	}
}

func TestContinue_GatewayErrorSurfaces(t *testing.T) {
	mock := llm.NewMockProvider() // empty queue → provider unavailable
	o := New(mock, DefaultConfig())

	if _, err := o.Continue(context.Background(), "answer", false, nil, sqlTopic); err == nil {
		t.Fatal("expected provider error")
	}
}

// End-to-end: three scored turns, then a final turn carrying the full
// marker block. One subtopic lands at 40 → exactly one gap entry.
func TestAssessment_EndToEnd(t *testing.T) {
	mock := llm.NewMockProvider(
		textResponse("Welcome to the SQL diagnostic. Q1: explain INNER vs LEFT JOIN."),
		textResponse("Good.\n[QUESTION_SCORE: 80/100]\nQ2: what is a recursive CTE?"),
		textResponse("Partly right.\n[QUESTION_SCORE: 40/100]\nQ3: when does an index help?"),
		textResponse(`Solid.
[QUESTION_SCORE: 70/100]
[ASSESSMENT_SCORE: 55/100]
[SUBTOPIC_SCORES: {"JOINs": 80, "CTEs": 40, "Indexes": 70}]
[GAPS: ["CTEs: could not explain recursion"]]
[ASSESSMENT_COMPLETE]`),
	)
	o := New(mock, DefaultConfig())
	ctx := context.Background()

	turn, err := o.Start(ctx, sqlTopic, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	answers := []string{"joins match rows", "a CTE is a named subquery", "on selective columns"}
	subtopics := map[string]int{}
	var overall int
	var gaps []string

	for i, answer := range answers {
		turn, err = o.Continue(ctx, answer, false, turn.Transcript, sqlTopic)
		if err != nil {
			t.Fatalf("Continue %d: %v", i, err)
		}
		for k, v := range turn.SubtopicScores {
			subtopics[k] = v
		}
		if turn.OverallScore != nil {
			overall = *turn.OverallScore
		}
		if len(turn.Gaps) > 0 {
			gaps = turn.Gaps
		}
	}

	if !turn.Complete {
		t.Fatal("final turn should be complete")
	}
	if overall != 55 {
		t.Errorf("overall = %d, want 55", overall)
	}
	if len(subtopics) != 3 {
		t.Errorf("subtopics = %v", subtopics)
	}

	entries := BuildGapEntries(sqlTopic.Label, subtopics, gaps, overall)
	if len(entries) != 1 {
		t.Fatalf("gap entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Priority != 1 {
		t.Errorf("priority = %d, want 1", e.Priority)
	}
	if e.Skill != "SQL — CTEs" {
		t.Errorf("skill = %q", e.Skill)
	}
	if e.AssessedScore != 40 {
		t.Errorf("assessed score = %d, want 40", e.AssessedScore)
	}
	if e.Reason != "CTEs: could not explain recursion" {
		t.Errorf("reason = %q", e.Reason)
	}
	if e.JobMarketDemand != "medium" {
		t.Errorf("demand = %q, want medium (overall 55)", e.JobMarketDemand)
	}
}

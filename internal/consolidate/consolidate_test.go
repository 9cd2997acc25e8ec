package consolidate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/magicmentor/mentor/internal/llm"
	"github.com/magicmentor/mentor/internal/memory"
)

func openTestStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.Open(t.TempDir(), "test-user")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func jsonResponse(text string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(text)}
}

var sampleTranscript = []llm.Message{
	{Role: llm.RoleUser, Content: "Hi, I'm Ana, a financial analyst in Lisbon. I want to move into data engineering."},
	{Role: llm.RoleAssistant, Content: "Great goal. How comfortable are you with SQL?"},
	{Role: llm.RoleUser, Content: "Decent, but I'm worried I'm too old to switch careers."},
}

const sampleExtraction = `{
  "profile": {"name": "Ana", "location": "Lisbon", "current_role": "Financial Analyst", "target_role": "Data Engineer"},
  "career_goals": ["move into data engineering"],
  "concerns": ["worried about career switch timing"],
  "preferred_topics": ["SQL"],
  "learning_style": "",
  "session_summary": "Ana introduced herself and discussed switching from finance to data engineering.",
  "key_insights": ["motivated but anxious about the transition"],
  "mentor_note": "Reassure about career-switch timing; she brings domain knowledge from finance."
}`

func TestRun_AppliesExtraction(t *testing.T) {
	store := openTestStore(t)
	mock := llm.NewMockProvider(jsonResponse(sampleExtraction))
	c := New(mock, nil, DefaultConfig())

	if err := c.Run(context.Background(), store, sampleTranscript, "mentor_chat"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := store.Profile()
	if p.Name != "Ana" || p.TargetRole != "Data Engineer" {
		t.Errorf("profile = %+v", p)
	}

	prefs := store.Preferences()
	if len(prefs.CareerGoals) != 1 || prefs.CareerGoals[0] != "move into data engineering" {
		t.Errorf("career goals = %v", prefs.CareerGoals)
	}
	if len(prefs.Concerns) != 1 {
		t.Errorf("concerns = %v", prefs.Concerns)
	}

	notes := store.MentorNotes()
	if len(notes) != 1 || !strings.Contains(notes[0].Note, "career-switch timing") {
		t.Errorf("notes = %+v", notes)
	}

	sums := store.SessionSummaries()
	if len(sums) != 1 || sums[0].Type != "mentor_chat" {
		t.Fatalf("summaries = %+v", sums)
	}
	if len(sums[0].KeyInsights) != 1 {
		t.Errorf("key insights = %v", sums[0].KeyInsights)
	}

	// The request carried the schema and the rendered transcript.
	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "memory-extraction" {
		t.Error("extraction schema not attached to request")
	}
	if !strings.Contains(req.Messages[0].Content, "USER: Hi, I'm Ana") {
		t.Error("transcript not rendered into the prompt")
	}
}

func TestRun_RepeatedExtractionIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	mock := llm.NewMockProvider(jsonResponse(sampleExtraction), jsonResponse(sampleExtraction))
	c := New(mock, nil, DefaultConfig())

	for i := 0; i < 2; i++ {
		if err := c.Run(context.Background(), store, sampleTranscript, "mentor_chat"); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}

	// List preferences are set-unioned, not appended.
	prefs := store.Preferences()
	if len(prefs.CareerGoals) != 1 || len(prefs.Concerns) != 1 {
		t.Errorf("preferences grew on re-run: %+v", prefs)
	}
}

func TestRun_SalvagesJSONFromProse(t *testing.T) {
	store := openTestStore(t)
	wrapped := "<think>what did we learn</think>\nHere is the extraction you asked for:\n" +
		sampleExtraction + "\nLet me know if you need anything else!"
	mock := llm.NewMockProvider(jsonResponse(wrapped))
	c := New(mock, nil, DefaultConfig())

	if err := c.Run(context.Background(), store, sampleTranscript, "assessment"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p := store.Profile(); p.Name != "Ana" {
		t.Errorf("profile = %+v, salvaged parse should have applied", p)
	}
}

func TestRun_SalvagesSloppyJSON(t *testing.T) {
	store := openTestStore(t)
	// Trailing commas fail encoding/json but small local models emit them
	// anyway; the field-by-field salvage still recovers the facts.
	sloppy := `Here you go:
{
  "profile": {"name": "Ana", "target_role": "Data Engineer",},
  "career_goals": ["move into data engineering",],
  "session_summary": "Short chat about moving into data engineering.",
}`
	mock := llm.NewMockProvider(jsonResponse(sloppy))
	c := New(mock, nil, DefaultConfig())

	if err := c.Run(context.Background(), store, sampleTranscript, "mentor_chat"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := store.Profile()
	if p.Name != "Ana" || p.TargetRole != "Data Engineer" {
		t.Errorf("profile = %+v, want salvaged fields applied", p)
	}
	if goals := store.Preferences().CareerGoals; len(goals) != 1 || goals[0] != "move into data engineering" {
		t.Errorf("career goals = %v", goals)
	}
	if sums := store.SessionSummaries(); len(sums) != 1 {
		t.Errorf("summaries = %+v", sums)
	}
}

func TestRun_InvalidJSONFailsWithoutMutation(t *testing.T) {
	store := openTestStore(t)
	mock := llm.NewMockProvider(jsonResponse("I could not produce the extraction, sorry."))
	c := New(mock, nil, DefaultConfig())

	if err := c.Run(context.Background(), store, sampleTranscript, "mentor_chat"); err == nil {
		t.Fatal("expected parse error")
	}
	if p := store.Profile(); p != (memory.Profile{}) {
		t.Errorf("profile mutated on failed run: %+v", p)
	}
	if len(store.SessionSummaries()) != 0 {
		t.Error("summary recorded on failed run")
	}
}

func TestRun_EmptyTranscriptIsNoOp(t *testing.T) {
	store := openTestStore(t)
	mock := llm.NewMockProvider()
	c := New(mock, nil, DefaultConfig())

	if err := c.Run(context.Background(), store, nil, "mentor_chat"); err != nil {
		t.Fatalf("Run on empty transcript: %v", err)
	}
	if mock.CallCount() != 0 {
		t.Error("no provider call expected for an empty transcript")
	}
}

func TestBuildExtractionMessage_Bounds(t *testing.T) {
	var transcript []llm.Message
	for i := 0; i < maxTranscriptTurns+10; i++ {
		transcript = append(transcript, llm.Message{
			Role:    llm.RoleUser,
			Content: strings.Repeat("x", maxTurnChars+100) + " turn-" + string(rune('A'+i%26)),
		})
	}

	msg := buildExtractionMessage(memory.Profile{Name: "Ana", CurrentRole: "Analyst"}, transcript)

	// Known facts lead the prompt so the model does not re-extract them.
	if !strings.Contains(msg, "- name: Ana") || !strings.Contains(msg, "- current role: Analyst") {
		t.Error("known profile block missing")
	}
	// Each rendered turn is capped, so the over-long tail never appears.
	if strings.Contains(msg, "turn-") {
		t.Error("turn content not capped")
	}
	if got := strings.Count(msg, "USER: "); got != maxTranscriptTurns {
		t.Errorf("rendered turns = %d, want %d", got, maxTranscriptTurns)
	}
}

func TestParseExtraction_NoObject(t *testing.T) {
	if _, err := parseExtraction(json.RawMessage("no braces here")); err == nil {
		t.Fatal("expected error for content without a JSON object")
	}
}

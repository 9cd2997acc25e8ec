package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/magicmentor/mentor/internal/assessment"
	"github.com/magicmentor/mentor/internal/llm"
	"github.com/magicmentor/mentor/internal/memory"
)

const sampleAnalysis = `{
  "learning_roadmap": ["Work through a recursive CTE tutorial", "Build an end-to-end Fabric pipeline"],
  "recommended_roles": ["Analytics Engineer", "BI Developer"],
  "summary": "Solid SQL fundamentals, held back by CTEs and pipeline experience."
}`

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.Open(t.TempDir(), "test-user")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.UpdateProfile(memory.Profile{Name: "Ana", TargetRole: "Data Engineer"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	gaps := []assessment.GapEntry{
		{Skill: "SQL — CTEs", Priority: 1, AssessedScore: 40, Reason: "could not explain recursion"},
	}
	if err := store.SaveAssessment("SQL", 55, map[string]int{"CTEs": 40}, gaps); err != nil {
		t.Fatalf("seed assessment: %v", err)
	}
	return store
}

func TestAnalyze_BuildsAndPersists(t *testing.T) {
	store := seedStore(t)
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(sampleAnalysis)})
	a := New(mock, nil, DefaultConfig())

	result, err := a.Analyze(context.Background(), store)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// Gaps come from assessment history, never from the model.
	if len(result.SkillGaps) != 1 || result.SkillGaps[0].Skill != "SQL — CTEs" {
		t.Errorf("skill gaps = %+v", result.SkillGaps)
	}
	if len(result.LearningRoadmap) != 2 {
		t.Errorf("roadmap = %v", result.LearningRoadmap)
	}
	if len(result.RecommendedRoles) != 2 {
		t.Errorf("roles = %v", result.RecommendedRoles)
	}

	// Persisted as the last analysis, with the summary as a mentor note.
	saved := store.LastAnalysis()
	if len(saved.LearningRoadmap) != 2 {
		t.Errorf("saved roadmap = %v", saved.LearningRoadmap)
	}
	notes := store.MentorNotes()
	if len(notes) != 1 || !strings.Contains(notes[0].Note, "Solid SQL fundamentals") {
		t.Errorf("notes = %+v", notes)
	}

	// The prompt carried the assessed gaps.
	req := mock.Calls[0]
	if !strings.Contains(req.Messages[0].Content, "SQL — CTEs: 40/100") {
		t.Errorf("prompt missing gap line:\n%s", req.Messages[0].Content)
	}
	if strings.Contains(req.Messages[0].Content, "MARKET CONTEXT") {
		t.Error("no market context expected without a search provider")
	}
}

func TestAnalyze_UsesSearchContext(t *testing.T) {
	store := seedStore(t)
	chat := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(sampleAnalysis)})
	search := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("- CTE skills heavily requested in analytics engineering postings")})
	a := New(chat, search, DefaultConfig())

	if _, err := a.Analyze(context.Background(), store); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	searchReq := search.Calls[0]
	if !strings.Contains(searchReq.Messages[0].Content, "Data Engineer") {
		t.Errorf("search query = %q, want target role", searchReq.Messages[0].Content)
	}
	if !strings.Contains(searchReq.Messages[0].Content, "SQL — CTEs") {
		t.Errorf("search query = %q, want gap skills", searchReq.Messages[0].Content)
	}

	chatReq := chat.Calls[0]
	if !strings.Contains(chatReq.Messages[0].Content, "MARKET CONTEXT") {
		t.Error("analysis prompt missing market context block")
	}
	if !strings.Contains(chatReq.Messages[0].Content, "heavily requested") {
		t.Error("search findings not passed through")
	}
}

func TestAnalyze_SearchFailureDegrades(t *testing.T) {
	store := seedStore(t)
	chat := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(sampleAnalysis)})
	search := llm.NewMockProvider() // empty queue → error
	a := New(chat, search, DefaultConfig())

	result, err := a.Analyze(context.Background(), store)
	if err != nil {
		t.Fatalf("Analyze should survive a failed search: %v", err)
	}
	if len(result.LearningRoadmap) == 0 {
		t.Error("roadmap missing")
	}
	if strings.Contains(chat.Calls[0].Messages[0].Content, "MARKET CONTEXT") {
		t.Error("failed search must not leave a market context block")
	}
}

func TestAnalyze_MalformedResponse(t *testing.T) {
	store := seedStore(t)
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("not json")})
	a := New(mock, nil, DefaultConfig())

	if _, err := a.Analyze(context.Background(), store); err == nil {
		t.Fatal("expected parse error")
	}
	if len(store.LastAnalysis().LearningRoadmap) != 0 {
		t.Error("failed analysis must not persist")
	}
}

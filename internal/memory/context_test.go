package memory

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildContextPrompt_EmptyRecord(t *testing.T) {
	s := openTestStore(t)

	got := s.BuildContextPrompt()
	if !strings.HasPrefix(got, "=== USER MEMORY ===") {
		t.Errorf("prompt = %q, want memory framing", got)
	}
	if !strings.HasSuffix(got, "=== END USER MEMORY ===") {
		t.Errorf("prompt = %q, want closing frame", got)
	}
}

func TestBuildContextPrompt_Idempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpdateProfile(Profile{Name: "Ana", TargetRole: "Data Engineer"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if err := s.AddMentorNote("prefers worked examples"); err != nil {
		t.Fatalf("AddMentorNote: %v", err)
	}

	first := s.BuildContextPrompt()
	for i := 0; i < 3; i++ {
		if got := s.BuildContextPrompt(); got != first {
			t.Fatalf("call %d changed output:\n%s\nwant:\n%s", i, got, first)
		}
	}
}

func TestBuildContextPrompt_Bounds(t *testing.T) {
	s := openTestStore(t)

	var current []Skill
	for i := 0; i < contextMaxCurrent+4; i++ {
		current = append(current, Skill{Name: fmt.Sprintf("skill-%d", i)})
	}
	if err := s.UpdateSkills(current, nil); err != nil {
		t.Fatalf("UpdateSkills: %v", err)
	}
	for i := 0; i < contextMaxNotes+2; i++ {
		if err := s.AddMentorNote(fmt.Sprintf("note-%d", i)); err != nil {
			t.Fatalf("AddMentorNote: %v", err)
		}
	}
	long := strings.Repeat("x", contextSummaryChars+50)
	if err := s.AddSessionSummary("assessment", long, nil); err != nil {
		t.Fatalf("AddSessionSummary: %v", err)
	}

	got := s.BuildContextPrompt()

	if strings.Contains(got, fmt.Sprintf("skill-%d", contextMaxCurrent)) {
		t.Error("current skills not capped")
	}
	if !strings.Contains(got, "skill-0") {
		t.Error("first current skill missing")
	}
	// Only the newest notes appear.
	if strings.Contains(got, "note-0") {
		t.Error("old note should be outside the window")
	}
	if !strings.Contains(got, fmt.Sprintf("note-%d", contextMaxNotes+1)) {
		t.Error("newest note missing")
	}
	if strings.Contains(got, long) {
		t.Error("session summary not truncated")
	}
	if !strings.Contains(got, long[:contextSummaryChars]) {
		t.Error("truncated summary missing")
	}
}

func TestBuildContextPrompt_SummaryCutOnRuneBoundary(t *testing.T) {
	s := openTestStore(t)

	// Place a multi-byte rune across the truncation point.
	long := strings.Repeat("x", contextSummaryChars-1) + "é" + strings.Repeat("y", 50)
	if err := s.AddSessionSummary("assessment", long, nil); err != nil {
		t.Fatalf("AddSessionSummary: %v", err)
	}

	got := s.BuildContextPrompt()
	if !utf8.ValidString(got) {
		t.Fatalf("prompt contains invalid UTF-8: %q", got)
	}
	// The straddling rune is dropped whole, never split.
	if strings.Contains(got, "é") {
		t.Error("rune past the cut should not appear")
	}
	if !strings.Contains(got, strings.Repeat("x", contextSummaryChars-1)+"\n") {
		t.Error("summary should keep everything up to the rune boundary")
	}
}

func TestBuildContextPrompt_CompletedMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"SQL", "DAX", "Spark"} {
		if err := s.AddLearningSkill(Skill{Name: name}); err != nil {
			t.Fatalf("AddLearningSkill: %v", err)
		}
		if err := s.MarkSkillCompleted(name, 80); err != nil {
			t.Fatalf("MarkSkillCompleted: %v", err)
		}
	}

	got := s.BuildContextPrompt()
	if !strings.Contains(got, "Recently completed: Spark (80%), DAX (80%), SQL (80%)") {
		t.Errorf("prompt = %q, want newest-first completions", got)
	}
	if strings.Contains(got, "Currently learning") {
		t.Error("completed skills must not appear as learning")
	}
}

package marker

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  int
		found bool
	}{
		{"plain", "[QUESTION_SCORE: 85/100]", 85, true},
		{"embedded in prose", "Good answer!\n[QUESTION_SCORE: 70/100]\nNext question:", 70, true},
		{"zero", "[QUESTION_SCORE: 0/100]", 0, true},
		{"no whitespace", "[QUESTION_SCORE:42/100]", 42, true},
		{"absent marker", "Good answer, next question.", 0, false},
		{"empty text", "", 0, false},
		{"non-numeric", "[QUESTION_SCORE: abc/100]", 0, false},
		{"unterminated", "[QUESTION_SCORE: 85/100", 0, false},
		{"missing denominator", "[QUESTION_SCORE: 85]", 85, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractScore(tt.text, QuestionScore)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExtractScore_WrongName(t *testing.T) {
	if _, found := ExtractScore("[ASSESSMENT_SCORE: 55/100]", QuestionScore); found {
		t.Error("QUESTION_SCORE should be absent when only ASSESSMENT_SCORE appears")
	}
}

func TestExtractStructured_Object(t *testing.T) {
	text := `Final results below.
[SUBTOPIC_SCORES: {"JOINs": 80, "CTEs": 40}]
[ASSESSMENT_COMPLETE]`

	raw, ok := ExtractStructured(text, SubtopicScores)
	if !ok {
		t.Fatal("expected payload")
	}
	var scores map[string]int
	if err := json.Unmarshal(raw, &scores); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if scores["JOINs"] != 80 || scores["CTEs"] != 40 {
		t.Errorf("scores = %v", scores)
	}
}

// A payload containing a nested array must be delimited by bracket-depth
// counting; taking the first closing bracket would truncate at "[1,2]".
func TestExtractStructured_NestedPayload(t *testing.T) {
	text := `[SUBTOPIC_SCORES: {"A": 1, "arr": [1,2]}]`

	raw, ok := ExtractStructured(text, SubtopicScores)
	if !ok {
		t.Fatal("expected payload")
	}
	want := `{"A": 1, "arr": [1,2]}`
	if string(raw) != want {
		t.Errorf("payload = %q, want %q", raw, want)
	}

	// Contrast: naive matching stops inside the nested array.
	after := strings.SplitN(text, "[SUBTOPIC_SCORES:", 2)[1]
	naive := after[:strings.IndexByte(after, ']')+1]
	if json.Valid([]byte(strings.TrimSpace(naive))) {
		t.Errorf("naive extraction %q should be truncated, invalid JSON", naive)
	}
}

func TestExtractStructured_DeepNesting(t *testing.T) {
	text := `[GAPS: ["CTEs: weak on recursion [see Q3]", "Indexes: no covering index answer"]]`

	raw, ok := ExtractStructured(text, Gaps)
	if !ok {
		t.Fatal("expected payload")
	}
	var gaps []string
	if err := json.Unmarshal(raw, &gaps); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(gaps) != 2 {
		t.Fatalf("len = %d, want 2", len(gaps))
	}
	if gaps[0] != "CTEs: weak on recursion [see Q3]" {
		t.Errorf("gaps[0] = %q", gaps[0])
	}
}

func TestExtractStructured_Absent(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no marker", "plain text"},
		{"scalar payload", "[SUBTOPIC_SCORES: 85/100]"},
		{"empty after marker", "[SUBTOPIC_SCORES:"},
		{"never closes", `[SUBTOPIC_SCORES: {"A": 1`},
		{"invalid json", `[SUBTOPIC_SCORES: {A: 1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ExtractStructured(tt.text, SubtopicScores); ok {
				t.Error("expected absent")
			}
		})
	}
}

func TestHasFlag(t *testing.T) {
	if !HasFlag("done\n[ASSESSMENT_COMPLETE]", Complete) {
		t.Error("flag should be detected")
	}
	if HasFlag("[ASSESSMENT_COMPLETED_SOON]", Complete) {
		t.Error("partial name must not match")
	}
}

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"closed block", "<think>working it out</think>\nHere is my question.", "Here is my question."},
		{"no block", "Here is my question.", "Here is my question."},
		{"unclosed block passes through", "<think>still reasoning", "<think>still reasoning"},
		{"close without open", "leftover</think>answer", "answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripReasoning(tt.in); got != tt.want {
				t.Errorf("StripReasoning(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_AllMarkers(t *testing.T) {
	text := `That's a wrap.
[QUESTION_SCORE: 60/100]
[ASSESSMENT_SCORE: 55/100]
[SUBTOPIC_SCORES: {"JOINs": 80, "CTEs": 40, "Indexes": 70}]
[GAPS: ["CTEs: struggled with recursive CTEs"]]
[ASSESSMENT_COMPLETE]`

	events := Parse(text)
	if len(events) != 5 {
		t.Fatalf("len(events) = %d, want 5", len(events))
	}

	var gotQuestion, gotOverall, gotSubtopics, gotGaps, gotComplete bool
	for _, ev := range events {
		switch e := ev.(type) {
		case QuestionScored:
			gotQuestion = true
			if e.Score != 60 {
				t.Errorf("question score = %d", e.Score)
			}
		case AssessmentScored:
			gotOverall = true
			if e.Score != 55 {
				t.Errorf("overall score = %d", e.Score)
			}
		case SubtopicsReported:
			gotSubtopics = true
			if e.Scores["CTEs"] != 40 {
				t.Errorf("subtopic scores = %v", e.Scores)
			}
		case GapsReported:
			gotGaps = true
			if len(e.Gaps) != 1 {
				t.Errorf("gaps = %v", e.Gaps)
			}
		case Completed:
			gotComplete = true
		}
	}
	if !gotQuestion || !gotOverall || !gotSubtopics || !gotGaps || !gotComplete {
		t.Errorf("missing events: q=%v o=%v s=%v g=%v c=%v",
			gotQuestion, gotOverall, gotSubtopics, gotGaps, gotComplete)
	}
}

func TestParse_PlainText(t *testing.T) {
	if events := Parse("Just a question, no markers."); len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}
}

func TestParse_FloatSubtopicScores(t *testing.T) {
	events := Parse(`[SUBTOPIC_SCORES: {"A": 85.0}]`)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if e := events[0].(SubtopicsReported); e.Scores["A"] != 85 {
		t.Errorf("score = %d, want 85", e.Scores["A"])
	}
}

func TestStripMarkers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "scalar marker removed",
			in:   "Correct.\n[QUESTION_SCORE: 85/100]\nNext question.",
			want: "Correct.\n\nNext question.",
		},
		{
			name: "full closing block removed",
			in: `Solid work.
[QUESTION_SCORE: 70/100]
[ASSESSMENT_SCORE: 55/100]
[SUBTOPIC_SCORES: {"JOINs": 80, "CTEs": 40}]
[GAPS: ["CTEs: weak on recursion"]]
[ASSESSMENT_COMPLETE]`,
			want: "Solid work.",
		},
		{
			name: "nested payload removed whole",
			in:   `Done. [SUBTOPIC_SCORES: {"A": 1, "arr": [1,2]}] Bye.`,
			want: "Done.  Bye.",
		},
		{
			name: "plain text unchanged",
			in:   "No markers here.",
			want: "No markers here.",
		},
		{
			name: "unparseable marker left in place",
			in:   "Text [QUESTION_SCORE: never closes",
			want: "Text [QUESTION_SCORE: never closes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkers(tt.in); got != tt.want {
				t.Errorf("StripMarkers() = %q, want %q", got, tt.want)
			}
		})
	}
}

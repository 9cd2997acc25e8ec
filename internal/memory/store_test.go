package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/magicmentor/mentor/internal/assessment"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), "test-user")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpen_NewUserGetsDefaultRecord(t *testing.T) {
	s := openTestStore(t)

	if s.UserID() != "test-user" {
		t.Errorf("user ID = %q", s.UserID())
	}
	if got := s.Profile(); got != (Profile{}) {
		t.Errorf("fresh profile = %+v, want zero", got)
	}
	if len(s.AssessmentHistory()) != 0 {
		t.Error("fresh record should have no assessments")
	}
}

func TestStore_ReloadSeesFlushedState(t *testing.T) {
	dataDir := t.TempDir()

	s, err := Open(dataDir, "u1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.UpdateProfile(Profile{Name: "Ana", CurrentRole: "Analyst"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	reloaded, err := Open(dataDir, "u1")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	p := reloaded.Profile()
	if p.Name != "Ana" || p.CurrentRole != "Analyst" {
		t.Errorf("reloaded profile = %+v", p)
	}
	if reloaded.record.SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %d, want %d", reloaded.record.SchemaVersion, SchemaVersion)
	}
}

func TestUpdateProfile_SetIfPresent(t *testing.T) {
	s := openTestStore(t)

	if err := s.UpdateProfile(Profile{Name: "Ana", Location: "Lisbon", YearsExperience: 4}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	// Partial update: empty fields must not clobber existing values.
	if err := s.UpdateProfile(Profile{TargetRole: "Data Engineer"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	p := s.Profile()
	if p.Name != "Ana" || p.Location != "Lisbon" || p.YearsExperience != 4 {
		t.Errorf("earlier fields lost: %+v", p)
	}
	if p.TargetRole != "Data Engineer" {
		t.Errorf("target role = %q", p.TargetRole)
	}
}

func TestLearningAndCompletedAreExclusive(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddLearningSkill(Skill{Name: "DAX"}); err != nil {
		t.Fatalf("AddLearningSkill: %v", err)
	}
	// Duplicate add is a no-op.
	if err := s.AddLearningSkill(Skill{Name: "DAX"}); err != nil {
		t.Fatalf("AddLearningSkill dup: %v", err)
	}
	if got := s.Skills(); len(got.Learning) != 1 {
		t.Fatalf("learning = %v, want 1 entry", got.Learning)
	}

	if err := s.MarkSkillCompleted("DAX", 82); err != nil {
		t.Fatalf("MarkSkillCompleted: %v", err)
	}

	sk := s.Skills()
	if len(sk.Learning) != 0 {
		t.Errorf("learning after completion = %v, want empty", sk.Learning)
	}
	if len(sk.Completed) != 1 || sk.Completed[0].Name != "DAX" || sk.Completed[0].Score != 82 {
		t.Errorf("completed = %+v", sk.Completed)
	}

	// A completed skill cannot re-enter the learning bucket.
	if err := s.AddLearningSkill(Skill{Name: "DAX"}); err != nil {
		t.Fatalf("AddLearningSkill after completion: %v", err)
	}
	if got := s.Skills(); len(got.Learning) != 0 {
		t.Errorf("learning = %v, want empty", got.Learning)
	}
}

func TestMarkSkillCompleted_RepeatIsNoOp(t *testing.T) {
	s := openTestStore(t)

	// Completing a skill that was never in learning still records it once.
	if err := s.MarkSkillCompleted("SQL", 90); err != nil {
		t.Fatalf("MarkSkillCompleted: %v", err)
	}
	if err := s.MarkSkillCompleted("SQL", 40); err != nil {
		t.Fatalf("MarkSkillCompleted repeat: %v", err)
	}

	sk := s.Skills()
	if len(sk.Completed) != 1 {
		t.Fatalf("completed = %+v, want a single entry", sk.Completed)
	}
	// The first completion's score stands.
	if sk.Completed[0].Score != 90 {
		t.Errorf("score = %g, want 90", sk.Completed[0].Score)
	}
}

func TestMarkSkillCompleted_SurvivesReload(t *testing.T) {
	dataDir := t.TempDir()
	s, err := Open(dataDir, "u1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.AddLearningSkill(Skill{Name: "Spark"}); err != nil {
		t.Fatalf("AddLearningSkill: %v", err)
	}
	if err := s.MarkSkillCompleted("Spark", 75); err != nil {
		t.Fatalf("MarkSkillCompleted: %v", err)
	}

	reloaded, err := Open(dataDir, "u1")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	sk := reloaded.Skills()
	if len(sk.Learning) != 0 || len(sk.Completed) != 1 {
		t.Errorf("reloaded ledger: learning=%v completed=%v", sk.Learning, sk.Completed)
	}
}

func TestMentorNotes_RetentionWindow(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < maxMentorNotes+5; i++ {
		if err := s.AddMentorNote(fmt.Sprintf("note %d", i)); err != nil {
			t.Fatalf("AddMentorNote %d: %v", i, err)
		}
	}

	notes := s.MentorNotes()
	if len(notes) != maxMentorNotes {
		t.Fatalf("notes = %d, want %d", len(notes), maxMentorNotes)
	}
	// Oldest dropped, newest kept.
	if notes[0].Note != "note 5" {
		t.Errorf("oldest retained = %q, want note 5", notes[0].Note)
	}
	if notes[len(notes)-1].Note != fmt.Sprintf("note %d", maxMentorNotes+4) {
		t.Errorf("newest retained = %q", notes[len(notes)-1].Note)
	}
}

func TestSessionSummaries_RetentionWindow(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < maxSessionSummaries+3; i++ {
		if err := s.AddSessionSummary("assessment", fmt.Sprintf("session %d", i), nil); err != nil {
			t.Fatalf("AddSessionSummary %d: %v", i, err)
		}
	}

	sums := s.SessionSummaries()
	if len(sums) != maxSessionSummaries {
		t.Fatalf("summaries = %d, want %d", len(sums), maxSessionSummaries)
	}
	if sums[0].Summary != "session 3" {
		t.Errorf("oldest retained = %q, want session 3", sums[0].Summary)
	}
}

func TestSaveAssessment_HistoryAndGaps(t *testing.T) {
	s := openTestStore(t)

	gaps := []assessment.GapEntry{{Skill: "SQL — CTEs", Priority: 1, AssessedScore: 40}}
	if err := s.SaveAssessment("SQL", 55, map[string]int{"JOINs": 80, "CTEs": 40}, gaps); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if err := s.SaveAssessment("Python Data", 72, map[string]int{"pandas": 72}, nil); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}

	hist := s.AssessmentHistory()
	if len(hist) != 2 {
		t.Fatalf("history = %d, want 2", len(hist))
	}
	if hist[0].Skill != "SQL" || hist[0].OverallScore != 55 {
		t.Errorf("hist[0] = %+v", hist[0])
	}
	if hist[0].AssessedAt.IsZero() {
		t.Error("assessed-at timestamp not set")
	}

	all := s.AssessmentGaps()
	if len(all) != 1 || all[0].Skill != "SQL — CTEs" {
		t.Errorf("gaps = %+v", all)
	}
}

func TestMergePreferences_SetUnion(t *testing.T) {
	s := openTestStore(t)

	if err := s.MergePreferences(Preferences{
		LearningStyle: "hands-on",
		CareerGoals:   []string{"become a data engineer"},
		Concerns:      []string{"imposter syndrome"},
	}); err != nil {
		t.Fatalf("MergePreferences: %v", err)
	}
	if err := s.MergePreferences(Preferences{
		CareerGoals: []string{"become a data engineer", "learn cloud"},
		Concerns:    []string{"imposter syndrome"},
	}); err != nil {
		t.Fatalf("MergePreferences: %v", err)
	}

	p := s.Preferences()
	if p.LearningStyle != "hands-on" {
		t.Errorf("learning style = %q", p.LearningStyle)
	}
	if len(p.CareerGoals) != 2 {
		t.Errorf("career goals = %v, want union of 2", p.CareerGoals)
	}
	if p.CareerGoals[0] != "become a data engineer" || p.CareerGoals[1] != "learn cloud" {
		t.Errorf("union order = %v, want first-seen order", p.CareerGoals)
	}
	if len(p.Concerns) != 1 {
		t.Errorf("concerns = %v, want deduped single entry", p.Concerns)
	}
}

func TestAuditLog_OneLinePerMutation(t *testing.T) {
	dataDir := t.TempDir()
	s, err := Open(dataDir, "u1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.UpdateProfile(Profile{Name: "Ana"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if err := s.AddMentorNote("prefers worked examples"); err != nil {
		t.Fatalf("AddMentorNote: %v", err)
	}

	f, err := os.Open(filepath.Join(dataDir, "users", "u1", logFile))
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer f.Close()

	var types []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e LogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("audit line not valid JSON: %v", err)
		}
		if e.Timestamp.IsZero() {
			t.Error("audit entry missing timestamp")
		}
		types = append(types, e.Type)
	}

	want := []string{"profile_update", "mentor_note"}
	if len(types) != len(want) {
		t.Fatalf("audit entries = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("types[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestManager_SharesOneStorePerUser(t *testing.T) {
	m := NewManager(t.TempDir())

	a, err := m.Store("u1")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	b, err := m.Store("u1")
	if err != nil {
		t.Fatalf("Store again: %v", err)
	}
	if a != b {
		t.Error("same user must map to the same Store instance")
	}

	other, err := m.Store("u2")
	if err != nil {
		t.Fatalf("Store u2: %v", err)
	}
	if other == a {
		t.Error("distinct users must not share a Store")
	}
}

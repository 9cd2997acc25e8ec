package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/magicmentor/mentor/internal/assessment"
)

const (
	recordFile = "memory.json"
	logFile    = "memory_log.jsonl"
)

// Store is the single source of truth for one user's durable state. All
// writes funnel through its methods, each of which mutates the in-memory
// record and flushes the whole document before returning. The internal
// mutex serializes foreground (orchestrator) and background (consolidator)
// mutations; use a Manager to guarantee one Store instance per user.
type Store struct {
	mu     sync.Mutex
	userID string
	dir    string
	record *Record
}

// Open loads the user's record from dataDir, creating the directory and a
// default record on first use.
func Open(dataDir, userID string) (*Store, error) {
	dir := filepath.Join(dataDir, "users", userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}

	s := &Store{userID: userID, dir: dir}

	raw, err := os.ReadFile(s.recordPath())
	switch {
	case os.IsNotExist(err):
		s.record = newRecord(userID)
	case err != nil:
		return nil, fmt.Errorf("read memory record: %w", err)
	default:
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parse memory record: %w", err)
		}
		migrate(&rec)
		s.record = &rec
	}

	return s, nil
}

// UserID returns the identity this store is bound to.
func (s *Store) UserID() string { return s.userID }

// Dir returns the user's memory directory (also hosts the Tier-2 index).
func (s *Store) Dir() string { return s.dir }

func (s *Store) recordPath() string { return filepath.Join(s.dir, recordFile) }
func (s *Store) logPath() string    { return filepath.Join(s.dir, logFile) }

// flush serializes the full record. Write-to-temp + rename keeps the
// durable file whole if the process dies mid-write. Callers hold s.mu.
func (s *Store) flush() error {
	s.record.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(s.record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal memory record: %w", err)
	}

	tmp := s.recordPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write memory record: %w", err)
	}
	if err := os.Rename(tmp, s.recordPath()); err != nil {
		return fmt.Errorf("replace memory record: %w", err)
	}
	return nil
}

// logEvent appends one line to the audit log. The log is best-effort:
// a failure here must not block the mutation it describes.
func (s *Store) logEvent(eventType, content string) {
	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Content:   content,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: marshal audit entry: %v\n", err)
		return
	}

	f, err := os.OpenFile(s.logPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: open audit log: %v\n", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "warning: append audit log: %v\n", err)
	}
}

// LogEvent records an audit event without mutating the record.
func (s *Store) LogEvent(eventType, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logEvent(eventType, content)
}

// UpdateProfile merges incoming profile facts. Fields are set-if-present:
// an empty or zero incoming field never overwrites an existing value.
func (s *Store) UpdateProfile(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := &s.record.Profile
	if p.Name != "" {
		cur.Name = p.Name
	}
	if p.Email != "" {
		cur.Email = p.Email
	}
	if p.Location != "" {
		cur.Location = p.Location
	}
	if p.YearsExperience != 0 {
		cur.YearsExperience = p.YearsExperience
	}
	if p.CurrentRole != "" {
		cur.CurrentRole = p.CurrentRole
	}
	if p.TargetRole != "" {
		cur.TargetRole = p.TargetRole
	}

	payload, _ := json.Marshal(p)
	s.logEvent("profile_update", string(payload))
	return s.flush()
}

// UpdateSkills replaces the current and/or target skill buckets. A nil
// slice leaves the bucket untouched.
func (s *Store) UpdateSkills(current, targets []Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current != nil {
		s.record.Skills.Current = current
	}
	if targets != nil {
		s.record.Skills.Targets = targets
	}

	s.logEvent("skills_update", fmt.Sprintf("current: %d skills, targets: %d skills", len(current), len(targets)))
	return s.flush()
}

// AddLearningSkill puts a skill into the learning bucket unless it is
// already being learned or already completed.
func (s *Store) AddLearningSkill(skill Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.record.Skills.Learning {
		if l.Name == skill.Name {
			return nil
		}
	}
	for _, c := range s.record.Skills.Completed {
		if c.Name == skill.Name {
			return nil
		}
	}

	s.record.Skills.Learning = append(s.record.Skills.Learning, skill)
	s.logEvent("skill_learning", skill.Name)
	return s.flush()
}

// MarkSkillCompleted atomically moves a skill from learning to completed:
// removal and append happen under one lock with a single flush. The
// completed entry's score and timestamp are write-once.
func (s *Store) MarkSkillCompleted(name string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.record.Skills.Completed {
		if c.Name == name {
			return nil
		}
	}

	learning := s.record.Skills.Learning[:0]
	for _, l := range s.record.Skills.Learning {
		if l.Name != name {
			learning = append(learning, l)
		}
	}
	s.record.Skills.Learning = learning

	s.record.Skills.Completed = append(s.record.Skills.Completed, CompletedSkill{
		Name:        name,
		Score:       score,
		CompletedAt: time.Now().UTC(),
	})

	s.logEvent("skill_completed", fmt.Sprintf("%s (score: %g)", name, score))
	return s.flush()
}

// AddMentorNote appends an observation, truncating to the retention
// window before flush.
func (s *Store) AddMentorNote(note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.MentorNotes = append(s.record.MentorNotes, Note{
		Date: time.Now().UTC(),
		Note: note,
	})
	if n := len(s.record.MentorNotes); n > maxMentorNotes {
		s.record.MentorNotes = s.record.MentorNotes[n-maxMentorNotes:]
	}

	s.logEvent("mentor_note", note)
	return s.flush()
}

// AddSessionSummary appends a session takeaway, truncating to the
// retention window before flush.
func (s *Store) AddSessionSummary(sessionType, summary string, keyInsights []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.SessionSummaries = append(s.record.SessionSummaries, SessionSummary{
		Date:        time.Now().UTC(),
		Type:        sessionType,
		Summary:     summary,
		KeyInsights: keyInsights,
	})
	if n := len(s.record.SessionSummaries); n > maxSessionSummaries {
		s.record.SessionSummaries = s.record.SessionSummaries[n-maxSessionSummaries:]
	}

	s.logEvent("session_summary", summary)
	return s.flush()
}

// SaveAssessment appends one finished diagnostic to the assessment
// history. It does not touch the skill ledger.
func (s *Store) SaveAssessment(skill string, overallScore int, subtopicScores map[string]int, gapEntries []assessment.GapEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.Assessments = append(s.record.Assessments, AssessmentRecord{
		Skill:          skill,
		OverallScore:   overallScore,
		SubtopicScores: subtopicScores,
		GapEntries:     gapEntries,
		AssessedAt:     time.Now().UTC(),
	})

	s.logEvent("assessment_saved", fmt.Sprintf("%s: %d/100, %d gaps", skill, overallScore, len(gapEntries)))
	return s.flush()
}

// SaveMentorAnalysis stores the full mentor analysis for reuse across
// sessions, replacing the previous one.
func (s *Store) SaveMentorAnalysis(a Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.LastAnalysis = a
	s.logEvent("mentor_analysis", fmt.Sprintf("%d gaps, %d roadmap items", len(a.SkillGaps), len(a.LearningRoadmap)))
	return s.flush()
}

// MergePreferences folds learned preferences into the record. The scalar
// learning style is set-if-present; list fields are set-unioned with the
// existing values, preserving first-seen order.
func (s *Store) MergePreferences(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := &s.record.Preferences
	if p.LearningStyle != "" {
		cur.LearningStyle = p.LearningStyle
	}
	cur.PreferredTopics = unionStrings(cur.PreferredTopics, p.PreferredTopics)
	cur.CareerGoals = unionStrings(cur.CareerGoals, p.CareerGoals)
	cur.Concerns = unionStrings(cur.Concerns, p.Concerns)

	s.logEvent("preferences_update", fmt.Sprintf("%d topics, %d goals, %d concerns",
		len(cur.PreferredTopics), len(cur.CareerGoals), len(cur.Concerns)))
	return s.flush()
}

// unionStrings appends the elements of add not already in base.
func unionStrings(base, add []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range add {
		if v != "" && !seen[v] {
			base = append(base, v)
			seen[v] = true
		}
	}
	return base
}

// Profile returns a copy of the profile facts.
func (s *Store) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Profile
}

// Skills returns a deep copy of the skill ledger.
func (s *Store) Skills() Skills {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk := s.record.Skills
	return Skills{
		Current:   append([]Skill(nil), sk.Current...),
		Learning:  append([]Skill(nil), sk.Learning...),
		Completed: append([]CompletedSkill(nil), sk.Completed...),
		Targets:   append([]Skill(nil), sk.Targets...),
	}
}

// Preferences returns a copy of the learned preferences.
func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.record.Preferences
	p.PreferredTopics = append([]string(nil), p.PreferredTopics...)
	p.CareerGoals = append([]string(nil), p.CareerGoals...)
	p.Concerns = append([]string(nil), p.Concerns...)
	return p
}

// AssessmentHistory returns a copy of all saved diagnostics, oldest first.
func (s *Store) AssessmentHistory() []AssessmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AssessmentRecord(nil), s.record.Assessments...)
}

// AssessmentGaps returns every gap entry across the assessment history,
// oldest assessment first.
func (s *Store) AssessmentGaps() []assessment.GapEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var gaps []assessment.GapEntry
	for _, a := range s.record.Assessments {
		gaps = append(gaps, a.GapEntries...)
	}
	return gaps
}

// LastAnalysis returns the most recent mentor analysis.
func (s *Store) LastAnalysis() Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.LastAnalysis
}

// SessionSummaries returns a copy of the retained session summaries.
func (s *Store) SessionSummaries() []SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SessionSummary(nil), s.record.SessionSummaries...)
}

// MentorNotes returns a copy of the retained mentor notes.
func (s *Store) MentorNotes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Note(nil), s.record.MentorNotes...)
}

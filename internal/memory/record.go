// Package memory implements the Tier-1 persistent store: one durable,
// structured record per user identity holding profile facts, the skill
// ledger, assessment history, notes and session summaries. Every mutation
// is read-modify-write-flush — nothing survives a restart unless flushed —
// and an append-only JSONL audit log records each mutating operation.
package memory

import (
	"time"

	"github.com/magicmentor/mentor/internal/assessment"
)

// SchemaVersion is the current shape of the persisted record. Records
// written by older builds are default-filled and migrated on load.
const SchemaVersion = 1

// Retention bounds for the ring-buffered lists. Truncation happens before
// flush, so the durable file never exceeds these.
const (
	maxMentorNotes      = 20
	maxSessionSummaries = 10
)

// Record is the full durable state for one user.
type Record struct {
	UserID        string    `json:"user_id"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Profile Profile `json:"profile"`
	Skills  Skills  `json:"skills"`

	// MentorNotes and SessionSummaries are bounded rings, not logs.
	MentorNotes      []Note           `json:"mentor_notes"`
	SessionSummaries []SessionSummary `json:"session_summaries"`

	Assessments  []AssessmentRecord `json:"assessment_history"`
	LastAnalysis Analysis           `json:"last_mentor_analysis"`
	Preferences  Preferences        `json:"preferences"`
}

// Profile holds identity and coarse facts. Incoming updates are
// set-if-present: an empty field never overwrites an existing value.
type Profile struct {
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Location        string `json:"location,omitempty"`
	YearsExperience int    `json:"years_experience,omitempty"`
	CurrentRole     string `json:"current_role,omitempty"`
	TargetRole      string `json:"target_role,omitempty"`
}

// Skill is one entry in the current/learning/targets buckets.
type Skill struct {
	Name     string `json:"name"`
	Level    string `json:"level,omitempty"`
	Category string `json:"category,omitempty"`
}

// CompletedSkill carries an immutable validation score and timestamp.
type CompletedSkill struct {
	Name        string    `json:"name"`
	Score       float64   `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

// Skills is the four-bucket lifecycle ledger. A skill name appears in
// Learning or Completed, never both: completing a skill removes it from
// Learning.
type Skills struct {
	Current   []Skill          `json:"current"`
	Learning  []Skill          `json:"learning"`
	Completed []CompletedSkill `json:"completed"`
	Targets   []Skill          `json:"targets"`
}

// Note is one timestamped mentor observation.
type Note struct {
	Date time.Time `json:"date"`
	Note string    `json:"note"`
}

// SessionSummary is the stored takeaway of one finished session, kept so
// future sessions never need the full transcript.
type SessionSummary struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"` // "assessment", "mentor_chat", "learning"
	Summary     string    `json:"summary"`
	KeyInsights []string  `json:"key_insights,omitempty"`
}

// AssessmentRecord is one finished diagnostic.
type AssessmentRecord struct {
	Skill          string                 `json:"skill"`
	OverallScore   int                    `json:"overall_score"`
	SubtopicScores map[string]int         `json:"subtopic_scores"`
	GapEntries     []assessment.GapEntry  `json:"gap_entries"`
	AssessedAt     time.Time              `json:"assessed_at"`
}

// Analysis is the last full mentor analysis, reused across sessions.
type Analysis struct {
	SkillGaps        []assessment.GapEntry `json:"skill_gaps"`
	LearningRoadmap  []string              `json:"learning_roadmap"`
	RecommendedRoles []string              `json:"recommended_roles"`
}

// Preferences are durable facts learned over time. List fields are merged
// by set union, never replaced.
type Preferences struct {
	LearningStyle   string   `json:"learning_style,omitempty"`
	PreferredTopics []string `json:"preferred_topics"`
	CareerGoals     []string `json:"career_goals"`
	Concerns        []string `json:"concerns"`
}

// newRecord returns the default structure for a user seen for the first time.
func newRecord(userID string) *Record {
	now := time.Now().UTC()
	return &Record{
		UserID:        userID,
		SchemaVersion: SchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// migrate upgrades a loaded record to the current schema. Fields added
// since the record was written are already default-filled by JSON
// decoding; this hook exists for structural changes that need more than
// zero values.
func migrate(r *Record) {
	if r.SchemaVersion < 1 {
		// Pre-versioning records carry no schema_version field at all.
		r.SchemaVersion = 1
	}
}

// LogEntry is one immutable audit record, appended per mutating operation
// and never read back programmatically.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
}

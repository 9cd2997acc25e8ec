package memory

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Bounds on what the context prompt carries. The prompt rides along with
// every model call, so it stays small and recency-biased rather than
// complete.
const (
	contextMaxCurrent   = 8
	contextMaxCompleted = 5
	contextMaxNotes     = 3
	contextMaxSummaries = 2
	contextMaxGoals     = 3
	contextSummaryChars = 120
)

// BuildContextPrompt renders the record into the memory block injected
// into system prompts. Read-only: calling it never mutates the store, and
// the same record always yields the same text.
func (s *Store) BuildContextPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("=== USER MEMORY ===\n")

	p := s.record.Profile
	if p.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", p.Name)
	}
	if p.CurrentRole != "" {
		fmt.Fprintf(&b, "Current role: %s\n", p.CurrentRole)
	}
	if p.TargetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", p.TargetRole)
	}
	if p.YearsExperience > 0 {
		fmt.Fprintf(&b, "Experience: %d years\n", p.YearsExperience)
	}
	if p.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", p.Location)
	}

	sk := s.record.Skills
	if len(sk.Current) > 0 {
		names := skillNames(sk.Current, contextMaxCurrent)
		fmt.Fprintf(&b, "Current skills: %s\n", strings.Join(names, ", "))
	}
	if len(sk.Learning) > 0 {
		names := skillNames(sk.Learning, len(sk.Learning))
		fmt.Fprintf(&b, "Currently learning: %s\n", strings.Join(names, ", "))
	}
	if len(sk.Completed) > 0 {
		// Most recent completions first.
		n := len(sk.Completed)
		count := min(n, contextMaxCompleted)
		parts := make([]string, 0, count)
		for i := n - 1; i >= n-count; i-- {
			c := sk.Completed[i]
			parts = append(parts, fmt.Sprintf("%s (%.0f%%)", c.Name, c.Score))
		}
		fmt.Fprintf(&b, "Recently completed: %s\n", strings.Join(parts, ", "))
	}

	if goals := s.record.Preferences.CareerGoals; len(goals) > 0 {
		fmt.Fprintf(&b, "Career goals: %s\n", strings.Join(goals[:min(len(goals), contextMaxGoals)], "; "))
	}

	if notes := s.record.MentorNotes; len(notes) > 0 {
		b.WriteString("Recent mentor notes:\n")
		count := min(len(notes), contextMaxNotes)
		for _, n := range notes[len(notes)-count:] {
			fmt.Fprintf(&b, "- %s\n", n.Note)
		}
	}

	if sums := s.record.SessionSummaries; len(sums) > 0 {
		b.WriteString("Recent sessions:\n")
		count := min(len(sums), contextMaxSummaries)
		for _, sum := range sums[len(sums)-count:] {
			text := truncate(sum.Summary, contextSummaryChars)
			fmt.Fprintf(&b, "- [%s] %s\n", sum.Type, text)
		}
	}

	b.WriteString("=== END USER MEMORY ===")
	return b.String()
}

// truncate cuts text to at most max bytes, backing up to a rune
// boundary so the cut never leaves invalid UTF-8 behind.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func skillNames(skills []Skill, limit int) []string {
	count := min(len(skills), limit)
	names := make([]string, 0, count)
	for _, s := range skills[:count] {
		names = append(names, s.Name)
	}
	return names
}

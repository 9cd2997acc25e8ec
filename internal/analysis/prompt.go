package analysis

import (
	"fmt"
	"strings"

	"github.com/magicmentor/mentor/internal/assessment"
	"github.com/magicmentor/mentor/internal/memory"
)

const analysisSystemPrompt = `You are a pragmatic career mentor for data professionals.

Instructions:
- Base the roadmap on the ASSESSED GAPS, worst scores first. Do not invent gaps.
- Each roadmap step is one concrete action ("Work through X", "Build a project that Y"), not a vague theme.
- Recommended roles must be realistic next steps from the current role, not aspirational endpoints.
- If market context is provided, let it influence ordering, and say so in the summary.
- Respond with the JSON object only.`

const searchSystemPrompt = `You research the data job market. Answer in at most 5 short bullet points with current, concrete facts. No preamble.`

// buildAnalysisMessage renders the user's memory into the analysis prompt.
// marketContext is optional live research; empty means none was available.
func buildAnalysisMessage(store *memory.Store, marketContext string) string {
	var b strings.Builder

	b.WriteString(store.BuildContextPrompt())
	b.WriteString("\n\nASSESSED GAPS (worst first):\n")

	gaps := store.AssessmentGaps()
	if len(gaps) == 0 {
		b.WriteString("(no assessments completed yet)\n")
	}
	for _, g := range gaps {
		fmt.Fprintf(&b, "- %s: %d/100 — %s\n", g.Skill, g.AssessedScore, g.Reason)
	}

	if marketContext != "" {
		b.WriteString("\nMARKET CONTEXT:\n")
		b.WriteString(marketContext)
		b.WriteString("\n")
	}

	b.WriteString("\nProduce the mentor analysis.")
	return b.String()
}

// buildSearchQuery asks for market demand around the user's gaps and target.
func buildSearchQuery(profile memory.Profile, gaps []assessment.GapEntry) string {
	skills := make([]string, 0, len(gaps))
	for i, g := range gaps {
		if i >= 5 {
			break
		}
		skills = append(skills, g.Skill)
	}

	target := profile.TargetRole
	if target == "" {
		target = "data roles"
	}
	if len(skills) == 0 {
		return fmt.Sprintf("What skills are most in demand right now for %s?", target)
	}
	return fmt.Sprintf("Current job market demand for %s, especially these skills: %s.",
		target, strings.Join(skills, ", "))
}

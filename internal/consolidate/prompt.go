package consolidate

import (
	"fmt"
	"strings"

	"github.com/magicmentor/mentor/internal/llm"
	"github.com/magicmentor/mentor/internal/memory"
)

// Bounds on the rendered transcript: enough for one session's facts
// without blowing the local model's context window.
const (
	maxTranscriptTurns = 20
	maxTurnChars       = 500
)

const extractionSystemPrompt = `You extract durable facts from a career mentoring conversation.

Instructions:
- Report ONLY facts the user actually stated or clearly demonstrated. Do not infer or embellish.
- Omit profile fields that were not mentioned; never guess a value.
- career_goals, concerns and preferred_topics are short phrases, not sentences.
- session_summary is 2-3 plain sentences describing what happened.
- key_insights is at most 3 items.
- mentor_note is the single observation most useful to a future session, or empty.
- Respond with the JSON object only.`

// buildExtractionMessage assembles the extraction prompt: the known
// profile first (so the model does not re-derive established facts), then
// the bounded transcript.
func buildExtractionMessage(profile memory.Profile, transcript []llm.Message) string {
	var b strings.Builder

	b.WriteString("KNOWN PROFILE (do not repeat these facts):\n")
	if profile == (memory.Profile{}) {
		b.WriteString("(nothing known yet)\n")
	} else {
		if profile.Name != "" {
			fmt.Fprintf(&b, "- name: %s\n", profile.Name)
		}
		if profile.CurrentRole != "" {
			fmt.Fprintf(&b, "- current role: %s\n", profile.CurrentRole)
		}
		if profile.TargetRole != "" {
			fmt.Fprintf(&b, "- target role: %s\n", profile.TargetRole)
		}
		if profile.Location != "" {
			fmt.Fprintf(&b, "- location: %s\n", profile.Location)
		}
		if profile.YearsExperience > 0 {
			fmt.Fprintf(&b, "- experience: %d years\n", profile.YearsExperience)
		}
	}

	b.WriteString("\nExtract durable facts from this conversation:\n\n")
	b.WriteString(renderTranscript(transcript))
	return b.String()
}

// renderTranscript flattens a conversation into the text block the
// extraction prompt operates on. Only the last maxTranscriptTurns turns
// are kept, each capped at maxTurnChars. System messages are skipped —
// they are instructions, not user facts.
func renderTranscript(transcript []llm.Message) string {
	if len(transcript) > maxTranscriptTurns {
		transcript = transcript[len(transcript)-maxTranscriptTurns:]
	}

	var b strings.Builder
	for _, m := range transcript {
		switch m.Role {
		case llm.RoleUser:
			b.WriteString("USER: ")
		case llm.RoleAssistant:
			b.WriteString("MENTOR: ")
		default:
			continue
		}
		content := m.Content
		if len(content) > maxTurnChars {
			content = content[:maxTurnChars]
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

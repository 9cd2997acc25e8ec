package assessment

import (
	"bytes"
	"strings"
	"text/template"
)

// assessorSystemPrompt fixes the interview protocol: one question per
// subtopic, a QUESTION_SCORE marker after every answer, and the final
// marker block only once every subtopic is covered.
const assessorSystemPrompt = `You are a fast, decisive diagnostic interviewer.
Your job: run a crisp 8-question quiz covering all subtopics, then emit final results.

STRICT RULES — follow exactly:
1. ONE question per subtopic — ask it, get the answer, MOVE ON. Never follow up on the same subtopic.
2. After EVERY user answer, emit [QUESTION_SCORE: XX/100] on its own line, then immediately ask the next question on a NEW subtopic.
3. After all subtopics are covered (question 8+), emit the FINAL markers and stop.
4. Vary question types: conceptual (define/explain), practical (write code/query), design (choose approach).
5. Adapt difficulty: go harder if correct, easier if wrong — but still only 1 question per subtopic.
6. Feedback per answer: 1 line max. Be direct. Never hint at the answer before the user responds.
7. If the user flags [LOW_CONFIDENCE]: give score 25/100 for that subtopic, say "Noted — we'll add this to your study plan", then move on immediately.

AFTER EVERY USER ANSWER (mandatory, on its own line):
[QUESTION_SCORE: XX/100]

FINAL RESPONSE ONLY (after question 8, once all subtopics are covered):
[ASSESSMENT_SCORE: XX/100]
[SUBTOPIC_SCORES: {"SubtopicA": 85, "SubtopicB": 40, "SubtopicC": 70}]
[GAPS: ["SubtopicB: reason why it needs work"]]
[ASSESSMENT_COMPLETE]

Marker rules:
- QUESTION_SCORE: integer 0-100 based on correctness/depth of the answer
- ASSESSMENT_SCORE: overall weighted score 0-100
- SUBTOPIC_SCORES: valid JSON, one entry per subtopic
- GAPS: valid JSON array, only subtopics scored below 70
- NEVER emit [ASSESSMENT_COMPLETE] before covering all subtopics`

var openingTemplate = template.Must(template.New("opening").Parse(
	`Let's run a diagnostic assessment on: {{.Label}}
Subtopics to cover: {{.Subtopics}}

Start the quiz now. In one sentence introduce the assessment and say how many questions to expect, then ask your first question.
Do NOT emit any [ASSESSMENT_*] markers yet — those come only at the end.`))

// buildSystemPrompt appends the rendered memory context, when present, to
// the fixed protocol rules. The context is bounded by the memory store, so
// the combined instruction stays well within provider limits.
func buildSystemPrompt(memoryContext string) string {
	if memoryContext == "" {
		return assessorSystemPrompt
	}
	return assessorSystemPrompt + "\n\n" + memoryContext
}

func buildOpeningPrompt(topic Topic) (string, error) {
	var buf bytes.Buffer
	err := openingTemplate.Execute(&buf, struct {
		Label     string
		Subtopics string
	}{
		Label:     topic.Label,
		Subtopics: strings.Join(topic.Subtopics, ", "),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Package marker extracts bracket-delimited control markers from raw
// generated text. The assessor model interleaves markers like
// [QUESTION_SCORE: 85/100] or [SUBTOPIC_SCORES: {...}] with its visible
// message; this package pulls them out without depending on their order
// or position. Absence of a marker is an expected outcome, never an error.
package marker

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Marker names used by the assessment protocol.
const (
	QuestionScore   = "QUESTION_SCORE"
	AssessmentScore = "ASSESSMENT_SCORE"
	SubtopicScores  = "SUBTOPIC_SCORES"
	Gaps            = "GAPS"
	Complete        = "ASSESSMENT_COMPLETE"
)

// HasFlag reports whether the bare marker [NAME] appears in text.
func HasFlag(text, name string) bool {
	return strings.Contains(text, "["+name+"]")
}

// ExtractScore extracts a scalar marker of the form [NAME: <int>/100].
// The second return value is false when the marker is absent or its
// payload is malformed.
func ExtractScore(text, name string) (int, bool) {
	token := "[" + name + ":"
	_, after, found := strings.Cut(text, token)
	if !found {
		return 0, false
	}
	payload, _, found := strings.Cut(after, "]")
	if !found {
		return 0, false
	}
	left, _, _ := strings.Cut(payload, "/")
	n, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractStructured extracts a JSON object or array payload from a marker
// of the form [NAME: {...}] or [NAME: [...]]. Payloads may nest arbitrarily,
// so the end of the structure is found by depth-counted bracket matching
// rather than the next closing bracket. Returns false when the marker is
// absent, the payload does not start with an opening brace/bracket, the
// structure never closes, or the substring is not valid JSON.
func ExtractStructured(text, name string) (json.RawMessage, bool) {
	token := "[" + name + ":"
	_, after, found := strings.Cut(text, token)
	if !found {
		return nil, false
	}
	after = strings.TrimLeft(after, " \t\r\n")
	if after == "" {
		return nil, false
	}

	open := after[0]
	var closing byte
	switch open {
	case '{':
		closing = '}'
	case '[':
		closing = ']'
	default:
		return nil, false
	}

	depth := 0
	end := -1
	for i := 0; i < len(after); i++ {
		switch after[i] {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, false
	}

	raw := json.RawMessage(after[:end])
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}

// StripMarkers removes every protocol marker span from text, leaving only
// the visible message. Scalar payloads end at the first closing bracket;
// structured payloads use the same depth matching as ExtractStructured.
// Unparseable marker-like text is left in place.
func StripMarkers(text string) string {
	for _, name := range []string{QuestionScore, AssessmentScore, SubtopicScores, Gaps} {
		text = stripMarker(text, name)
	}
	text = strings.ReplaceAll(text, "["+Complete+"]", "")

	// Collapse the blank lines the removed markers leave behind.
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}

func stripMarker(text, name string) string {
	token := "[" + name + ":"
	start := strings.Index(text, token)
	if start < 0 {
		return text
	}
	rest := text[start+len(token):]

	trimmed := strings.TrimLeft(rest, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		raw, ok := ExtractStructured(text, name)
		if !ok {
			return text
		}
		payloadEnd := strings.Index(rest, string(raw)) + len(raw)
		after := rest[payloadEnd:]
		// Consume the marker's own closing bracket if present.
		after = strings.TrimLeft(after, " \t\r\n")
		after = strings.TrimPrefix(after, "]")
		return text[:start] + after
	}

	end := strings.Index(rest, "]")
	if end < 0 {
		return text
	}
	return text[:start] + rest[end+1:]
}

const reasoningClose = "</think>"

// StripReasoning removes a reasoning preamble emitted before the visible
// answer. If a closing delimiter is present, only the text after it is the
// visible message. An opening delimiter with no close means the generation
// was truncated mid-reasoning; the full text is passed through unchanged
// rather than silently discarding content.
func StripReasoning(text string) string {
	if _, after, found := strings.Cut(text, reasoningClose); found {
		return strings.TrimSpace(after)
	}
	return text
}

package marker

import "encoding/json"

// Event is a capability-typed signal parsed from one model turn. Every
// marker is optional per turn; consumers fold whichever events appear into
// their own state and never assume a particular one is present.
type Event interface {
	isEvent()
}

// QuestionScored carries the per-answer score for the current turn.
type QuestionScored struct {
	Score int
}

// AssessmentScored carries the cumulative overall score, emitted only on
// the final turn.
type AssessmentScored struct {
	Score int
}

// SubtopicsReported carries the subtopic → score map from the final turn.
type SubtopicsReported struct {
	Scores map[string]int
}

// GapsReported carries the model's gap descriptions ("<subtopic>: <reason>").
type GapsReported struct {
	Gaps []string
}

// Completed signals the end of the interview.
type Completed struct{}

func (QuestionScored) isEvent()    {}
func (AssessmentScored) isEvent()  {}
func (SubtopicsReported) isEvent() {}
func (GapsReported) isEvent()      {}
func (Completed) isEvent()         {}

// Parse scans one model turn for all protocol markers and returns the
// events found, in no particular order. Malformed payloads degrade to
// absence; Parse never fails.
func Parse(text string) []Event {
	var events []Event

	if score, ok := ExtractScore(text, QuestionScore); ok {
		events = append(events, QuestionScored{Score: score})
	}
	if score, ok := ExtractScore(text, AssessmentScore); ok {
		events = append(events, AssessmentScored{Score: score})
	}
	if raw, ok := ExtractStructured(text, SubtopicScores); ok {
		// Models occasionally emit float scores; accept and truncate.
		var scores map[string]float64
		if err := json.Unmarshal(raw, &scores); err == nil {
			ints := make(map[string]int, len(scores))
			for k, v := range scores {
				ints[k] = int(v)
			}
			events = append(events, SubtopicsReported{Scores: ints})
		}
	}
	if raw, ok := ExtractStructured(text, Gaps); ok {
		var gaps []string
		if err := json.Unmarshal(raw, &gaps); err == nil {
			events = append(events, GapsReported{Gaps: gaps})
		}
	}
	if HasFlag(text, Complete) {
		events = append(events, Completed{})
	}

	return events
}

package assessment

import (
	"fmt"
	"sort"
	"strings"
)

// GapThreshold is the remediation cutoff: subtopics scoring strictly below
// it become gap entries. A score of exactly GapThreshold is not a gap.
const GapThreshold = 70

// GapEntry flags one subtopic that needs work. Entries are write-once:
// built when an assessment finishes and never mutated afterward.
type GapEntry struct {
	Skill                 string   `json:"skill"`
	Priority              int      `json:"priority"`
	Category              string   `json:"category"`
	Reason                string   `json:"reason"`
	BuildsOn              string   `json:"builds_on"`
	EstimatedLearningTime string   `json:"estimated_learning_time"`
	JobMarketDemand       string   `json:"job_market_demand"`
	Resources             []string `json:"resources"`
	Source                string   `json:"source"`
	AssessedScore         int      `json:"assessed_score"`
}

// BuildGapEntries converts finished-assessment output into gap entries.
// Priority ranks by ascending score (worst first, ties broken by name for
// determinism); the reason comes from the model's matching gap string when
// one names the subtopic, else is synthesized from the score.
func BuildGapEntries(skill string, subtopicScores map[string]int, gaps []string, overallScore int) []GapEntry {
	type scored struct {
		subtopic string
		score    int
	}

	var low []scored
	for sub, score := range subtopicScores {
		if score < GapThreshold {
			low = append(low, scored{subtopic: sub, score: score})
		}
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].score != low[j].score {
			return low[i].score < low[j].score
		}
		return low[i].subtopic < low[j].subtopic
	})

	reasons := matchGapReasons(subtopicScores, gaps)

	demand := "medium"
	if overallScore < 50 {
		demand = "high"
	}

	entries := make([]GapEntry, 0, len(low))
	for i, s := range low {
		reason, ok := reasons[s.subtopic]
		if !ok {
			reason = fmt.Sprintf("Scored %d/100 in %s", s.score, s.subtopic)
		}
		entries = append(entries, GapEntry{
			Skill:                 fmt.Sprintf("%s — %s", skill, s.subtopic),
			Priority:              i + 1,
			Category:              categorize(skill),
			Reason:                reason,
			BuildsOn:              fmt.Sprintf("Existing %s knowledge", skill),
			EstimatedLearningTime: "1-2 weeks",
			JobMarketDemand:       demand,
			Resources:             []string{},
			Source:                "assessment",
			AssessedScore:         s.score,
		})
	}

	return entries
}

// matchGapReasons maps subtopics to the model's gap descriptions by
// case-insensitive containment of the subtopic name.
func matchGapReasons(subtopicScores map[string]int, gaps []string) map[string]string {
	reasons := make(map[string]string)
	for _, g := range gaps {
		lower := strings.ToLower(g)
		for sub := range subtopicScores {
			if _, taken := reasons[sub]; taken {
				continue
			}
			if strings.Contains(lower, strings.ToLower(sub)) {
				reasons[sub] = g
				break
			}
		}
	}
	return reasons
}

func categorize(skill string) string {
	s := strings.ToLower(skill)
	s = strings.ReplaceAll(s, " / ", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

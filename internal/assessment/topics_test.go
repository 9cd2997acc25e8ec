package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicByLabel(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		want    string
		wantHit bool
	}{
		{"exact", "SQL", "SQL", true},
		{"case insensitive", "sql", "SQL", true},
		{"mixed case", "microsoft fabric", "Microsoft Fabric", true},
		{"with slash", "Power BI / DAX", "Power BI / DAX", true},
		{"unknown", "COBOL", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TopicByLabel(tt.label)
			if !tt.wantHit {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Label)
		})
	}
}

func TestDefaultTopics_Catalogue(t *testing.T) {
	require.NotEmpty(t, DefaultTopics)

	seen := map[string]bool{}
	for _, topic := range DefaultTopics {
		assert.NotEmpty(t, topic.Label)
		assert.NotEmpty(t, topic.Subtopics, "topic %s has no subtopics", topic.Label)
		assert.False(t, seen[topic.Label], "duplicate topic %s", topic.Label)
		seen[topic.Label] = true

		sub := map[string]bool{}
		for _, s := range topic.Subtopics {
			assert.False(t, sub[s], "duplicate subtopic %s in %s", s, topic.Label)
			sub[s] = true
		}
	}
}

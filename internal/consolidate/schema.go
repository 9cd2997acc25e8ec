package consolidate

import "github.com/magicmentor/mentor/internal/llm"

// ExtractionSchema defines the JSON schema for memory extraction
// responses. Every field is optional in spirit — the model reports only
// what the conversation actually revealed — but the object shape is
// strict so a malformed response fails validation instead of silently
// corrupting memory.
var ExtractionSchema = &llm.Schema{
	Name:        "memory-extraction",
	Description: "Durable facts extracted from one mentoring session transcript",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"profile": map[string]any{
				"type":        "object",
				"description": "Profile facts stated in this session; omit fields not mentioned",
				"properties": map[string]any{
					"name":             map[string]any{"type": "string"},
					"location":         map[string]any{"type": "string"},
					"years_experience": map[string]any{"type": "integer"},
					"current_role":     map[string]any{"type": "string"},
					"target_role":      map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
			"career_goals": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Career goals the user expressed, short phrases",
			},
			"concerns": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Worries or blockers the user voiced",
			},
			"preferred_topics": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Topics the user showed interest in",
			},
			"learning_style": map[string]any{
				"type":        "string",
				"description": "How the user prefers to learn, empty if not evident",
			},
			"session_summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentence summary of what happened this session",
			},
			"key_insights": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Up to 3 takeaways worth remembering",
			},
			"mentor_note": map[string]any{
				"type":        "string",
				"description": "One observation a mentor would jot down about this user, empty if nothing stands out",
			},
		},
		"required":             []any{"session_summary"},
		"additionalProperties": false,
	},
}

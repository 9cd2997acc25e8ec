package analysis

import "github.com/magicmentor/mentor/internal/llm"

// AnalysisSchema defines the JSON schema for mentor analysis responses.
var AnalysisSchema = &llm.Schema{
	Name:        "mentor-analysis",
	Description: "Career guidance built from assessed skill gaps and profile facts",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"learning_roadmap": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Ordered learning steps, most urgent first, one concrete action each",
			},
			"recommended_roles": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 realistic next roles given current skills and target",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentence assessment of where the user stands",
			},
		},
		"required":             []any{"learning_roadmap", "recommended_roles", "summary"},
		"additionalProperties": false,
	},
}

package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var testSchema = &Schema{
	Name:        "memory-extraction-test",
	Description: "test schema",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"session_summary": map[string]any{"type": "string"},
			"new_facts": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"session_summary"},
	},
}

func TestValidateResponse_Valid(t *testing.T) {
	raw := json.RawMessage(`{"session_summary":"covered SQL basics","new_facts":["wants to move into data engineering"]}`)
	if err := validateResponse(testSchema, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_MissingRequired(t *testing.T) {
	raw := json.RawMessage(`{"new_facts":[]}`)
	err := validateResponse(testSchema, raw)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	raw := json.RawMessage(`{"session_summary": `)
	err := validateResponse(testSchema, raw)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema should skip validation, got %v", err)
	}
}

func TestValidateResponse_SchemaCached(t *testing.T) {
	raw := json.RawMessage(`{"session_summary":"s"}`)
	if err := validateResponse(testSchema, raw); err != nil {
		t.Fatalf("first validation: %v", err)
	}
	// Second call hits the cache; behavior must be identical.
	if err := validateResponse(testSchema, raw); err != nil {
		t.Fatalf("cached validation: %v", err)
	}
}

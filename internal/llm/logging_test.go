package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoggingProvider_AppendsOneLinePerCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm_requests.jsonl")
	log := NewFileRequestLog(path)

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`hi`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, log)

	ctx := WithPurpose(context.Background(), "assessment")
	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected provider error to pass through the decorator")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var entries []RequestLogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e RequestLogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("log line is not valid JSON: %v", err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	if !entries[0].Success || entries[0].Purpose != "assessment" || entries[0].InputTokens != 12 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Success || entries[1].ErrorMessage == "" {
		t.Errorf("second entry should record the failure: %+v", entries[1])
	}
}

func TestWithLogging_NilLogPassthrough(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`ok`)})
	p := WithLogging(mock, nil)
	if p != mock {
		t.Error("nil log should return the inner provider unchanged")
	}
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// RequestLogEntry is one durable record of a generation call.
type RequestLogEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Model        string    `json:"model"`
	Purpose      string    `json:"purpose"`
	LatencyMs    int64     `json:"latency_ms"`
	Success      bool      `json:"success"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	StopReason   string    `json:"stop_reason,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
}

// RequestLog records generation calls. Implementations must be safe for
// concurrent use — the background consolidator shares the provider with
// the foreground path.
type RequestLog interface {
	AppendRequest(ctx context.Context, entry RequestLogEntry) error
}

// FileRequestLog appends one JSON line per request to a log file.
type FileRequestLog struct {
	mu   sync.Mutex
	path string
}

// NewFileRequestLog creates a JSONL request log at path.
func NewFileRequestLog(path string) *FileRequestLog {
	return &FileRequestLog{path: path}
}

func (l *FileRequestLog) AppendRequest(_ context.Context, entry RequestLogEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal request log entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open request log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append request log: %w", err)
	}
	return nil
}

// LoggingProvider is a decorator that records every generation call.
type LoggingProvider struct {
	inner Provider
	log   RequestLog
}

// WithLogging wraps a Provider with request logging. A nil log disables
// the decorator.
func WithLogging(p Provider, log RequestLog) Provider {
	if log == nil {
		return p
	}
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	entry := RequestLogEntry{
		Timestamp: start.UTC(),
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}

	if resp != nil {
		entry.Model = resp.Model
		entry.InputTokens = resp.Usage.InputTokens
		entry.OutputTokens = resp.Usage.OutputTokens
		entry.StopReason = resp.StopReason
	}

	if err != nil {
		entry.ErrorMessage = err.Error()
	}

	// Log the call but don't fail the request if logging fails.
	if logErr := l.log.AppendRequest(ctx, entry); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request: %v\n", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

package supplyagent

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// InvocationLogger is the interface for recording agent exchanges.
type InvocationLogger interface {
	LogInvocation(entry InvocationLog) error
}

// NewInvocationLogFilePath returns a file path based on a cleaned up agent
// name to make it easier to identify logs produced against specific agents.
func NewInvocationLogFilePath(agent string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(agent), " ", "_"),
	)
}

// InvocationLog represents a single round trip to a decision service.
type InvocationLog struct {
	Agent     string    `json:"agent"`
	Timestamp time.Time `json:"timestamp"`
	Request   any       `json:"request,omitempty"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileInvocationLogger accumulates entries and flushes them at the end of a
// session.
type FileInvocationLogger struct {
	entries []InvocationLog
	writer  io.Writer
}

func NewFileInvocationLogger(writer io.Writer) *FileInvocationLogger {
	return &FileInvocationLogger{
		entries: make([]InvocationLog, 0),
		writer:  writer,
	}
}

// LogInvocation buffers an entry (does not flush immediately).
func (l *FileInvocationLogger) LogInvocation(entry InvocationLog) error {
	l.entries = append(l.entries, entry)
	return nil
}

// Flush writes all accumulated entries to the writer.
func (l *FileInvocationLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"invocation_session": map[string]any{
			"timestamp":   time.Now(),
			"invocations": l.entries,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal invocation log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write invocation log: %w", err)
	}

	l.entries = l.entries[:0]
	return nil
}

// NoOpInvocationLogger discards all entries.
type NoOpInvocationLogger struct{}

func NewNoOpInvocationLogger() *NoOpInvocationLogger { return &NoOpInvocationLogger{} }

func (NoOpInvocationLogger) LogInvocation(entry InvocationLog) error { return nil }

// StdoutInvocationLogger writes each entry as a JSON line to stdout (for
// Lambda/CloudWatch).
type StdoutInvocationLogger struct{}

func NewStdoutInvocationLogger() *StdoutInvocationLogger { return &StdoutInvocationLogger{} }

func (StdoutInvocationLogger) LogInvocation(entry InvocationLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

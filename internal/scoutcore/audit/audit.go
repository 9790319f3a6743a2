// Package audit implements the append-only JSONL audit log: one JSON
// object per line, written atomically per line, readable via filtered
// tail and range queries.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"scout/internal/logging"
)

// Event is one audit log entry.
type Event struct {
	Timestamp   time.Time      `json:"timestamp"`
	EventType   string         `json:"event_type"`
	Cost        float64        `json:"cost,omitempty"`
	Model       string         `json:"model,omitempty"`
	InputTokens int            `json:"input_tokens,omitempty"`
	OutputTokens int           `json:"output_tokens,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Log is an append-only JSONL audit log at a fixed path.
type Log struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns $repoRoot/.scout/audit.jsonl.
func DefaultPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".scout", "audit.jsonl")
}

// Open returns a Log writing to path, creating parent directories as needed.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return &Log{path: path}, nil
}

// Append writes one event as a single line: the whole JSON object plus a
// newline, or nothing at all. The event's Timestamp is set to now if zero.
func (l *Log) Append(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// readAll loads every well-formed line in the log, skipping and logging any
// line that fails to parse (a partially-written final line after a crash).
func (l *Log) readAll() ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			logging.AuditWarnf("audit: skipping unparseable line: %v", err)
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, err
	}
	return events, nil
}

// LastEvents returns the last n events, optionally filtered to one
// eventType ("" means no filter).
func (l *Log) LastEvents(n int, eventType string) ([]Event, error) {
	events, err := l.readAll()
	if err != nil {
		return nil, err
	}
	if eventType != "" {
		filtered := events[:0:0]
		for _, ev := range events {
			if ev.EventType == eventType {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}
	if n <= 0 || n >= len(events) {
		return events, nil
	}
	return events[len(events)-n:], nil
}

// Query returns every event at or after since.
func (l *Log) Query(since time.Time) ([]Event, error) {
	events, err := l.readAll()
	if err != nil {
		return nil, err
	}
	var result []Event
	for _, ev := range events {
		if !ev.Timestamp.Before(since) {
			result = append(result, ev)
		}
	}
	return result, nil
}

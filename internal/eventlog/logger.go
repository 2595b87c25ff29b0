// Package eventlog provides the session journal for dictate.
// Each recording session appends capture, encode, archive and retention
// events to a single JSON lines file.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event.
type EventType string

// Capture event types.
const (
	CaptureStarted   EventType = "capture_started"
	CapturePaused    EventType = "capture_paused"
	CaptureResumed   EventType = "capture_resumed"
	CaptureStopped   EventType = "capture_stopped"
	CaptureCancelled EventType = "capture_cancelled"
)

// Output event types.
const (
	EncodeCompleted  EventType = "encode_completed"
	EncodeFailed     EventType = "encode_failed"
	ArchiveCompleted EventType = "archive_completed"
	ArchiveFailed    EventType = "archive_failed"
	PruneCompleted   EventType = "prune_completed"
)

// Event represents a single journal entry with type-specific details.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Message   string    `json:"msg,omitempty"`
	Details   any       `json:"details,omitempty"`
}

// CaptureDetails contains capture-specific event details.
type CaptureDetails struct {
	Device        string `json:"device,omitempty"`
	RequestedRate uint32 `json:"requested_rate,omitempty"`
	SampleRate    uint32 `json:"sample_rate,omitempty"`
	Channels      uint32 `json:"channels,omitempty"`
	Samples       int    `json:"samples,omitempty"`
	DurationMs    int64  `json:"duration_ms,omitempty"`
}

// OutputDetails contains encode, archive and retention event details.
type OutputDetails struct {
	Path         string `json:"path,omitempty"`
	Codec        string `json:"codec,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	S3Key        string `json:"s3_key,omitempty"`
	Error        string `json:"error,omitempty"`
	Attempts     int    `json:"attempts,omitempty"`
	FilesDeleted int    `json:"files_deleted,omitempty"`
}

// Logger writes events to a JSON lines file. A nil *Logger discards events.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
	encoder  *json.Encoder
}

// NewLogger creates a new event logger at the specified path.
func NewLogger(filePath string) (*Logger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Logger{
		filePath: filePath,
		file:     file,
		encoder:  json.NewEncoder(file),
	}, nil
}

// Log writes an event to the journal.
func (l *Logger) Log(event *Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return l.encoder.Encode(event)
}

// LogCapture logs a capture event.
func (l *Logger) LogCapture(eventType EventType, sessionID string, details *CaptureDetails) error {
	return l.Log(&Event{
		Type:      eventType,
		SessionID: sessionID,
		Details:   details,
	})
}

// LogOutput logs an encode, archive or retention event.
func (l *Logger) LogOutput(eventType EventType, sessionID string, details *OutputDetails) error {
	return l.Log(&Event{
		Type:      eventType,
		SessionID: sessionID,
		Details:   details,
	})
}

// Close closes the journal file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Path returns the path to the journal file.
func (l *Logger) Path() string {
	return l.filePath
}

// MaxReadLimit is the maximum number of events that can be read at once.
const MaxReadLimit = 500

// ReadLast returns up to n events, newest first. A missing journal yields
// no events. Malformed lines are skipped.
func ReadLast(filePath string, n int) ([]Event, error) {
	n = min(n, MaxReadLimit)
	if n <= 0 {
		return []Event{}, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, nil
		}
		return nil, err
	}
	defer file.Close() //nolint:errcheck // Read-only operation, close error not critical

	// Keep only the newest n lines while scanning.
	ring := make([]string, 0, n)
	next := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if len(ring) < n {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[next] = scanner.Text()
		next = (next + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(ring))
	for i := range ring {
		line := ring[(next+len(ring)-1-i)%len(ring)]
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// IsCaptureEvent returns true if the event type is a capture event.
func IsCaptureEvent(t EventType) bool {
	return t == CaptureStarted || t == CapturePaused || t == CaptureResumed ||
		t == CaptureStopped || t == CaptureCancelled
}

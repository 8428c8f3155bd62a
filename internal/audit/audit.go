// Package audit appends one JSON line per hook lifecycle transition to
// audit.log. Every invocation produces exactly one "started" record and
// exactly one terminal record. The file rotates by size with numbered
// suffixes: audit.log.1 is the most recent rotation, audit.log.5 the
// oldest retained.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// FileName is the active audit file inside the audit directory.
	FileName = "audit.log"

	// DefaultMaxBytes is the rotation threshold.
	DefaultMaxBytes = 10 << 20

	// maxBackups is how many rotated files are retained.
	maxBackups = 5
)

// StatusStarted marks the begin-of-invocation record. Terminal records
// carry one of the four hook result statuses instead.
const StatusStarted = "started"

// Record is a single write-once audit line.
type Record struct {
	Timestamp       time.Time `json:"timestamp"`
	EventID         string    `json:"event_id"`
	Hook            string    `json:"hook"`
	Status          string    `json:"status"`
	ExitCode        *int      `json:"exit_code,omitempty"`
	DurationMs      int64     `json:"duration_ms,omitempty"`
	PID             int       `json:"pid,omitempty"`
	StdoutLineCount int       `json:"stdout_line_count,omitempty"`
	StderrLineCount int       `json:"stderr_line_count,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// Handle ties a terminal record to its started record.
type Handle struct {
	EventID string
	Hook    string
}

// TerminalInfo carries the terminal-only fields of a record.
type TerminalInfo struct {
	Status          string
	ExitCode        *int
	DurationMs      int64
	PID             int
	StdoutLineCount int
	StderrLineCount int
	Error           string
}

// Logger appends audit records. Writes are serialized by a mutex; the
// v1 engine is single-threaded, the lock just keeps the append/rotate
// pair atomic if that ever changes.
type Logger struct {
	mu       sync.Mutex
	dir      string
	maxBytes int64
}

// New creates a logger writing to dir/audit.log, creating dir if needed.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &Logger{dir: dir, maxBytes: DefaultMaxBytes}, nil
}

// Path returns the active audit file path.
func (l *Logger) Path() string {
	return filepath.Join(l.dir, FileName)
}

// SetMaxBytes overrides the rotation threshold. Intended for tests.
func (l *Logger) SetMaxBytes(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxBytes = n
}

// Started appends the begin-of-invocation record and returns the handle
// the terminal record must be written against.
func (l *Logger) Started(eventID, hook string) (Handle, error) {
	h := Handle{EventID: eventID, Hook: hook}
	err := l.append(Record{
		Timestamp: time.Now().UTC(),
		EventID:   eventID,
		Hook:      hook,
		Status:    StatusStarted,
	})
	return h, err
}

// Terminal appends the end-of-invocation record for the given handle.
func (l *Logger) Terminal(h Handle, info TerminalInfo) error {
	return l.append(Record{
		Timestamp:       time.Now().UTC(),
		EventID:         h.EventID,
		Hook:            h.Hook,
		Status:          info.Status,
		ExitCode:        info.ExitCode,
		DurationMs:      info.DurationMs,
		PID:             info.PID,
		StdoutLineCount: info.StdoutLineCount,
		StderrLineCount: info.StderrLineCount,
		Error:           info.Error,
	})
}

func (l *Logger) append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// rotateIfNeeded rotates when the active file exceeds the threshold:
// audit.log.4 -> .5 (dropping any existing .5), ..., audit.log -> .1.
func (l *Logger) rotateIfNeeded() error {
	info, err := os.Stat(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() <= l.maxBytes {
		return nil
	}

	for i := maxBackups - 1; i >= 1; i-- {
		from := l.backupPath(i)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, l.backupPath(i+1)); err != nil {
			return fmt.Errorf("rotate audit log: %w", err)
		}
	}
	if err := os.Rename(l.Path(), l.backupPath(1)); err != nil {
		return fmt.Errorf("rotate audit log: %w", err)
	}
	return nil
}

func (l *Logger) backupPath(i int) string {
	return fmt.Sprintf("%s.%d", l.Path(), i)
}

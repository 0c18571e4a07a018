// Package history persists completed analyses: an ordered log file plus one
// snapshot file per request.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ErrNoHistory is returned when the log file does not exist yet.
var ErrNoHistory = errors.New("no history found")

// ErrLogClosed is returned when operations are attempted on a stopped log.
var ErrLogClosed = errors.New("history log closed")

// Entry is one immutable analysis record. ExternalID is nil unless the
// external document store accepted a copy of the analysis.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	ImageURL   string    `json:"imageUrl"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	ExternalID *string   `json:"externalId"`
}

// opKind selects the mutation a queued op performs.
type opKind int

const (
	opAppend opKind = iota
	opSetExternalID
)

type op struct {
	kind       opKind
	entry      Entry
	timestamp  time.Time
	externalID string
	result     chan<- error
}

// Log is the ordered history log. All file mutations flow through a single
// writer goroutine, so two concurrent appends can never lose each other's
// entry the way racing read-modify-write callers would.
type Log struct {
	path   string
	logger *slog.Logger

	queue chan op

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	mu     sync.RWMutex
	closed bool
}

// Config configures a Log.
type Config struct {
	Path      string
	QueueSize int // Buffer size (default: 64)
	Logger    *slog.Logger
}

// NewLog creates a history log backed by the given file.
func NewLog(cfg Config) *Log {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Log{
		path:   cfg.Path,
		logger: cfg.Logger,
		queue:  make(chan op, cfg.QueueSize),
		done:   make(chan struct{}),
	}
}

// Path returns the backing file path.
func (l *Log) Path() string {
	return l.path
}

// Start launches the writer goroutine.
func (l *Log) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		ctx, l.cancel = context.WithCancel(ctx)
		go l.run(ctx)
	})
}

// Stop drains pending operations and stops the writer.
func (l *Log) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()

		close(l.queue)
		<-l.done
		if l.cancel != nil {
			l.cancel()
		}
	})
}

// Append adds one entry to the end of the log. It blocks until the writer
// has persisted the entry.
func (l *Log) Append(entry Entry) error {
	return l.submit(op{kind: opAppend, entry: entry})
}

// SetExternalID merges a store-assigned id into the entry with the given
// timestamp. The update is best-effort: an entry that is not found (e.g. a
// trimmed log) is reported as an error but has no other effect.
func (l *Log) SetExternalID(timestamp time.Time, externalID string) error {
	return l.submit(op{kind: opSetExternalID, timestamp: timestamp, externalID: externalID})
}

func (l *Log) submit(o op) error {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrLogClosed
	}
	result := make(chan error, 1)
	o.result = result
	l.queue <- o
	l.mu.RUnlock()

	return <-result
}

// List returns every entry in order. A missing file is ErrNoHistory.
func (l *Log) List() ([]Entry, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history log: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history log: %w", err)
	}
	return entries, nil
}

// run is the single writer. It applies queued ops one at a time until the
// queue is closed, so every op sees the previous op's write.
func (l *Log) run(ctx context.Context) {
	defer close(l.done)

	for o := range l.queue {
		if err := ctx.Err(); err != nil {
			o.result <- err
			continue
		}
		o.result <- l.apply(o)
	}
}

func (l *Log) apply(o op) error {
	entries, err := l.List()
	if errors.Is(err, ErrNoHistory) {
		entries = []Entry{}
	} else if err != nil {
		return err
	}

	switch o.kind {
	case opAppend:
		entries = append(entries, o.entry)
	case opSetExternalID:
		idx := -1
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].Timestamp.Equal(o.timestamp) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("no history entry at %s to update", o.timestamp.Format(time.RFC3339Nano))
		}
		id := o.externalID
		entries[idx].ExternalID = &id
	default:
		return fmt.Errorf("unknown history op %d", o.kind)
	}

	return l.write(entries)
}

func (l *Log) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history log: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace history log: %w", err)
	}
	return nil
}

// Package transcript appends completed command/response pairs to a log file.
//
// Transcripts are observability, not correctness: a FileReporter never returns
// an error to its caller. Write faults are logged and counted instead.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/status-im/rest-executor/logger"
	"github.com/status-im/rest-executor/models"
)

const DefaultPath = "trans.log"

// Format selects how entries are rendered
type Format string

const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
)

// ParseFormat converts a format name to a Format
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSONL:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid transcript format '%s': must be one of 'text', 'jsonl'", s)
	}
}

// Reporter receives every completed command
type Reporter interface {
	Report(entry models.TranscriptEntry)
}

// WriteRecorder counts transcript appends
type WriteRecorder interface {
	RecordTranscriptWrite(status string)
}

type noopWriteRecorder struct{}

func (noopWriteRecorder) RecordTranscriptWrite(string) {}

// NoopReporter discards every entry
type NoopReporter struct{}

func (NoopReporter) Report(models.TranscriptEntry) {}

// Ensure FileReporter implements Reporter
var _ Reporter = (*FileReporter)(nil)

// FileReporter appends entries to a file when enabled
type FileReporter struct {
	mu      sync.Mutex
	enabled bool
	path    string
	format  Format
	logger  logger.Logger
	metrics WriteRecorder
}

type Option func(*FileReporter)

func WithEnabled(enabled bool) Option {
	return func(r *FileReporter) {
		r.enabled = enabled
	}
}

func WithPath(path string) Option {
	return func(r *FileReporter) {
		r.path = path
	}
}

func WithFormat(format Format) Option {
	return func(r *FileReporter) {
		r.format = format
	}
}

func WithLogger(l logger.Logger) Option {
	return func(r *FileReporter) {
		r.logger = l
	}
}

func WithMetrics(m WriteRecorder) Option {
	return func(r *FileReporter) {
		r.metrics = m
	}
}

// NewFileReporter creates a reporter that is disabled and points at trans.log
// unless configured otherwise
func NewFileReporter(opts ...Option) *FileReporter {
	r := &FileReporter{
		path:    DefaultPath,
		format:  FormatText,
		logger:  logger.NoopLogger{},
		metrics: noopWriteRecorder{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *FileReporter) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

func (r *FileReporter) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

func (r *FileReporter) SetPath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

func (r *FileReporter) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Report appends one block for entry. It is a no-op unless the reporter is
// enabled and has a non-empty path.
func (r *FileReporter) Report(entry models.TranscriptEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled || r.path == "" {
		return
	}

	block, err := r.render(entry)
	if err != nil {
		r.logger.Warn("Failed to render transcript entry", "path", r.path, "error", err)
		r.metrics.RecordTranscriptWrite("error")
		return
	}

	if err := appendToFile(r.path, block); err != nil {
		r.logger.Warn("Failed to append transcript entry", "path", r.path, "error", err)
		r.metrics.RecordTranscriptWrite("error")
		return
	}

	r.metrics.RecordTranscriptWrite("success")
}

func (r *FileReporter) render(entry models.TranscriptEntry) ([]byte, error) {
	if r.format == FormatJSONL {
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return []byte(entry.Text()), nil
}

func appendToFile(path string, block []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if _, err := f.Write(block); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

type multiReporter []Reporter

func (m multiReporter) Report(entry models.TranscriptEntry) {
	for _, r := range m {
		r.Report(entry)
	}
}

// Multi fans an entry out to every non-nil reporter in order
func Multi(reporters ...Reporter) Reporter {
	var out multiReporter
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}

	if len(out) == 1 {
		return out[0]
	}
	return out
}

// ReadEntries parses a jsonl transcript. Blank lines are skipped.
func ReadEntries(rd io.Reader) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var entry models.TranscriptEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse transcript line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	return entries, nil
}

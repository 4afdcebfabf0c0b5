package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/rest-executor/models"
)

type countingRecorder struct {
	mu       sync.Mutex
	statuses []string
}

func (c *countingRecorder) RecordTranscriptWrite(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, status)
}

type captureLogger struct {
	warnings []string
}

func (c *captureLogger) Debug(string, ...any) {}
func (c *captureLogger) Info(string, ...any)  {}
func (c *captureLogger) Warn(msg string, _ ...any) {
	c.warnings = append(c.warnings, msg)
}
func (c *captureLogger) Error(string, ...any) {}

func testEntry(output string) models.TranscriptEntry {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return models.NewTranscriptEntry(at, "https://x.test/foo", models.MethodPost, `{"q":1}`, output)
}

func TestNewFileReporter_Defaults(t *testing.T) {
	r := NewFileReporter()

	assert.False(t, r.Enabled())
	assert.Equal(t, "trans.log", r.Path())
}

func TestFileReporter_DisabledNeverTouchesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trans.log")
	r := NewFileReporter(WithPath(path))

	r.Report(testEntry("ok"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "expected file to be absent, got %v", err)
}

func TestFileReporter_EmptyPathIsNoop(t *testing.T) {
	metrics := &countingRecorder{}
	r := NewFileReporter(WithEnabled(true), WithPath(""), WithMetrics(metrics))

	r.Report(testEntry("ok"))

	assert.Empty(t, metrics.statuses)
}

func TestFileReporter_AppendsTextBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trans.log")
	metrics := &countingRecorder{}
	r := NewFileReporter(WithEnabled(true), WithPath(path), WithMetrics(metrics))

	first := testEntry(`{"ok":true}`)
	second := testEntry("second")
	r.Report(first)
	r.Report(second)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first.Text()+second.Text(), string(data))
	assert.Equal(t, 2, strings.Count(string(data), "input:\r\n"))
	assert.Contains(t, string(data), "   command: https://x.test/foo")
	assert.Contains(t, string(data), "   method:POST")
	assert.Contains(t, string(data), `   data:{"q":1}`)
	assert.Equal(t, []string{"success", "success"}, metrics.statuses)
}

func TestFileReporter_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trans.log")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0644))

	r := NewFileReporter(WithEnabled(true), WithPath(path))
	r.Report(testEntry("ok"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous\n"))
}

func TestFileReporter_JSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trans.jsonl")
	r := NewFileReporter(WithEnabled(true), WithPath(path), WithFormat(FormatJSONL))

	r.Report(testEntry("one"))
	r.Report(testEntry("two"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	entries, err := ReadEntries(f)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Output)
	assert.Equal(t, "two", entries[1].Output)
	assert.Equal(t, models.MethodPost, entries[1].Method)
	assert.Equal(t, "https://x.test/foo", entries[1].Command)
}

func TestFileReporter_WriteFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	metrics := &countingRecorder{}
	log := &captureLogger{}
	// A directory cannot be opened for appending
	r := NewFileReporter(WithEnabled(true), WithPath(dir), WithMetrics(metrics), WithLogger(log))

	assert.NotPanics(t, func() {
		r.Report(testEntry("ok"))
	})
	assert.Equal(t, []string{"error"}, metrics.statuses)
	assert.Len(t, log.warnings, 1)
}

func TestFileReporter_Setters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.log")
	r := NewFileReporter()

	r.SetPath(path)
	r.SetEnabled(true)
	assert.True(t, r.Enabled())
	assert.Equal(t, path, r.Path())

	r.Report(testEntry("ok"))
	_, err := os.Stat(path)
	assert.NoError(t, err)

	r.SetEnabled(false)
	r.Report(testEntry("ignored"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ignored")
}

func TestFileReporter_ConcurrentReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trans.log")
	r := NewFileReporter(WithEnabled(true), WithPath(path))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(testEntry("ok"))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 20, strings.Count(string(data), "output:\r\nok\r\n\r\n"))
}

type sliceReporter struct {
	entries []models.TranscriptEntry
}

func (s *sliceReporter) Report(e models.TranscriptEntry) {
	s.entries = append(s.entries, e)
}

func TestMulti(t *testing.T) {
	a := &sliceReporter{}
	b := &sliceReporter{}

	m := Multi(a, nil, b)
	m.Report(testEntry("ok"))

	assert.Len(t, a.entries, 1)
	assert.Len(t, b.entries, 1)

	single := Multi(nil, a)
	assert.Same(t, a, single)

	// empty fan-out should not panic
	Multi().Report(testEntry("ok"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("jsonl")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestReadEntries_Errors(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = ReadEntries(strings.NewReader("{\"output\":\"ok\"}\nnot json\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

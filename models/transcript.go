package models

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the timestamp format used in text transcript blocks
const TimestampLayout = "2006-01-02 15:04:05"

// TranscriptEntry records one completed command and the body it returned.
// Entries are append-only and never modified after being reported.
type TranscriptEntry struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"` // fully qualified target URL
	Method    Method    `json:"method"`
	Data      string    `json:"data,omitempty"`
	Output    string    `json:"output"`
}

// NewTranscriptEntry creates an entry stamped with a fresh ID and the given time
func NewTranscriptEntry(at time.Time, command string, method Method, data, output string) TranscriptEntry {
	return TranscriptEntry{
		ID:        uuid.New(),
		Timestamp: at,
		Command:   command,
		Method:    method,
		Data:      data,
		Output:    output,
	}
}

// Input describes the request side of the entry
func (e TranscriptEntry) Input() string {
	return "   command: " + e.Command + "\r\n   method:" + e.Method.String() + "\r\n   data:" + e.Data
}

// Text renders the entry as a human-readable transcript block
func (e TranscriptEntry) Text() string {
	text := "[" + e.Timestamp.Format(TimestampLayout) + "]\r\n"
	text += "input:\r\n" + e.Input() + "\r\n"
	text += "output:\r\n" + e.Output + "\r\n\r\n"
	return text
}

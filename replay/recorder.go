package replay

import (
	"context"

	"github.com/status-im/rest-executor/logger"
	"github.com/status-im/rest-executor/models"
	"github.com/status-im/rest-executor/transcript"
)

// Ensure Recorder implements transcript.Reporter
var _ transcript.Reporter = (*Recorder)(nil)

// Recorder stores the output of every successful command so a Transport
// can serve it later
type Recorder struct {
	store  Store
	logger logger.Logger
}

// NewRecorder creates a Recorder writing into store
func NewRecorder(store Store, l logger.Logger) *Recorder {
	if l == nil {
		l = logger.NoopLogger{}
	}
	return &Recorder{store: store, logger: l}
}

// Report records entry.Output under the key of the request that produced it
func (r *Recorder) Report(entry models.TranscriptEntry) {
	key := Key(entry.Method, entry.Command, entry.Data)
	r.store.Put(context.Background(), key, entry.Output)
	r.logger.Debug("Recorded response", "key", key, "url", entry.Command, "bytes", len(entry.Output))
}

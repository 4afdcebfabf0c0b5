package replay

import (
	"context"
	"fmt"
	"io"

	"github.com/status-im/rest-executor/transcript"
)

// LoadTranscript seeds store with every entry of a jsonl transcript and
// returns the number of entries loaded
func LoadTranscript(ctx context.Context, store Store, r io.Reader) (int, error) {
	entries, err := transcript.ReadEntries(r)
	if err != nil {
		return 0, fmt.Errorf("failed to load transcript: %w", err)
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		store.Put(ctx, Key(entry.Method, entry.Command, entry.Data), entry.Output)
	}

	return len(entries), nil
}

package models

import (
	"fmt"
	"time"
)

// ReplayLevel names the store tier a recorded response was found in
type ReplayLevel string

const (
	ReplayLevelL1   ReplayLevel = "L1"
	ReplayLevelL2   ReplayLevel = "L2"
	ReplayLevelMiss ReplayLevel = "MISS"
)

func (rl ReplayLevel) String() string {
	return string(rl)
}

// ReplayLevelFromIndex maps a tier index to its level.
// Index 0 is L1, index 1 is L2, higher indices give L3, L4, etc.
// Negative indices fall back to L1.
func ReplayLevelFromIndex(index int) ReplayLevel {
	if index < 0 {
		return ReplayLevelL1
	}

	switch index {
	case 0:
		return ReplayLevelL1
	case 1:
		return ReplayLevelL2
	default:
		return ReplayLevel(fmt.Sprintf("L%d", index+1))
	}
}

// ReplayRecord is a recorded response body as kept by a replay store
type ReplayRecord struct {
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"` // 0 never expires
}

// NewReplayRecord creates a record created at now that lives for ttl.
// A non-positive ttl keeps the record forever.
func NewReplayRecord(body string, now time.Time, ttl time.Duration) ReplayRecord {
	rec := ReplayRecord{
		Body:      body,
		CreatedAt: now.Unix(),
	}
	if ttl > 0 {
		rec.ExpiresAt = now.Add(ttl).Unix()
	}
	return rec
}

// IsExpired reports whether the record is past its lifetime at now
func (r *ReplayRecord) IsExpired(now time.Time) bool {
	return r.ExpiresAt != 0 && now.Unix() > r.ExpiresAt
}

// ReplayResult is the outcome of a tiered lookup
type ReplayResult struct {
	Body  string      `json:"body,omitempty"`
	Found bool        `json:"found"`
	Level ReplayLevel `json:"level"`
}

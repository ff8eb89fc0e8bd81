// Package domain holds the turn log record and ports.
// Each record is one (utterance, understanding, action, outcome) tuple; an
// offline learning loop consumes them, the core only emits
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one logged turn
type Record struct {
	TurnID     uuid.UUID
	SessionID  string
	CreatedAt  time.Time
	RawText    string
	Lang       string
	Intent     string
	Confidence float64
	Entities   []byte // jsonb
	Polarity   float64
	Magnitude  float64
	ActionKind string
	Action     []byte // jsonb
	Outcome    string // "ok" | "skill_failed" | "escalated"
}

// WriterPort appends records; implementations must be safe for concurrent use
type WriterPort interface {
	Write(ctx context.Context, rec Record) error
}

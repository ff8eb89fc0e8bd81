// Package domain holds the assistant turn types and ports
package domain

import (
	"context"
	"time"

	sdom "vassist/internal/services/sessions/domain"
)

// TurnInput is the front-end-agnostic turn triple: any transport (voice,
// chat, REST) reduces to this
type TurnInput struct {
	SessionID string    // empty means "start a new conversation"
	Text      string    // raw utterance
	Locale    string    // optional BCP-47 hint for casing rules
	At        time.Time // zero means "now"
}

// TurnOutput is one completed turn as the response generator consumes it
type TurnOutput struct {
	SessionID string             `json:"session_id"`
	Reply     string             `json:"reply"`
	Action    sdom.SystemAction  `json:"action"`
	State     sdom.DialogueState `json:"state"`
	NLU       sdom.NLUResult     `json:"nlu"`
}

// TurnPort runs one full utterance-in action-out cycle
type TurnPort interface {
	Turn(ctx context.Context, in TurnInput) (TurnOutput, error)
}

// Package domain holds the dialogue manager types and ports
package domain

import (
	sdom "vassist/internal/services/sessions/domain"
)

// Policy picks what happens when a confident unrelated intent arrives while a
// clarification is pending
type Policy string

const (
	// PolicyAbandon drops the pending task and handles the new intent
	PolicyAbandon Policy = "abandon"
	// PolicyStack parks the pending task and resumes it after the new one resolves
	PolicyStack Policy = "stack"
)

// Input is everything the decision function may read for one turn
type Input struct {
	State      sdom.DialogueState
	Pending    map[string]string // slots filled so far for the pending task
	NLU        sdom.NLUResult
	Normalized string // used to fill free-text slots during clarification
}

// Decision is the transition outcome; the caller commits it to the session.
// Abandoned carries the reason when the interruption policy dropped a task
type Decision struct {
	NextState   sdom.DialogueState
	NextPending map[string]string
	Action      sdom.SystemAction
	Abandoned   string
}

// DeciderPort is the seam the orchestrator drives
type DeciderPort interface {
	Decide(in Input) Decision
}

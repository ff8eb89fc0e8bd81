// Package domain holds the session types shared across the assistant services
package domain

import (
	"time"

	"vassist/internal/core/entity"
)

// Utterance is one immutable user input
type Utterance struct {
	SessionID  string    `json:"session_id"`
	Raw        string    `json:"raw"`
	Normalized string    `json:"normalized"`
	Lang       string    `json:"lang"`
	At         time.Time `json:"at"`
}

// NLUResult is the joined output of the understanding pipeline for one utterance.
// Produced fresh per turn and never mutated after creation
type NLUResult struct {
	Intent     string          `json:"intent"`
	Confidence float64         `json:"confidence"`
	Entities   []entity.Entity `json:"entities,omitempty"`
	Polarity   float64         `json:"polarity"`
	Magnitude  float64         `json:"magnitude"`
}

// ActionKind enumerates the dialogue manager outputs
type ActionKind string

const (
	ActionDispatch         ActionKind = "dispatch"
	ActionAskClarification ActionKind = "ask_clarification"
	ActionRespond          ActionKind = "respond"
	ActionEscalate         ActionKind = "escalate"
)

// SystemAction is the dialogue manager's decision for one turn
type SystemAction struct {
	Kind ActionKind `json:"kind"`

	// Dispatch
	Skill string            `json:"skill,omitempty"`
	Slots map[string]string `json:"slots,omitempty"`

	// AskClarification
	MissingSlot string `json:"missing_slot,omitempty"`
	Prompt      string `json:"prompt,omitempty"`

	// Respond
	Message string `json:"message,omitempty"`

	// Escalate
	Reason string `json:"reason,omitempty"`
}

// Turn is one completed utterance-in action-out cycle
type Turn struct {
	Utterance Utterance    `json:"utterance"`
	NLU       NLUResult    `json:"nlu"`
	Action    SystemAction `json:"action"`
}

// StateKind enumerates the dialogue machine states
type StateKind string

const (
	StateIdle                  StateKind = "idle"
	StateAwaitingClarification StateKind = "awaiting_clarification"
	StateTaskInProgress        StateKind = "task_in_progress"
	StateDispatching           StateKind = "dispatching"
	StateError                 StateKind = "error"
)

// StackedTask is a clarification snapshot parked by the stack interruption policy
type StackedTask struct {
	Intent      string            `json:"intent"`
	MissingSlot string            `json:"missing_slot"`
	Filled      map[string]string `json:"filled,omitempty"`
}

// DialogueState is the machine position for a session.
// Task and MissingSlot are meaningful for the clarification and in-progress states
type DialogueState struct {
	Kind        StateKind    `json:"kind"`
	Task        string       `json:"task,omitempty"`
	MissingSlot string       `json:"missing_slot,omitempty"`
	Stacked     *StackedTask `json:"stacked,omitempty"`
}

// Session is the mutable per-conversation record. It is owned by the session
// store; other components receive copies for the duration of one turn and must
// not retain them across turns
type Session struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	LastSeen     time.Time         `json:"last_seen"`
	History      []Turn            `json:"history,omitempty"`
	PendingSlots map[string]string `json:"pending_slots,omitempty"`
	State        DialogueState     `json:"state"`
}

// Clone returns a deep copy so callers can mutate without aliasing the stored record
func (s *Session) Clone() *Session {
	out := *s
	if s.History != nil {
		out.History = make([]Turn, len(s.History))
		copy(out.History, s.History)
	}
	out.PendingSlots = cloneMap(s.PendingSlots)
	if s.State.Stacked != nil {
		st := *s.State.Stacked
		st.Filled = cloneMap(s.State.Stacked.Filled)
		out.State.Stacked = &st
	}
	return &out
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

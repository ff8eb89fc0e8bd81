// Package service implements the dialogue state machine as a pure decision
// function over the compiled skill pack. The orchestrator commits decisions
// to the session under its lock, so Decide itself never touches shared state
package service

import (
	"vassist/internal/core/entity"
	"vassist/internal/core/skillpack"
	"vassist/internal/services/dialogue/domain"
	sdom "vassist/internal/services/sessions/domain"
)

// Options tunes the machine
type Options struct {
	MinConfidence float64       // below this an intent never dispatches
	Policy        domain.Policy // interruption handling during clarification
	Fallback      string        // respond text for low-confidence turns
}

// Service is stateless; every call sees only its Input
type Service struct {
	pack *skillpack.Pack
	opts Options
}

// New constructs the dialogue service
func New(pack *skillpack.Pack, opts Options) *Service {
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = 0.7
	}
	if opts.Policy == "" {
		opts.Policy = domain.PolicyAbandon
	}
	if opts.Fallback == "" {
		opts.Fallback = "Sorry, I didn't catch that. Could you rephrase?"
	}
	return &Service{pack: pack, opts: opts}
}

// Decide runs one transition
func (s *Service) Decide(in domain.Input) domain.Decision {
	clarifying := in.State.Kind == sdom.StateAwaitingClarification ||
		in.State.Kind == sdom.StateTaskInProgress
	if clarifying && in.State.MissingSlot != "" {
		return s.decideClarifying(in)
	}
	// Error resets on the next turn; Dispatching and a slot-complete
	// TaskInProgress are fresh turns too
	return s.decideFresh(in)
}

// decideClarifying handles a turn while a slot question is outstanding
func (s *Service) decideClarifying(in domain.Input) domain.Decision {
	task := in.State.Task
	slot := s.slotSchema(task, in.State.MissingSlot)

	// entity fill wins regardless of what the classifier thought: "tomorrow at
	// 5pm" classifies as UNKNOWN but plainly answers a datetime question
	if slot != nil {
		byType := entitiesByType(in.NLU.Entities)
		switch cands := byType[slot.Type]; len(cands) {
		case 0:
			if isFreeText(slot.Type) && in.NLU.Confidence < s.opts.MinConfidence && in.Normalized != "" {
				return s.advanceTask(in, task, slot.Name, in.Normalized)
			}
		case 1:
			return s.advanceTask(in, task, slot.Name, cands[0].Value)
		default:
			// ambiguous fill: ask again rather than guess
			return domain.Decision{
				NextState:   in.State,
				NextPending: in.Pending,
				Action: sdom.SystemAction{
					Kind:        sdom.ActionAskClarification,
					MissingSlot: slot.Name,
					Prompt:      s.pack.Prompt(task, slot.Name),
				},
			}
		}
	}

	// the utterance did not address the missing slot
	if in.NLU.Confidence >= s.opts.MinConfidence {
		// confident unrelated intent: apply the interruption policy
		if s.opts.Policy == domain.PolicyStack {
			d := s.decideFresh(in)
			stacked := &sdom.StackedTask{
				Intent:      task,
				MissingSlot: in.State.MissingSlot,
				Filled:      in.Pending,
			}
			d.NextState.Stacked = stacked
			return d
		}
		d := s.decideFresh(in)
		d.Abandoned = "clarification for " + task + " abandoned by new intent " + in.NLU.Intent
		return d
	}

	// low confidence and no usable fill: repeat the question
	return domain.Decision{
		NextState:   in.State,
		NextPending: in.Pending,
		Action: sdom.SystemAction{
			Kind:        sdom.ActionAskClarification,
			MissingSlot: in.State.MissingSlot,
			Prompt:      s.pack.Prompt(task, in.State.MissingSlot),
		},
	}
}

// decideFresh handles a turn with no outstanding clarification
func (s *Service) decideFresh(in domain.Input) domain.Decision {
	if in.NLU.Intent == skillpack.UnknownIntent || in.NLU.Confidence < s.opts.MinConfidence {
		return domain.Decision{
			NextState: sdom.DialogueState{Kind: sdom.StateIdle},
			Action:    sdom.SystemAction{Kind: sdom.ActionRespond, Message: s.opts.Fallback},
		}
	}

	schema := s.pack.ByName(in.NLU.Intent)
	if schema == nil {
		return domain.Decision{
			NextState: sdom.DialogueState{Kind: sdom.StateIdle},
			Action:    sdom.SystemAction{Kind: sdom.ActionEscalate, Reason: "intent " + in.NLU.Intent + " has no schema"},
		}
	}

	filled := map[string]string{}
	byType := entitiesByType(in.NLU.Entities)
	var conflictSlot *skillpack.Slot
	for i := range schema.Slots {
		sl := &schema.Slots[i]
		switch cands := byType[sl.Type]; len(cands) {
		case 0:
		case 1:
			filled[sl.Name] = cands[0].Value
		default:
			if conflictSlot == nil {
				conflictSlot = sl
			}
		}
	}
	if conflictSlot != nil && conflictSlot.Required {
		// ambiguous entity mapping surfaces as a clarification, not a failure
		return domain.Decision{
			NextState: sdom.DialogueState{
				Kind:        sdom.StateAwaitingClarification,
				Task:        schema.Name,
				MissingSlot: conflictSlot.Name,
				Stacked:     in.State.Stacked,
			},
			NextPending: filled,
			Action: sdom.SystemAction{
				Kind:        sdom.ActionAskClarification,
				MissingSlot: conflictSlot.Name,
				Prompt:      s.pack.Prompt(schema.Name, conflictSlot.Name),
			},
		}
	}

	return s.conclude(in, schema.Name, filled)
}

// advanceTask merges a clarification fill and re-evaluates the pending task
func (s *Service) advanceTask(in domain.Input, task, slotName, value string) domain.Decision {
	merged := make(map[string]string, len(in.Pending)+1)
	for k, v := range in.Pending {
		merged[k] = v
	}
	merged[slotName] = value
	return s.conclude(in, task, merged)
}

// conclude dispatches when every required slot is filled, otherwise asks for
// the first missing one in schema order
func (s *Service) conclude(in domain.Input, task string, filled map[string]string) domain.Decision {
	var missing string
	for _, name := range s.pack.RequiredSlots(task) {
		if _, ok := filled[name]; !ok {
			missing = name
			break
		}
	}
	if missing != "" {
		// a task with some slots already filled is underway; a bare one is a
		// plain clarification
		kind := sdom.StateAwaitingClarification
		if len(filled) > 0 {
			kind = sdom.StateTaskInProgress
		}
		return domain.Decision{
			NextState: sdom.DialogueState{
				Kind:        kind,
				Task:        task,
				MissingSlot: missing,
				Stacked:     in.State.Stacked,
			},
			NextPending: filled,
			Action: sdom.SystemAction{
				Kind:        sdom.ActionAskClarification,
				MissingSlot: missing,
				Prompt:      s.pack.Prompt(task, missing),
			},
		}
	}

	schema := s.pack.ByName(task)
	skill := ""
	if schema != nil {
		skill = schema.Skill
	}
	return domain.Decision{
		NextState: sdom.DialogueState{
			Kind:    sdom.StateDispatching,
			Task:    task,
			Stacked: in.State.Stacked,
		},
		Action: sdom.SystemAction{
			Kind:  sdom.ActionDispatch,
			Skill: skill,
			Slots: filled,
		},
	}
}

func (s *Service) slotSchema(task, slotName string) *skillpack.Slot {
	in := s.pack.ByName(task)
	if in == nil {
		return nil
	}
	for i := range in.Slots {
		if in.Slots[i].Name == slotName {
			return &in.Slots[i]
		}
	}
	return nil
}

func isFreeText(t skillpack.SlotType) bool {
	return t == skillpack.SlotMessage || t == skillpack.SlotQuery
}

func entitiesByType(ents []entity.Entity) map[skillpack.SlotType][]entity.Entity {
	out := make(map[skillpack.SlotType][]entity.Entity, len(ents))
	for _, e := range ents {
		out[e.Type] = append(out[e.Type], e)
	}
	return out
}

package service

import (
	"testing"
	"time"

	"vassist/internal/core/entity"
	"vassist/internal/core/skillpack"
	"vassist/internal/services/dialogue/domain"
	sdom "vassist/internal/services/sessions/domain"
)

func newSvc(t *testing.T, policy domain.Policy) *Service {
	t.Helper()
	p, err := skillpack.Load()
	if err != nil {
		t.Fatalf("skillpack.Load: %v", err)
	}
	return New(p, Options{MinConfidence: 0.7, Policy: policy})
}

func ent(typ skillpack.SlotType, value string) entity.Entity {
	return entity.Entity{Type: typ, Value: value, Confidence: 0.9}
}

func idle() sdom.DialogueState { return sdom.DialogueState{Kind: sdom.StateIdle} }

func TestDecide_AllSlotsPresentDispatches(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)
	tomorrow := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC).Format(time.RFC3339)

	d := s.Decide(domain.Input{
		State: idle(),
		NLU: sdom.NLUResult{
			Intent:     "set_reminder",
			Confidence: 0.95,
			Entities: []entity.Entity{
				ent(skillpack.SlotMessage, "call mom"),
				ent(skillpack.SlotDatetime, tomorrow),
			},
		},
		Normalized: "remind me to call mom tomorrow at 5pm",
	})

	if d.Action.Kind != sdom.ActionDispatch {
		t.Fatalf("action = %+v, want dispatch", d.Action)
	}
	if d.Action.Skill != "reminder_manager" {
		t.Fatalf("skill = %q", d.Action.Skill)
	}
	if d.Action.Slots["message"] != "call mom" || d.Action.Slots["datetime"] != tomorrow {
		t.Fatalf("slots = %v", d.Action.Slots)
	}
	if len(d.Action.Slots) != 2 {
		t.Fatalf("dispatch carries extra slots: %v", d.Action.Slots)
	}
	if d.NextState.Kind != sdom.StateDispatching {
		t.Fatalf("next state = %q, want dispatching", d.NextState.Kind)
	}
}

func TestDecide_MissingSlotAsksClarification(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)

	d := s.Decide(domain.Input{
		State:      idle(),
		NLU:        sdom.NLUResult{Intent: "set_reminder", Confidence: 0.95},
		Normalized: "remind me",
	})

	if d.Action.Kind != sdom.ActionAskClarification {
		t.Fatalf("action = %+v, want clarification", d.Action)
	}
	// first missing slot in declared schema order
	if d.Action.MissingSlot != "datetime" {
		t.Fatalf("missing slot = %q, want datetime", d.Action.MissingSlot)
	}
	if d.Action.Prompt == "" {
		t.Fatal("clarification without a prompt")
	}
	if d.NextState.Kind != sdom.StateAwaitingClarification || d.NextState.Task != "set_reminder" {
		t.Fatalf("next state = %+v", d.NextState)
	}
}

func TestDecide_ClarificationFillCompletesTask(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)
	dt := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC).Format(time.RFC3339)

	d := s.Decide(domain.Input{
		State: sdom.DialogueState{
			Kind:        sdom.StateAwaitingClarification,
			Task:        "set_reminder",
			MissingSlot: "datetime",
		},
		Pending: map[string]string{"message": "call mom"},
		NLU: sdom.NLUResult{
			Intent:     skillpack.UnknownIntent,
			Confidence: 0,
			Entities:   []entity.Entity{ent(skillpack.SlotDatetime, dt)},
		},
		Normalized: "tomorrow at 5pm",
	})

	if d.Action.Kind != sdom.ActionDispatch {
		t.Fatalf("action = %+v, want dispatch", d.Action)
	}
	if d.Action.Slots["message"] != "call mom" || d.Action.Slots["datetime"] != dt {
		t.Fatalf("slots = %v", d.Action.Slots)
	}
}

func TestDecide_ClarificationFillStillMissing(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)
	dt := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC).Format(time.RFC3339)

	d := s.Decide(domain.Input{
		State: sdom.DialogueState{
			Kind:        sdom.StateAwaitingClarification,
			Task:        "set_reminder",
			MissingSlot: "datetime",
		},
		NLU: sdom.NLUResult{
			Intent:     skillpack.UnknownIntent,
			Confidence: 0,
			Entities:   []entity.Entity{ent(skillpack.SlotDatetime, dt)},
		},
		Normalized: "tomorrow at 5pm",
	})

	if d.Action.Kind != sdom.ActionAskClarification || d.Action.MissingSlot != "message" {
		t.Fatalf("action = %+v, want ask for message", d.Action)
	}
	if d.NextState.Kind != sdom.StateTaskInProgress {
		t.Fatalf("next state = %q, want task in progress", d.NextState.Kind)
	}
	if d.NextPending["datetime"] != dt {
		t.Fatalf("pending = %v", d.NextPending)
	}
}

func TestDecide_FreeTextFillsMessageSlot(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)
	dt := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC).Format(time.RFC3339)

	d := s.Decide(domain.Input{
		State: sdom.DialogueState{
			Kind:        sdom.StateTaskInProgress,
			Task:        "set_reminder",
			MissingSlot: "message",
		},
		Pending:    map[string]string{"datetime": dt},
		NLU:        sdom.NLUResult{Intent: skillpack.UnknownIntent, Confidence: 0},
		Normalized: "call mom",
	})

	if d.Action.Kind != sdom.ActionDispatch {
		t.Fatalf("action = %+v, want dispatch", d.Action)
	}
	if d.Action.Slots["message"] != "call mom" {
		t.Fatalf("slots = %v", d.Action.Slots)
	}
}

func TestDecide_LowConfidenceNeverDispatches(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)

	d := s.Decide(domain.Input{
		State:      idle(),
		NLU:        sdom.NLUResult{Intent: "set_reminder", Confidence: 0.2},
		Normalized: "maybe remind something",
	})

	if d.Action.Kind != sdom.ActionRespond {
		t.Fatalf("action = %+v, want fallback respond", d.Action)
	}
	if d.NextState.Kind != sdom.StateIdle {
		t.Fatalf("next state = %q, want idle", d.NextState.Kind)
	}
}

func TestDecide_InterruptionAbandon(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)

	d := s.Decide(domain.Input{
		State: sdom.DialogueState{
			Kind:        sdom.StateAwaitingClarification,
			Task:        "set_reminder",
			MissingSlot: "datetime",
		},
		Pending: map[string]string{"message": "call mom"},
		NLU: sdom.NLUResult{
			Intent:     "get_weather",
			Confidence: 0.95,
			Entities:   []entity.Entity{ent(skillpack.SlotLocation, "paris")},
		},
		Normalized: "what's the weather in paris",
	})

	if d.Action.Kind != sdom.ActionDispatch || d.Action.Skill != "weather" {
		t.Fatalf("action = %+v, want weather dispatch", d.Action)
	}
	if d.Abandoned == "" {
		t.Fatal("abandon policy must report the dropped task")
	}
	if d.NextState.Stacked != nil {
		t.Fatalf("abandon policy must not stack: %+v", d.NextState.Stacked)
	}
}

func TestDecide_InterruptionStack(t *testing.T) {
	s := newSvc(t, domain.PolicyStack)

	d := s.Decide(domain.Input{
		State: sdom.DialogueState{
			Kind:        sdom.StateAwaitingClarification,
			Task:        "set_reminder",
			MissingSlot: "datetime",
		},
		Pending: map[string]string{"message": "call mom"},
		NLU: sdom.NLUResult{
			Intent:     "get_weather",
			Confidence: 0.95,
			Entities:   []entity.Entity{ent(skillpack.SlotLocation, "paris")},
		},
		Normalized: "what's the weather in paris",
	})

	if d.Action.Kind != sdom.ActionDispatch || d.Action.Skill != "weather" {
		t.Fatalf("action = %+v, want weather dispatch", d.Action)
	}
	st := d.NextState.Stacked
	if st == nil || st.Intent != "set_reminder" || st.MissingSlot != "datetime" {
		t.Fatalf("stacked task = %+v", st)
	}
	if st.Filled["message"] != "call mom" {
		t.Fatalf("stacked fills lost: %+v", st.Filled)
	}
}

func TestDecide_AmbiguousFillReasks(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)
	a := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	b := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC).Format(time.RFC3339)

	d := s.Decide(domain.Input{
		State: sdom.DialogueState{
			Kind:        sdom.StateAwaitingClarification,
			Task:        "set_reminder",
			MissingSlot: "datetime",
		},
		Pending: map[string]string{"message": "call mom"},
		NLU: sdom.NLUResult{
			Intent:     skillpack.UnknownIntent,
			Confidence: 0,
			Entities: []entity.Entity{
				ent(skillpack.SlotDatetime, a),
				ent(skillpack.SlotDatetime, b),
			},
		},
		Normalized: "9am or 5pm",
	})

	if d.Action.Kind != sdom.ActionAskClarification || d.Action.MissingSlot != "datetime" {
		t.Fatalf("action = %+v, want re-ask for datetime", d.Action)
	}
}

func TestDecide_UnknownIntentFallsBack(t *testing.T) {
	s := newSvc(t, domain.PolicyAbandon)
	d := s.Decide(domain.Input{
		State:      idle(),
		NLU:        sdom.NLUResult{Intent: skillpack.UnknownIntent, Confidence: 0},
		Normalized: "flibber jabber",
	})
	if d.Action.Kind != sdom.ActionRespond || d.NextState.Kind != sdom.StateIdle {
		t.Fatalf("decision = %+v", d)
	}
}

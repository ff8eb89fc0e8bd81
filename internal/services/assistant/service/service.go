// Package service implements the per-turn orchestrator: session, NLU, dialogue
// decision, skill dispatch, and the learning-loop record, in that order.
// Turns for one session serialize on a session-scoped mutex; different
// sessions proceed concurrently and there is no global lock
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	perr "vassist/internal/platform/errors"
	"vassist/internal/platform/logger"
	pnet "vassist/internal/platform/net"

	"vassist/internal/services/assistant/domain"
	dlgdom "vassist/internal/services/dialogue/domain"
	nludom "vassist/internal/services/nlu/domain"
	sdom "vassist/internal/services/sessions/domain"
	"vassist/internal/services/skills"
	tldom "vassist/internal/services/turnlog/domain"
)

const apology = "Sorry, something went wrong on my end. Please try that again."

// Service implements domain.TurnPort
type Service struct {
	sessions sdom.CommandPort
	pipeline nludom.PipelinePort
	decider  dlgdom.DeciderPort
	registry *skills.Registry
	writer   tldom.WriterPort

	turnMu sync.Map // session id -> *sync.Mutex, serializes whole turns
	now    func() time.Time
}

// New constructs the orchestrator
func New(
	sessions sdom.CommandPort,
	pipeline nludom.PipelinePort,
	decider dlgdom.DeciderPort,
	registry *skills.Registry,
	writer tldom.WriterPort,
) *Service {
	return &Service{
		sessions: sessions,
		pipeline: pipeline,
		decider:  decider,
		registry: registry,
		writer:   writer,
		now:      time.Now,
	}
}

// Turn processes one utterance end to end
func (s *Service) Turn(ctx context.Context, in domain.TurnInput) (domain.TurnOutput, error) {
	if in.SessionID == "" {
		in.SessionID = uuid.NewString()
	}
	if in.At.IsZero() {
		in.At = s.now()
	}
	ctx = logger.WithTurn(ctx, pnet.RequestID(ctx), in.SessionID)
	log := logger.C(ctx)

	// one utterance fully processed before the next for this session
	unlock := s.lockTurn(in.SessionID)
	defer unlock()

	sess, err := s.sessions.GetOrCreate(ctx, in.SessionID)
	if err != nil {
		return domain.TurnOutput{}, err
	}

	utt, nlu, err := s.pipeline.Understand(ctx, in.Text, in.Locale, in.SessionID, in.At)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeInvalidInput) {
			return domain.TurnOutput{}, err
		}
		// persistent backend failure: escalate, park the session in the error
		// state, and hand the user an apology instead of a crash
		return s.escalateTurn(ctx, in, utt, err)
	}

	d := s.decider.Decide(dlgdom.Input{
		State:      sess.State,
		Pending:    sess.PendingSlots,
		NLU:        nlu,
		Normalized: utt.Normalized,
	})
	if d.Abandoned != "" {
		log.Info().Str("reason", d.Abandoned).Msg("pending task abandoned")
	}

	out, outcome := s.applyDecision(ctx, in.SessionID, utt, nlu, d)
	s.emitRecord(ctx, utt, nlu, out.Action, outcome)
	return out, nil
}

// applyDecision commits the transition and performs any dispatch.
// Session mutations happen only after the full decision is computed, so a
// cancelled turn commits nothing
func (s *Service) applyDecision(
	ctx context.Context,
	sessionID string,
	utt sdom.Utterance,
	nlu sdom.NLUResult,
	d dlgdom.Decision,
) (domain.TurnOutput, string) {
	log := logger.C(ctx)
	out := domain.TurnOutput{SessionID: sessionID, Action: d.Action, NLU: nlu}
	outcome := "ok"

	finalState := d.NextState
	finalPending := d.NextPending

	switch d.Action.Kind {
	case sdom.ActionDispatch:
		// make the in-flight invocation observable, then invoke outside any
		// store lock so other sessions never wait on a slow skill
		if err := s.commit(ctx, sessionID, d.NextState, nil, nil); err != nil {
			log.Warn().Err(err).Msg("dispatch state commit failed")
			return s.escalateOutput(sessionID, nlu, err), "escalated"
		}
		slots := make(map[string]string, len(d.Action.Slots)+1)
		for k, v := range d.Action.Slots {
			slots[k] = v
		}
		slots[skills.IntentSlot] = d.NextState.Task

		res, err := s.registry.Invoke(ctx, d.Action.Skill, slots)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("skill", d.Action.Skill).Msg("skill dispatch failed")
			out.Action = sdom.SystemAction{Kind: sdom.ActionEscalate, Reason: err.Error()}
			out.Reply = apology
			outcome = "escalated"
		case !res.Success:
			out.Reply = res.UserMessage
			outcome = "skill_failed"
		default:
			out.Reply = res.UserMessage
		}

		// the machine returns to idle after a completed task, or resumes a
		// stacked clarification if the interruption policy parked one
		finalState = sdom.DialogueState{Kind: sdom.StateIdle}
		finalPending = nil
		if st := d.NextState.Stacked; st != nil {
			finalState = sdom.DialogueState{
				Kind:        sdom.StateAwaitingClarification,
				Task:        st.Intent,
				MissingSlot: st.MissingSlot,
			}
			finalPending = st.Filled
		}

	case sdom.ActionAskClarification:
		out.Reply = d.Action.Prompt

	case sdom.ActionRespond:
		out.Reply = d.Action.Message

	case sdom.ActionEscalate:
		out.Reply = apology
		outcome = "escalated"
	}

	turn := sdom.Turn{Utterance: utt, NLU: nlu, Action: out.Action}
	if err := s.commit(ctx, sessionID, finalState, finalPending, &turn); err != nil {
		log.Warn().Err(err).Msg("turn commit failed")
		return s.escalateOutput(sessionID, nlu, err), "escalated"
	}
	out.State = finalState
	return out, outcome
}

// escalateOutput is the uniform answer when a turn cannot be committed
func (s *Service) escalateOutput(sessionID string, nlu sdom.NLUResult, cause error) domain.TurnOutput {
	return domain.TurnOutput{
		SessionID: sessionID,
		Reply:     apology,
		Action:    sdom.SystemAction{Kind: sdom.ActionEscalate, Reason: perr.CodeOf(cause).String()},
		State:     sdom.DialogueState{Kind: sdom.StateError},
		NLU:       nlu,
	}
}

// escalateTurn handles a persistent NLU backend failure per the error design:
// the turn emits Escalate, the session parks in the error state, and the next
// turn starts fresh from idle
func (s *Service) escalateTurn(
	ctx context.Context,
	in domain.TurnInput,
	utt sdom.Utterance,
	cause error,
) (domain.TurnOutput, error) {
	logger.C(ctx).Error().Err(cause).Msg("nlu backend failed after retry")

	action := sdom.SystemAction{Kind: sdom.ActionEscalate, Reason: perr.CodeOf(cause).String()}
	errState := sdom.DialogueState{Kind: sdom.StateError}
	if utt.Raw == "" {
		utt = sdom.Utterance{SessionID: in.SessionID, Raw: in.Text, At: in.At}
	}
	turn := sdom.Turn{Utterance: utt, Action: action}
	if err := s.commit(ctx, in.SessionID, errState, nil, &turn); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("error-state commit failed")
	}
	s.emitRecord(ctx, utt, sdom.NLUResult{}, action, "escalated")

	return domain.TurnOutput{
		SessionID: in.SessionID,
		Reply:     apology,
		Action:    action,
		State:     errState,
	}, nil
}

// commit applies state and pending slots, then appends the turn to bounded
// history. The turn mutex keeps the two updates atomic per session
func (s *Service) commit(
	ctx context.Context,
	sessionID string,
	state sdom.DialogueState,
	pending map[string]string,
	turn *sdom.Turn,
) error {
	err := s.sessions.Update(ctx, sessionID, func(sess *sdom.Session) error {
		sess.State = state
		sess.PendingSlots = pending
		return nil
	})
	if err != nil {
		return err
	}
	if turn != nil {
		return s.sessions.AppendTurn(ctx, sessionID, *turn)
	}
	return nil
}

// emitRecord writes the learning-loop tuple; failures are logged, never fatal
func (s *Service) emitRecord(
	ctx context.Context,
	utt sdom.Utterance,
	nlu sdom.NLUResult,
	action sdom.SystemAction,
	outcome string,
) {
	ents, _ := json.Marshal(nlu.Entities)
	act, _ := json.Marshal(action)
	rec := tldom.Record{
		TurnID:     uuid.New(),
		SessionID:  utt.SessionID,
		CreatedAt:  utt.At,
		RawText:    utt.Raw,
		Lang:       utt.Lang,
		Intent:     nlu.Intent,
		Confidence: nlu.Confidence,
		Entities:   ents,
		Polarity:   nlu.Polarity,
		Magnitude:  nlu.Magnitude,
		ActionKind: string(action.Kind),
		Action:     act,
		Outcome:    outcome,
	}
	if err := s.writer.Write(ctx, rec); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("turn log write failed")
	}
}

func (s *Service) lockTurn(sessionID string) func() {
	v, _ := s.turnMu.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

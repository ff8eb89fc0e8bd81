// Package service implements the context and session manager over a store backend
package service

import (
	"context"
	"time"

	perr "vassist/internal/platform/errors"
	"vassist/internal/platform/logger"
	"vassist/internal/services/sessions/domain"
)

// Options tunes session lifecycle behavior
type Options struct {
	IdleTimeout  time.Duration // sessions idle past this are sweepable
	HistoryLimit int           // bounded history length, oldest evicted first
}

// Service owns every session; callers get copies scoped to one turn
type Service struct {
	store domain.StorePort
	opts  Options
	now   func() time.Time
}

// New constructs the session service
func New(store domain.StorePort, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	return &Service{store: store, opts: opts, now: time.Now}
}

// Get returns a copy of the session or a not-found error
func (s *Service) Get(ctx context.Context, id string) (*domain.Session, error) {
	sess, ok, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perr.NotFoundf("session %s", id)
	}
	return sess, nil
}

// GetOrCreate is idempotent: the first call for an id creates a fresh empty
// session, later calls return current state reflecting all prior mutations
func (s *Service) GetOrCreate(ctx context.Context, id string) (*domain.Session, error) {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, ok, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		return sess, nil
	}
	now := s.now()
	sess = &domain.Session{
		ID:        id,
		CreatedAt: now,
		LastSeen:  now,
		State:     domain.DialogueState{Kind: domain.StateIdle},
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	logger.C(ctx).Debug().Str("session_id", id).Msg("session created")
	return sess.Clone(), nil
}

// Update runs fn on a copy under the session's exclusive lock and commits the
// copy only when both fn and ctx come back clean. A cancelled turn therefore
// leaves the stored session untouched
func (s *Service) Update(ctx context.Context, id string, fn func(*domain.Session) error) error {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, ok, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return perr.SessionExpiredf("session %s is gone", id)
	}
	if err := fn(sess); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "turn cancelled before commit")
	}
	sess.LastSeen = s.now()
	return s.store.Save(ctx, sess)
}

// AppendTurn appends to the bounded history, evicting the oldest entry
func (s *Service) AppendTurn(ctx context.Context, id string, t domain.Turn) error {
	return s.Update(ctx, id, func(sess *domain.Session) error {
		sess.History = append(sess.History, t)
		if over := len(sess.History) - s.opts.HistoryLimit; over > 0 {
			sess.History = append(sess.History[:0:0], sess.History[over:]...)
		}
		return nil
	})
}

// SetPendingSlots replaces the pending slot-fill mapping
func (s *Service) SetPendingSlots(ctx context.Context, id string, slots map[string]string) error {
	return s.Update(ctx, id, func(sess *domain.Session) error {
		sess.PendingSlots = slots
		return nil
	})
}

// ClearPendingSlots drops the pending slot-fill mapping
func (s *Service) ClearPendingSlots(ctx context.Context, id string) error {
	return s.Update(ctx, id, func(sess *domain.Session) error {
		sess.PendingSlots = nil
		return nil
	})
}

// SweepExpired evicts sessions idle past the timeout and returns the count.
// LastSeen is peeked lock-free first; only eviction candidates take their
// session lock for the recheck-and-delete, so live sessions never block
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return 0, err
	}
	evicted := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return evicted, err
		}
		sess, ok, err := s.store.Load(ctx, id)
		if err != nil {
			return evicted, err
		}
		if !ok || now.Sub(sess.LastSeen) <= s.opts.IdleTimeout {
			continue
		}

		unlock := s.store.Lock(id)
		sess, ok, err = s.store.Load(ctx, id)
		if err != nil {
			unlock()
			return evicted, err
		}
		// recheck under the lock; a turn may have landed since the peek
		if ok && now.Sub(sess.LastSeen) > s.opts.IdleTimeout {
			if err := s.store.Delete(ctx, id); err != nil {
				unlock()
				return evicted, err
			}
			evicted++
			logger.C(ctx).Info().Str("session_id", id).Time("last_seen", sess.LastSeen).Msg("session evicted")
		}
		unlock()
	}
	return evicted, nil
}

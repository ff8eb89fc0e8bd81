// Package repo provides the turn log repository implementation
package repo

import (
	"context"

	"vassist/internal/modkit/repokit"
	perr "vassist/internal/platform/errors"
	"vassist/internal/services/turnlog/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the turn log repository
type Storage interface {
	Write(ctx context.Context, rec domain.Record) error
	CountBySession(ctx context.Context, sessionID string) (int64, error)
}

// Write implements Storage; one row per turn, idempotent on turn id
func (s *pg) Write(ctx context.Context, rec domain.Record) error {
	const q = `
		INSERT INTO turn_log
			(turn_id, session_id, created_at, raw_text, lang, intent, confidence,
			entities, polarity, magnitude, action_kind, action, outcome)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (turn_id) DO NOTHING`
	_, err := s.q.Exec(ctx, q,
		rec.TurnID, rec.SessionID, rec.CreatedAt, rec.RawText, rec.Lang,
		rec.Intent, rec.Confidence, rec.Entities, rec.Polarity, rec.Magnitude,
		rec.ActionKind, rec.Action, rec.Outcome,
	)
	return perr.FromPostgres(err, "insert turn log record")
}

// CountBySession implements Storage
func (s *pg) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	err := s.q.QueryRow(ctx, `SELECT count(*) FROM turn_log WHERE session_id = $1`, sessionID).Scan(&n)
	return n, perr.FromPostgres(err, "count turn log records")
}

package domain

import (
	"context"
	"time"
)

// ReaderPort exposes read-only session access for transports
type ReaderPort interface {
	// Get returns a copy of the session, or a not-found error
	Get(ctx context.Context, id string) (*Session, error)
}

// CommandPort is the full session lifecycle surface.
// All mutation funnels through Update so a cancelled turn commits nothing
type CommandPort interface {
	ReaderPort

	// GetOrCreate is idempotent; the first call for an id creates a fresh
	// empty session, later calls return the current state
	GetOrCreate(ctx context.Context, id string) (*Session, error)

	// Update runs fn on a copy of the session under its exclusive lock and
	// persists the copy only when fn returns nil. A missing id yields a
	// session-expired error
	Update(ctx context.Context, id string, fn func(*Session) error) error

	// AppendTurn appends to the bounded history, evicting the oldest entry
	AppendTurn(ctx context.Context, id string, t Turn) error

	SetPendingSlots(ctx context.Context, id string, slots map[string]string) error
	ClearPendingSlots(ctx context.Context, id string) error

	// SweepExpired evicts sessions idle past the configured timeout and
	// returns the count. It locks only the sessions it actually evicts
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// StorePort is the storage seam the service drives; memory and redis implement it
type StorePort interface {
	// Load returns a deep copy; ok=false when the id is absent or expired
	Load(ctx context.Context, id string) (s *Session, ok bool, err error)
	// Save persists a deep copy of s, refreshing any backend expiry
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// IDs lists currently known session ids (best effort on TTL backends)
	IDs(ctx context.Context) ([]string, error)
	// Lock acquires the per-session mutex and returns its release func
	Lock(id string) (unlock func())
}

package repo

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	perr "vassist/internal/platform/errors"
	"vassist/internal/platform/store"
	"vassist/internal/services/sessions/domain"
)

const redisKeyPrefix = "vassist:sess:"

// Redis stores sessions as JSON values with the idle timeout as key TTL, so
// the backend itself reaps idle sessions between sweeps. Session mutexes stay
// process-local: the gateway is the single writer for its sessions
type Redis struct {
	rd    store.Redis
	ttl   time.Duration
	locks sync.Map // id -> *sync.Mutex
}

// NewRedis constructs a redis-backed store; ttl is the session idle timeout
func NewRedis(rd store.Redis, ttl time.Duration) *Redis {
	return &Redis{rd: rd, ttl: ttl}
}

func key(id string) string { return redisKeyPrefix + id }

// Load returns the decoded session; a missing or TTL-reaped key is ok=false
func (r *Redis) Load(ctx context.Context, id string) (*domain.Session, bool, error) {
	raw, ok, err := r.rd.Get(ctx, key(id))
	if err != nil {
		return nil, false, perr.Wrap(err, perr.ErrorCodeUnavailable, "redis load session")
	}
	if !ok {
		return nil, false, nil
	}
	var s domain.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeJSON, "decode session %s", id)
	}
	return &s, true, nil
}

// Save encodes and stores the session, refreshing the TTL
func (r *Redis) Save(ctx context.Context, s *domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode session %s", s.ID)
	}
	ttl := int(r.ttl / time.Second)
	if err := r.rd.Set(ctx, key(s.ID), string(raw), ttl); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "redis save session")
	}
	return nil
}

// Delete removes the key
func (r *Redis) Delete(ctx context.Context, id string) error {
	if _, err := r.rd.Del(ctx, key(id)); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "redis delete session")
	}
	return nil
}

// IDs lists session ids still present; keys the TTL already reaped are gone
func (r *Redis) IDs(ctx context.Context) ([]string, error) {
	keys, err := r.rd.Keys(ctx, redisKeyPrefix+"*")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "redis list sessions")
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, redisKeyPrefix))
	}
	return out, nil
}

// Lock acquires the process-local mutex for the session id
func (r *Redis) Lock(id string) func() {
	v, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Package repo provides the session store backends
package repo

import (
	"context"
	"hash/fnv"
	"sync"

	"vassist/internal/services/sessions/domain"
)

const shardCount = 16

type memShard struct {
	mu   sync.RWMutex
	data map[string]*domain.Session
}

// Memory is the default in-process store: sharded maps plus a per-session
// mutex table so different sessions never contend on one lock
type Memory struct {
	shards [shardCount]*memShard
	locks  sync.Map // id -> *sync.Mutex
}

// NewMemory constructs an empty in-process store
func NewMemory() *Memory {
	m := &Memory{}
	for i := range m.shards {
		m.shards[i] = &memShard{data: make(map[string]*domain.Session)}
	}
	return m
}

func (m *Memory) shard(id string) *memShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return m.shards[h.Sum32()%shardCount]
}

// Load returns a deep copy of the stored session
func (m *Memory) Load(_ context.Context, id string) (*domain.Session, bool, error) {
	sh := m.shard(id)
	sh.mu.RLock()
	s, ok := sh.data[id]
	sh.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return s.Clone(), true, nil
}

// Save stores a deep copy of s
func (m *Memory) Save(_ context.Context, s *domain.Session) error {
	sh := m.shard(s.ID)
	sh.mu.Lock()
	sh.data[s.ID] = s.Clone()
	sh.mu.Unlock()
	return nil
}

// Delete removes the session record.
// The lock table entry stays so concurrent lockers always see one mutex
func (m *Memory) Delete(_ context.Context, id string) error {
	sh := m.shard(id)
	sh.mu.Lock()
	delete(sh.data, id)
	sh.mu.Unlock()
	return nil
}

// IDs lists every stored session id
func (m *Memory) IDs(_ context.Context) ([]string, error) {
	var out []string
	for _, sh := range m.shards {
		sh.mu.RLock()
		for id := range sh.data {
			out = append(out, id)
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// Lock acquires the session's mutex and returns its release func
func (m *Memory) Lock(id string) func() {
	v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

package repo

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"vassist/internal/services/sessions/domain"
)

// fakeRedis implements the store.Redis seam in memory, recording TTLs so the
// repo's expiry wiring is observable without a server
type fakeRedis struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{vals: map[string]string{}, ttls: map[string]int{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vals[key]
	return v, ok, nil
}

func (f *fakeRedis) Set(_ context.Context, key, val string, ttlSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vals[key] = val
	f.ttls[key] = ttlSeconds
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, k := range keys {
		if _, ok := f.vals[k]; ok {
			delete(f.vals, k)
			delete(f.ttls, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeRedis) Keys(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var out []string
	for k := range f.vals {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeRedis) Ping(context.Context) error { return nil }
func (f *fakeRedis) Close() error               { return nil }

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fr := newFakeRedis()
	st := NewRedis(fr, 30*time.Minute)

	if _, ok, err := st.Load(ctx, "s1"); err != nil || ok {
		t.Fatalf("load missing = ok %v err %v, want miss", ok, err)
	}

	sess := &domain.Session{
		ID:           "s1",
		CreatedAt:    time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC),
		LastSeen:     time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC),
		PendingSlots: map[string]string{"message": "call mom"},
		State: domain.DialogueState{
			Kind:        domain.StateAwaitingClarification,
			Task:        "set_reminder",
			MissingSlot: "datetime",
		},
	}
	if err := st.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := st.Load(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("load = ok %v err %v", ok, err)
	}
	if got.State.Kind != domain.StateAwaitingClarification || got.State.Task != "set_reminder" {
		t.Fatalf("state = %+v", got.State)
	}
	if got.PendingSlots["message"] != "call mom" {
		t.Fatalf("pending = %v", got.PendingSlots)
	}
	if !got.CreatedAt.Equal(sess.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, sess.CreatedAt)
	}
}

func TestRedisStoreTTLTracksIdleTimeout(t *testing.T) {
	ctx := context.Background()
	fr := newFakeRedis()
	st := NewRedis(fr, 30*time.Minute)

	if err := st.Save(ctx, &domain.Session{ID: "s1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := fr.ttls["vassist:sess:s1"]; ttl != 1800 {
		t.Fatalf("ttl = %d, want 1800", ttl)
	}
}

func TestRedisStoreIDsAndDelete(t *testing.T) {
	ctx := context.Background()
	fr := newFakeRedis()
	st := NewRedis(fr, time.Minute)

	for _, id := range []string{"a", "b"} {
		if err := st.Save(ctx, &domain.Session{ID: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	ids, err := st.IDs(ctx)
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 entries", ids)
	}
	for _, id := range ids {
		if id != "a" && id != "b" {
			t.Fatalf("unexpected id %q (prefix not trimmed?)", id)
		}
	}

	if err := st.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.Load(ctx, "a"); ok {
		t.Fatal("load after delete should miss")
	}
	if _, ok, _ := st.Load(ctx, "b"); !ok {
		t.Fatal("unrelated session should survive delete")
	}
}

func TestRedisStoreRejectsCorruptValue(t *testing.T) {
	ctx := context.Background()
	fr := newFakeRedis()
	st := NewRedis(fr, time.Minute)

	fr.vals["vassist:sess:bad"] = "{not json"
	if _, _, err := st.Load(ctx, "bad"); err == nil {
		t.Fatal("expected decode error for corrupt value")
	}
}
